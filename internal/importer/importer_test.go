package importer

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestStateRoundTrip verifies a marked file is reported imported and a
// changed hash is not.
func TestStateRoundTrip(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	done, err := state.IsImported("a.csv", 10, "h1")
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("unmarked file reported imported")
	}

	if err := state.MarkImported("a.csv", 10, "h1"); err != nil {
		t.Fatal(err)
	}
	done, _ = state.IsImported("a.csv", 10, "h1")
	if !done {
		t.Error("marked file not reported imported")
	}
	done, _ = state.IsImported("a.csv", 12, "h2")
	if done {
		t.Error("changed file reported imported")
	}
}

// TestRunImportsAndSkips verifies new files are sent once and unchanged
// files are skipped on the next run.
func TestRunImportsAndSkips(t *testing.T) {
	var requests int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.Header.Get("X-API-Key"); got != "key" {
			t.Errorf("X-API-Key = %q, want %q", got, "key")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sessions":1,"setsParsed":4,"setsInserted":4}`))
	}))
	defer ts.Close()

	dir := t.TempDir()
	writeFile(t, dir, "export-jan.csv", "jan data")
	writeFile(t, dir, "export-feb.csv", "feb data")
	writeFile(t, dir, "notes.txt", "ignored")

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	imp := New(NewClient(ts.URL, "key"), state, dir, false, discardLog())
	stats, err := imp.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.FilesScanned != 2 {
		t.Errorf("scanned = %d, want 2 (txt excluded)", stats.FilesScanned)
	}
	if stats.FilesImported != 2 || stats.SetsInserted != 8 {
		t.Errorf("imported = %d sets = %d, want 2 and 8", stats.FilesImported, stats.SetsInserted)
	}
	if requests != 2 {
		t.Errorf("server requests = %d, want 2", requests)
	}

	// Second run: nothing changed, nothing sent.
	stats, err = imp.Run()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.FilesSkipped != 2 || stats.FilesImported != 0 {
		t.Errorf("second run skipped/imported = %d/%d, want 2/0", stats.FilesSkipped, stats.FilesImported)
	}
	if requests != 2 {
		t.Errorf("server requests after second run = %d, want still 2", requests)
	}
}

// TestRunChangedFileReimports verifies an appended export goes through
// again.
func TestRunChangedFileReimports(t *testing.T) {
	var requests int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"sessions":1,"setsParsed":2,"setsInserted":0}`))
	}))
	defer ts.Close()

	dir := t.TempDir()
	path := writeFile(t, dir, "export.csv", "v1")

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	imp := New(NewClient(ts.URL, "key"), state, dir, false, discardLog())
	if _, err := imp.Run(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("v1 plus new session"), 0o644); err != nil {
		t.Fatal(err)
	}
	stats, err := imp.Run()
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesImported != 1 {
		t.Errorf("imported = %d, want 1 (changed file)", stats.FilesImported)
	}
	if requests != 2 {
		t.Errorf("server requests = %d, want 2", requests)
	}
}

// TestRunDryRun verifies dry-run touches neither the server nor the state.
func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "export.csv", "data")

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	imp := New(nil, state, dir, true, discardLog())
	stats, err := imp.Run()
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesImported != 1 {
		t.Errorf("imported = %d, want 1", stats.FilesImported)
	}

	// A real run afterwards still needs to send the file.
	done, _ := state.IsImported("export.csv", 4, "")
	if done {
		t.Error("dry run marked file imported")
	}
}

// TestClientRejectsClientError verifies a 4xx response is not retried.
func TestClientRejectsClientError(t *testing.T) {
	var requests int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, `{"error":"bad export"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, "key").SendExport([]byte("junk"))
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (no retry on client error)", requests)
	}
}
