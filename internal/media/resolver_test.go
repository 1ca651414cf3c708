package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// TestIllustrationFetchAndCache verifies the cache-then-fetch lookup: the
// first call hits the server, the second is served from memory.
func TestIllustrationFetchAndCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/exercises/bench-press" {
			t.Errorf("path = %q, want /exercises/bench-press", r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte("<svg/>"))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL)
	ill, err := r.Illustration(context.Background(), "Bench Press")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ill.ContentType != "image/svg+xml" {
		t.Errorf("content type = %q", ill.ContentType)
	}
	if string(ill.Data) != "<svg/>" {
		t.Errorf("data = %q", ill.Data)
	}

	if _, err := r.Illustration(context.Background(), "bench press"); err != nil {
		t.Fatalf("cached lookup error: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1 (second lookup cached)", hits.Load())
	}
}

// TestIllustrationErrorNotCached verifies that a failed fetch is not
// cached, so a later attempt can succeed once the server recovers.
func TestIllustrationErrorNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL)
	if _, err := r.Illustration(context.Background(), "Squat"); err == nil {
		t.Fatal("expected error for 404")
	}

	fail.Store(false)
	if _, err := r.Illustration(context.Background(), "Squat"); err != nil {
		t.Fatalf("retry after recovery failed: %v", err)
	}
}

// TestIllustrationCancelled verifies the fetch respects context
// cancellation — the caller abandoning the result stops the lookup.
func TestIllustrationCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewResolver(srv.URL).Illustration(ctx, "Deadlift"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
