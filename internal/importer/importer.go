package importer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats summarizes one importer run.
type Stats struct {
	FilesScanned  int
	FilesSkipped  int
	FilesImported int
	Sessions      int
	SetsInserted  int64
}

// Importer walks a directory of CSV exports and sends new or changed files
// to the server.
type Importer struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
}

// New creates an Importer. A nil client is only valid with dryRun set.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Importer {
	return &Importer{client: client, state: state, dir: dir, dryRun: dryRun, log: log}
}

// Run scans the directory and imports every new or changed CSV export,
// oldest first. Already-imported files (same path, size, and hash) are
// skipped.
func (i *Importer) Run() (Stats, error) {
	var stats Stats

	files, err := i.scan()
	if err != nil {
		return stats, err
	}
	stats.FilesScanned = len(files)

	for _, path := range files {
		rel, err := filepath.Rel(i.dir, path)
		if err != nil {
			rel = path
		}

		info, err := os.Stat(path)
		if err != nil {
			return stats, fmt.Errorf("stat %s: %w", rel, err)
		}
		hash, err := HashFile(path)
		if err != nil {
			return stats, fmt.Errorf("hashing %s: %w", rel, err)
		}

		done, err := i.state.IsImported(rel, info.Size(), hash)
		if err != nil {
			return stats, fmt.Errorf("state lookup for %s: %w", rel, err)
		}
		if done {
			stats.FilesSkipped++
			continue
		}

		if i.dryRun {
			i.log.Info("would import", "file", rel, "size", info.Size())
			stats.FilesImported++
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return stats, fmt.Errorf("reading %s: %w", rel, err)
		}

		result, err := i.client.SendExport(data)
		if err != nil {
			return stats, fmt.Errorf("importing %s: %w", rel, err)
		}
		if err := i.state.MarkImported(rel, info.Size(), hash); err != nil {
			return stats, fmt.Errorf("marking %s imported: %w", rel, err)
		}

		i.log.Info("imported", "file", rel,
			"sessions", result.Sessions, "sets", result.SetsInserted)
		stats.FilesImported++
		stats.Sessions += result.Sessions
		stats.SetsInserted += result.SetsInserted
	}

	return stats, nil
}

// scan returns the CSV files under the import directory, sorted by name so
// dated exports import in chronological order.
func (i *Importer) scan() ([]string, error) {
	var files []string
	err := filepath.WalkDir(i.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", i.dir, err)
	}
	sort.Strings(files)
	return files, nil
}
