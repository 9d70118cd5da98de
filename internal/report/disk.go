package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// DiskStore writes RunRecords as JSON files to a directory that is
// created lazily on first use.
type DiskStore struct {
	mu   sync.Mutex
	root string // requested directory; "" resolves a default on first use
	dir  string // resolved directory
}

// NewDiskStore creates a store rooted at the per-user texkit cache
// directory, so records written by one process are readable by later
// ones. When no user cache directory is available it falls back to a
// private temp directory.
func NewDiskStore() *DiskStore {
	return &DiskStore{}
}

// NewDiskStoreAt creates a store rooted at dir.
func NewDiskStoreAt(dir string) *DiskStore {
	return &DiskStore{root: dir}
}

// Save writes a RunRecord as a JSON file to disk.
func (s *DiskStore) Save(rec *RunRecord) error {
	dir, err := s.ensureDir()
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling record %s: %w", rec.ID, err)
	}
	path := filepath.Join(dir, rec.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing record %s: %w", rec.ID, err)
	}
	return nil
}

// Load reads a RunRecord from disk.
func (s *DiskStore) Load(runID string) (*RunRecord, error) {
	dir, err := s.ensureDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, runID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", runID, err)
	}
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshalling record %s: %w", runID, err)
	}
	return &rec, nil
}

// List loads every stored record, most recent first.
func (s *DiskStore) List() ([]*RunRecord, error) {
	dir, err := s.ensureDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	var recs []*RunRecord
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		rec, err := s.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue // skip unreadable records
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Started.After(recs[j].Started)
	})
	return recs, nil
}

func (s *DiskStore) ensureDir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir != "" {
		return s.dir, nil
	}

	dir := s.root
	if dir == "" {
		if cache, err := os.UserCacheDir(); err == nil {
			dir = filepath.Join(cache, "texkit", "runs")
		}
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			s.dir = dir
			return dir, nil
		}
	}

	// No usable stable location; records then live for this process only.
	tmp, err := os.MkdirTemp("", "texkit-runs-*")
	if err != nil {
		return "", fmt.Errorf("creating record directory: %w", err)
	}
	s.dir = tmp
	return tmp, nil
}
