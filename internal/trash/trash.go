// Package trash implements the recoverable deletion mode: instead of
// removing a directory outright, it is moved into a per-run batch
// under the tool's trash area and logged, so a mistaken cleanup can be
// undone with restore.
package trash

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	homedir "github.com/mitchellh/go-homedir"
)

// LogName is the append-only record of every trashed directory.
const LogName = "trash_log.jsonl"

// Entry is one trashed directory.
type Entry struct {
	BatchID      string    `json:"batch_id"`
	OriginalPath string    `json:"original_path"`
	StoredName   string    `json:"stored_name"`
	TrashedAt    time.Time `json:"trashed_at"`
	Size         *int64    `json:"size,omitempty"`
	Restored     bool      `json:"restored,omitempty"`
}

// Bin is a trash area rooted at one directory.
type Bin struct {
	root string
}

// DefaultRoot is the trash location under the user's home.
func DefaultRoot() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".devclean-trash"
	}
	return filepath.Join(home, ".devclean", "trash")
}

// Open returns a bin at root, creating it if needed. An empty root
// selects the default location.
func Open(root string) (*Bin, error) {
	if root == "" {
		root = DefaultRoot()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create trash directory %s: %w", root, err)
	}
	return &Bin{root: root}, nil
}

// Root returns the bin's directory.
func (b *Bin) Root() string { return b.root }

// Batch groups the directories trashed by one run.
type Batch struct {
	bin *Bin
	id  string
	dir string
}

// NewBatch starts a batch for one run.
func (b *Bin) NewBatch() (*Batch, error) {
	id := uuid.NewString()
	dir := filepath.Join(b.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create trash batch: %w", err)
	}
	return &Batch{bin: b, id: id, dir: dir}, nil
}

// ID identifies the batch in the trash log.
func (t *Batch) ID() string { return t.id }

// Move relocates path into the batch and logs it. Same-filesystem
// moves only; a cross-device rename fails and the caller falls back to
// plain deletion or reports the error.
func (t *Batch) Move(path string, size *int64) error {
	stored := fmt.Sprintf("%s-%s", filepath.Base(path), uuid.NewString()[:8])
	dest := filepath.Join(t.dir, stored)
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("failed to move %s to trash: %w", path, err)
	}
	return t.bin.appendLog(Entry{
		BatchID:      t.id,
		OriginalPath: path,
		StoredName:   stored,
		TrashedAt:    time.Now().UTC(),
		Size:         size,
	})
}

func (b *Bin) appendLog(e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(b.root, LogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open trash log: %w", err)
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}

// Entries reads the trash log, newest last. A restored entry appears
// once with Restored set; consumers see only the final state per
// stored name.
func (b *Bin) Entries() ([]Entry, error) {
	f, err := os.Open(filepath.Join(b.root, LogName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	latest := make(map[string]int)
	var out []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		key := e.BatchID + "/" + e.StoredName
		if i, ok := latest[key]; ok {
			out[i] = e
			continue
		}
		latest[key] = len(out)
		out = append(out, e)
	}
	return out, sc.Err()
}

// Restore moves every directory of a batch back to its original
// location. Entries whose destination already exists are skipped and
// reported. Returns the restored entries.
func (b *Bin) Restore(batchID string) ([]Entry, []error) {
	entries, err := b.Entries()
	if err != nil {
		return nil, []error{err}
	}

	var restored []Entry
	var errs []error
	for _, e := range entries {
		if e.BatchID != batchID || e.Restored {
			continue
		}
		stored := filepath.Join(b.root, e.BatchID, e.StoredName)
		if _, err := os.Stat(stored); err != nil {
			errs = append(errs, fmt.Errorf("trashed copy of %s is missing: %w", e.OriginalPath, err))
			continue
		}
		if _, err := os.Stat(e.OriginalPath); err == nil {
			errs = append(errs, fmt.Errorf("cannot restore %s: destination already exists", e.OriginalPath))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(e.OriginalPath), 0o755); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Rename(stored, e.OriginalPath); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", e.OriginalPath, err))
			continue
		}
		e.Restored = true
		if err := b.appendLog(e); err != nil {
			errs = append(errs, err)
		}
		restored = append(restored, e)
	}

	// Drop the batch directory once everything in it is gone.
	_ = os.Remove(filepath.Join(b.root, batchID))

	return restored, errs
}

// Batches lists batch IDs that still hold unrestored entries, newest
// first by trash time.
func (b *Bin) Batches() ([]string, error) {
	entries, err := b.Entries()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]time.Time)
	for _, e := range entries {
		if e.Restored {
			continue
		}
		if t, ok := seen[e.BatchID]; !ok || e.TrashedAt.After(t) {
			seen[e.BatchID] = e.TrashedAt
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return seen[out[i]].After(seen[out[j]])
	})
	return out, nil
}
