// Package audit appends a JSON-lines record of every destructive run:
// when it started, what happened to each target, and how it ended. The
// log is best-effort; a failing audit write never blocks a cleanup.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"

	"devclean/internal/config"
)

// Event types written to the log.
const (
	EventRunStarted  = "run_started"
	EventItemAction  = "item_action"
	EventRunFinished = "run_finished"
)

// Item actions.
const (
	ActionDeleted = "deleted"
	ActionTrashed = "trashed"
	ActionSkipped = "skipped"
	ActionFailed  = "failed"
)

// Record is one log line. Fields beyond Event and Time are populated
// per event type.
type Record struct {
	Event string    `json:"event"`
	Time  time.Time `json:"time"`
	RunID string    `json:"run_id"`

	Command string   `json:"command,omitempty"`
	Roots   []string `json:"roots,omitempty"`
	DryRun  bool     `json:"dry_run,omitempty"`

	Path   string `json:"path,omitempty"`
	Action string `json:"action,omitempty"`
	Size   *int64 `json:"size,omitempty"`
	Detail string `json:"detail,omitempty"`

	ItemCount  int   `json:"item_count,omitempty"`
	FreedBytes int64 `json:"freed_bytes,omitempty"`
	ErrorCount int   `json:"error_count,omitempty"`
}

// Logger appends records for one run. A nil Logger is valid and drops
// everything, which is how disabled audit is expressed.
type Logger struct {
	mu    sync.Mutex
	path  string
	runID string
	cap   int64
}

// DefaultPath is the audit log location under the user's home.
func DefaultPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".devclean-audit.jsonl"
	}
	return filepath.Join(home, ".devclean", "audit.jsonl")
}

// Open prepares a logger for one run per the audit config. Returns nil
// when auditing is disabled.
func Open(cfg config.AuditConfig) (*Logger, error) {
	if !cfg.IsEnabled() {
		return nil, nil
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath()
	} else {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, fmt.Errorf("invalid audit log path %s: %w", path, err)
		}
		path = expanded
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	return &Logger{
		path:  path,
		runID: uuid.NewString(),
		cap:   cfg.MaxSizeBytes(),
	}, nil
}

// RunID identifies this run in the log.
func (l *Logger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// RunStarted records the beginning of a destructive run.
func (l *Logger) RunStarted(command string, roots []string, dryRun bool) {
	l.append(Record{
		Event:   EventRunStarted,
		Command: command,
		Roots:   roots,
		DryRun:  dryRun,
	})
}

// ItemAction records the outcome for one target.
func (l *Logger) ItemAction(path, action string, size *int64, detail string) {
	l.append(Record{
		Event:  EventItemAction,
		Path:   path,
		Action: action,
		Size:   size,
		Detail: detail,
	})
}

// RunFinished records the run totals.
func (l *Logger) RunFinished(itemCount int, freedBytes int64, errorCount int) {
	l.append(Record{
		Event:      EventRunFinished,
		ItemCount:  itemCount,
		FreedBytes: freedBytes,
		ErrorCount: errorCount,
	})
}

func (l *Logger) append(rec Record) {
	if l == nil {
		return
	}
	rec.Time = time.Now().UTC()
	rec.RunID = l.runID

	line, err := json.Marshal(rec)
	if err != nil {
		logrus.WithError(err).Debug("audit record marshal failed")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.rotateLocked()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logrus.WithError(err).Debug("audit log open failed")
		return
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		logrus.WithError(err).Debug("audit log write failed")
	}
}

// rotateLocked moves the log aside once it passes the size cap. One
// previous generation is kept.
func (l *Logger) rotateLocked() {
	info, err := os.Stat(l.path)
	if err != nil || info.Size() < l.cap {
		return
	}
	if err := os.Rename(l.path, l.path+".1"); err != nil {
		logrus.WithError(err).Debug("audit log rotation failed")
	}
}
