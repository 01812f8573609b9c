package scan

import (
	"fmt"
	"time"
)

// ConfigurationError reports a malformed custom pattern or keep glob.
// Fatal: it fails the scan invocation before any traversal starts,
// since silently ignoring a malformed rule would be unsafe.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// TraversalError records a directory that could not be read during the
// walk. Non-fatal: the entry is skipped and traversal continues.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("traversal: %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// SizeTimeoutError marks a single candidate whose size computation
// exceeded its per-directory budget. Non-fatal for the batch.
type SizeTimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *SizeTimeoutError) Error() string {
	return fmt.Sprintf("size computation for %s exceeded %s", e.Path, e.Timeout)
}
