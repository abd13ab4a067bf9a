package manifest

import "fmt"

// ErrManifestNotFound is returned when discovery walks to the filesystem
// root without finding a supported manifest file.
type ErrManifestNotFound struct {
	Start string
}

func (e *ErrManifestNotFound) Error() string {
	return fmt.Sprintf("no manifest found walking up from %s", e.Start)
}

// ErrManifestParse wraps a dialect decoder's failure with the source path.
type ErrManifestParse struct {
	Path   string
	Detail string
}

func (e *ErrManifestParse) Error() string {
	return fmt.Sprintf("%s: parse error: %s", e.Path, e.Detail)
}

func (e *ErrManifestParse) Unwrap() error { return fmt.Errorf("%s", e.Detail) }

// ErrNoTasks is returned when a manifest was parsed but declares no tasks.
type ErrNoTasks struct {
	Path string
}

func (e *ErrNoTasks) Error() string {
	return fmt.Sprintf("%s: manifest declares no tasks", e.Path)
}

// ErrUnknownTaskKey is returned when a structured task record contains a
// key outside the closed, recognized set — almost always a typo.
type ErrUnknownTaskKey struct {
	Task string
	Key  string
}

func (e *ErrUnknownTaskKey) Error() string {
	return fmt.Sprintf("task %q: unknown key %q", e.Task, e.Key)
}

// ErrAmbiguousTaskBody is returned when a structured task record sets more
// than one of the mutually exclusive body keys (shell, cmd, composite).
type ErrAmbiguousTaskBody struct {
	Task string
	Keys []string
}

func (e *ErrAmbiguousTaskBody) Error() string {
	return fmt.Sprintf("task %q: ambiguous body, more than one of %v set", e.Task, e.Keys)
}

// ErrEmptyTaskBody is returned when a structured task record sets none of
// the mutually exclusive body keys.
type ErrEmptyTaskBody struct {
	Task string
}

func (e *ErrEmptyTaskBody) Error() string {
	return fmt.Sprintf("task %q: no body (one of shell, cmd, composite is required)", e.Task)
}
