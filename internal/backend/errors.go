package backend

import (
	"fmt"

	"github.com/desertthunder/projarc/internal/shared"
)

// SessionError reports that no session could be acquired for a project.
type SessionError struct {
	Path string
	Err  error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%v for %s: %v", shared.ErrSessionUnavailable, e.Path, e.Err)
}

func (e *SessionError) Unwrap() []error { return []error{shared.ErrSessionUnavailable, e.Err} }

// OpenError reports that the backend could not open a project: invalid path, locked, or wrong version.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("%v %s: %v", shared.ErrProjectOpen, e.Path, e.Err)
}

func (e *OpenError) Unwrap() []error { return []error{shared.ErrProjectOpen, e.Err} }

// ArchiveError reports an I/O failure, version mismatch or backend fault while archiving.
type ArchiveError struct {
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("%v %s: %v", shared.ErrProjectArchive, e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() []error { return []error{shared.ErrProjectArchive, e.Err} }

// CloseError reports that an opened project could not be closed.
type CloseError struct {
	Path string
	Err  error
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("%v %s: %v", shared.ErrProjectClose, e.Path, e.Err)
}

func (e *CloseError) Unwrap() []error { return []error{shared.ErrProjectClose, e.Err} }
