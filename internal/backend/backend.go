package backend

import (
	"context"
)

// ArchiveMode selects how the backend packs an archive.
type ArchiveMode int

const (
	ModeCompressed ArchiveMode = iota
	ModeUncompressed
)

func (m ArchiveMode) String() string {
	switch m {
	case ModeCompressed:
		return "compressed"
	case ModeUncompressed:
		return "uncompressed"
	default:
		return ""
	}
}

// ProjectHandle identifies a project opened within one [Session]. It is meaningless in any other session.
type ProjectHandle string

// SessionOpts configures a new backend session.
type SessionOpts struct {
	Headless bool // Run the automation instance without a user interface
}

// Session is one isolated running automation instance.
//
// Close must only be called with a handle returned by a successful Open.
// Dispose releases the instance and must be called exactly once by the owner.
type Session interface {
	Open(ctx context.Context, path string) (ProjectHandle, error)
	Archive(ctx context.Context, h ProjectHandle, targetDir, name string, mode ArchiveMode) error
	Close(ctx context.Context, h ProjectHandle) error
	Dispose() error
}

// Factory creates sessions. Creating a session is expected to be expensive.
type Factory interface {
	Name() string
	NewSession(ctx context.Context, opts SessionOpts) (Session, error)
}
