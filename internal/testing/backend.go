package testing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/projarc/internal/backend"
	"github.com/desertthunder/projarc/internal/shared"
)

// ArchiveCall records one Archive request seen by a [FakeFactory].
type ArchiveCall struct {
	Path   string
	Target string
	Name   string
	Mode   backend.ArchiveMode
}

// FakeStats is a snapshot of the calls a [FakeFactory] has seen.
type FakeStats struct {
	Sessions      int           // Sessions created
	Disposed      int           // Sessions disposed
	MaxActive     int           // Highest number of sessions alive at once
	Opened        []string      // Paths opened successfully
	OpenAttempts  []string      // Paths passed to Open
	Archived      []ArchiveCall // Archive calls that succeeded
	Closed        []string      // Paths closed
	InvalidCloses int           // Close calls on handles not returned by Open in that session
}

// FakeFactory is an in-memory [backend.Factory] that records every call.
//
// Errors are keyed by project path. Archive writes an empty file at target/name when WriteArchives is set.
type FakeFactory struct {
	OpenErrs      map[string]error
	ArchiveErrs   map[string]error
	CloseErrs     map[string]error
	SessionErr    error
	WriteArchives bool
	OnOpen        func(path string) // Called before Open returns; may block

	mu     sync.Mutex
	stats  FakeStats
	active int
	nextID int
}

var _ backend.Factory = (*FakeFactory)(nil)

func (f *FakeFactory) Name() string { return "fake" }

// NewSession implements [backend.Factory].
func (f *FakeFactory) NewSession(ctx context.Context, opts backend.SessionOpts) (backend.Session, error) {
	if f.SessionErr != nil {
		return nil, f.SessionErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.Sessions++
	f.active++
	if f.active > f.stats.MaxActive {
		f.stats.MaxActive = f.active
	}
	return &fakeSession{factory: f, handles: make(map[backend.ProjectHandle]string)}, nil
}

// Stats returns a copy of the recorded calls.
func (f *FakeFactory) Stats() FakeStats {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.stats
	s.Opened = append([]string(nil), s.Opened...)
	s.OpenAttempts = append([]string(nil), s.OpenAttempts...)
	s.Archived = append([]ArchiveCall(nil), s.Archived...)
	s.Closed = append([]string(nil), s.Closed...)
	return s
}

type fakeSession struct {
	factory  *FakeFactory
	handles  map[backend.ProjectHandle]string
	disposed bool
}

func (s *fakeSession) Open(ctx context.Context, path string) (backend.ProjectHandle, error) {
	f := s.factory
	f.mu.Lock()
	f.stats.OpenAttempts = append(f.stats.OpenAttempts, path)
	f.mu.Unlock()

	if f.OnOpen != nil {
		f.OnOpen(path)
	}
	if err := f.OpenErrs[path]; err != nil {
		return "", &backend.OpenError{Path: path, Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	h := backend.ProjectHandle(fmt.Sprintf("h%d", f.nextID))
	s.handles[h] = path
	f.stats.Opened = append(f.stats.Opened, path)
	return h, nil
}

func (s *fakeSession) Archive(ctx context.Context, h backend.ProjectHandle, targetDir, name string, mode backend.ArchiveMode) error {
	f := s.factory
	path, ok := s.handles[h]
	if !ok {
		return &backend.ArchiveError{Path: string(h), Err: shared.ErrInvalidHandle}
	}
	if err := f.ArchiveErrs[path]; err != nil {
		return &backend.ArchiveError{Path: path, Err: err}
	}
	if f.WriteArchives {
		if err := os.WriteFile(filepath.Join(targetDir, name), nil, 0644); err != nil {
			return &backend.ArchiveError{Path: path, Err: err}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.Archived = append(f.stats.Archived, ArchiveCall{Path: path, Target: targetDir, Name: name, Mode: mode})
	return nil
}

func (s *fakeSession) Close(ctx context.Context, h backend.ProjectHandle) error {
	f := s.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	path, ok := s.handles[h]
	if !ok {
		f.stats.InvalidCloses++
		return &backend.CloseError{Path: string(h), Err: shared.ErrInvalidHandle}
	}
	delete(s.handles, h)
	f.stats.Closed = append(f.stats.Closed, path)

	if err := f.CloseErrs[path]; err != nil {
		return &backend.CloseError{Path: path, Err: err}
	}
	return nil
}

func (s *fakeSession) Dispose() error {
	f := s.factory
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.disposed {
		return nil
	}
	s.disposed = true
	f.active--
	f.stats.Disposed++
	return nil
}
