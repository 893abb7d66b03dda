package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"sync"

	"github.com/desertthunder/projarc/internal/shared"
)

// BridgeName is the registry name of the bridge backend.
const BridgeName = "bridge"

// BridgeFactory starts one bridge process per session.
type BridgeFactory struct {
	cfg    shared.BackendConfig
	stderr io.Writer
}

// NewBridgeFactory validates cfg and returns a factory for it.
func NewBridgeFactory(cfg shared.BackendConfig) (*BridgeFactory, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("%w: backend.command is required for the bridge backend", shared.ErrInvalidConfig)
	}
	return &BridgeFactory{cfg: cfg, stderr: os.Stderr}, nil
}

// SetStderr redirects the diagnostic output of bridge processes.
func (f *BridgeFactory) SetStderr(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	f.stderr = w
}

func (f *BridgeFactory) Name() string { return BridgeName }

// CommandArgs returns the argument list a session is started with.
//
// Library bindings are passed as sorted "--lib key=path" pairs so the command line is stable.
func (f *BridgeFactory) CommandArgs(opts SessionOpts) []string {
	args := append([]string(nil), f.cfg.Args...)
	if opts.Headless {
		args = append(args, "--headless")
	}
	if f.cfg.Version != "" {
		args = append(args, "--version", f.cfg.Version)
	}

	keys := make([]string, 0, len(f.cfg.LibraryPaths))
	for k, v := range f.cfg.LibraryPaths {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--lib", k+"="+f.cfg.LibraryPaths[k])
	}
	return args
}

// NewSession implements [Factory].
func (f *BridgeFactory) NewSession(ctx context.Context, opts SessionOpts) (Session, error) {
	cmd := exec.CommandContext(ctx, f.cfg.Command, f.CommandArgs(opts)...)
	cmd.Stderr = f.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start bridge %s: %w", f.cfg.Command, err)
	}

	return NewStreamSession(stdin, stdout, cmd.Wait), nil
}

type bridgeRequest struct {
	ID     int    `json:"id"`
	Op     string `json:"op"`
	Path   string `json:"path,omitempty"`
	Handle string `json:"handle,omitempty"`
	Target string `json:"target,omitempty"`
	Name   string `json:"name,omitempty"`
	Mode   string `json:"mode,omitempty"`
}

type bridgeResponse struct {
	ID     int    `json:"id"`
	OK     bool   `json:"ok"`
	Handle string `json:"handle,omitempty"`
	Error  string `json:"error,omitempty"`
}

// StreamSession speaks the bridge protocol over a pair of streams.
//
// Requests are serialized; a session only ever has one request in flight.
type StreamSession struct {
	mu       sync.Mutex
	in       io.WriteCloser
	enc      *json.Encoder
	out      *bufio.Scanner
	wait     func() error
	nextID   int
	disposed bool
	paths    map[ProjectHandle]string
}

// NewStreamSession wraps in/out. wait, when non-nil, is called by Dispose after in is closed.
func NewStreamSession(in io.WriteCloser, out io.Reader, wait func() error) *StreamSession {
	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &StreamSession{
		in:    in,
		enc:   json.NewEncoder(in),
		out:   scanner,
		wait:  wait,
		paths: make(map[ProjectHandle]string),
	}
}

func (s *StreamSession) call(ctx context.Context, req bridgeRequest) (bridgeResponse, error) {
	if err := ctx.Err(); err != nil {
		return bridgeResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return bridgeResponse{}, shared.ErrSessionClosed
	}

	s.nextID++
	req.ID = s.nextID
	if err := s.enc.Encode(req); err != nil {
		return bridgeResponse{}, fmt.Errorf("failed to send %s request: %w", req.Op, err)
	}

	if !s.out.Scan() {
		if err := s.out.Err(); err != nil {
			return bridgeResponse{}, fmt.Errorf("failed to read %s response: %w", req.Op, err)
		}
		return bridgeResponse{}, fmt.Errorf("failed to read %s response: %w", req.Op, io.ErrUnexpectedEOF)
	}

	var resp bridgeResponse
	if err := json.Unmarshal(s.out.Bytes(), &resp); err != nil {
		return bridgeResponse{}, fmt.Errorf("malformed %s response: %w", req.Op, err)
	}
	if resp.ID != req.ID {
		return resp, fmt.Errorf("%s response id %d does not match request %d", req.Op, resp.ID, req.ID)
	}
	if !resp.OK {
		msg := resp.Error
		if msg == "" {
			msg = "backend reported failure"
		}
		return resp, errors.New(msg)
	}
	return resp, nil
}

// Open implements [Session].
func (s *StreamSession) Open(ctx context.Context, path string) (ProjectHandle, error) {
	resp, err := s.call(ctx, bridgeRequest{Op: "open", Path: path})
	if err != nil {
		return "", &OpenError{Path: path, Err: err}
	}
	if resp.Handle == "" {
		return "", &OpenError{Path: path, Err: shared.ErrInvalidHandle}
	}

	h := ProjectHandle(resp.Handle)
	s.mu.Lock()
	s.paths[h] = path
	s.mu.Unlock()
	return h, nil
}

// Archive implements [Session].
func (s *StreamSession) Archive(ctx context.Context, h ProjectHandle, targetDir, name string, mode ArchiveMode) error {
	path := s.pathOf(h)
	if h == "" {
		return &ArchiveError{Path: path, Err: shared.ErrInvalidHandle}
	}
	req := bridgeRequest{Op: "archive", Handle: string(h), Target: targetDir, Name: name, Mode: mode.String()}
	if _, err := s.call(ctx, req); err != nil {
		return &ArchiveError{Path: path, Err: err}
	}
	return nil
}

// Close implements [Session].
func (s *StreamSession) Close(ctx context.Context, h ProjectHandle) error {
	path := s.pathOf(h)
	if h == "" {
		return &CloseError{Path: path, Err: shared.ErrInvalidHandle}
	}
	if _, err := s.call(ctx, bridgeRequest{Op: "close", Handle: string(h)}); err != nil {
		return &CloseError{Path: path, Err: err}
	}

	s.mu.Lock()
	delete(s.paths, h)
	s.mu.Unlock()
	return nil
}

// Dispose closes the request stream and waits for the bridge to exit. Later calls are no-ops.
func (s *StreamSession) Dispose() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	s.mu.Unlock()

	err := s.in.Close()
	if s.wait != nil {
		if werr := s.wait(); werr != nil {
			err = errors.Join(err, fmt.Errorf("bridge exited: %w", werr))
		}
	}
	return err
}

func (s *StreamSession) pathOf(h ProjectHandle) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.paths[h]; ok {
		return p
	}
	return string(h)
}
