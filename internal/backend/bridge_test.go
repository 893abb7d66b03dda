package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/desertthunder/projarc/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBridge answers bridge requests in-process over pipes.
type fakeBridge struct {
	mu       sync.Mutex
	requests []bridgeRequest
	handle   func(req bridgeRequest) bridgeResponse
}

func (b *fakeBridge) seen() []bridgeRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bridgeRequest(nil), b.requests...)
}

func startFakeBridge(t *testing.T, handle func(req bridgeRequest) bridgeResponse) (*StreamSession, *fakeBridge) {
	t.Helper()

	fb := &fakeBridge{handle: handle}
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer reqR.Close()
		defer respW.Close()

		dec := json.NewDecoder(reqR)
		enc := json.NewEncoder(respW)
		for {
			var req bridgeRequest
			if err := dec.Decode(&req); err != nil {
				return
			}
			fb.mu.Lock()
			fb.requests = append(fb.requests, req)
			fb.mu.Unlock()

			resp := fb.handle(req)
			if resp.ID == 0 {
				resp.ID = req.ID
			}
			if resp.ID < 0 {
				return
			}
			if err := enc.Encode(resp); err != nil {
				return
			}
		}
	}()

	session := NewStreamSession(reqW, respR, func() error {
		<-done
		return nil
	})
	t.Cleanup(func() { _ = session.Dispose() })
	return session, fb
}

func okBridge(req bridgeRequest) bridgeResponse {
	if req.Op == "open" {
		return bridgeResponse{OK: true, Handle: "h-" + req.Path}
	}
	return bridgeResponse{OK: true}
}

func TestStreamSession_Lifecycle(t *testing.T) {
	ctx := context.Background()
	session, fb := startFakeBridge(t, okBridge)

	h, err := session.Open(ctx, "/r/P1/proj.ap15")
	require.NoError(t, err)
	assert.Equal(t, ProjectHandle("h-/r/P1/proj.ap15"), h)

	require.NoError(t, session.Archive(ctx, h, "/out", "proj_20260101_0930.zap15", ModeCompressed))
	require.NoError(t, session.Close(ctx, h))
	require.NoError(t, session.Dispose())

	reqs := fb.seen()
	require.Len(t, reqs, 3)
	assert.Equal(t, "open", reqs[0].Op)
	assert.Equal(t, "archive", reqs[1].Op)
	assert.Equal(t, "/out", reqs[1].Target)
	assert.Equal(t, "proj_20260101_0930.zap15", reqs[1].Name)
	assert.Equal(t, "compressed", reqs[1].Mode)
	assert.Equal(t, "close", reqs[2].Op)
	assert.Equal(t, []int{1, 2, 3}, []int{reqs[0].ID, reqs[1].ID, reqs[2].ID})
}

func TestStreamSession_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("open failure", func(t *testing.T) {
		session, _ := startFakeBridge(t, func(req bridgeRequest) bridgeResponse {
			return bridgeResponse{OK: false, Error: "project is locked"}
		})

		_, err := session.Open(ctx, "/r/P1/locked.ap15")
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrProjectOpen)

		var openErr *OpenError
		require.ErrorAs(t, err, &openErr)
		assert.Equal(t, "/r/P1/locked.ap15", openErr.Path)
		assert.Contains(t, err.Error(), "project is locked")
	})

	t.Run("open without handle", func(t *testing.T) {
		session, _ := startFakeBridge(t, func(req bridgeRequest) bridgeResponse {
			return bridgeResponse{OK: true}
		})

		_, err := session.Open(ctx, "/r/P1/proj.ap15")
		assert.ErrorIs(t, err, shared.ErrProjectOpen)
		assert.ErrorIs(t, err, shared.ErrInvalidHandle)
	})

	t.Run("archive failure carries project path", func(t *testing.T) {
		session, _ := startFakeBridge(t, func(req bridgeRequest) bridgeResponse {
			if req.Op == "archive" {
				return bridgeResponse{OK: false, Error: "disk full"}
			}
			return okBridge(req)
		})

		h, err := session.Open(ctx, "/r/P1/proj.ap15")
		require.NoError(t, err)

		err = session.Archive(ctx, h, "/out", "proj.zap15", ModeCompressed)
		assert.ErrorIs(t, err, shared.ErrProjectArchive)

		var archiveErr *ArchiveError
		require.ErrorAs(t, err, &archiveErr)
		assert.Equal(t, "/r/P1/proj.ap15", archiveErr.Path)
	})

	t.Run("empty handle is rejected locally", func(t *testing.T) {
		session, fb := startFakeBridge(t, okBridge)

		assert.ErrorIs(t, session.Archive(ctx, "", "/out", "x.zap15", ModeCompressed), shared.ErrInvalidHandle)
		assert.ErrorIs(t, session.Close(ctx, ""), shared.ErrInvalidHandle)
		assert.Empty(t, fb.seen())
	})

	t.Run("bridge exits mid-request", func(t *testing.T) {
		session, _ := startFakeBridge(t, func(req bridgeRequest) bridgeResponse {
			return bridgeResponse{ID: -1}
		})

		_, err := session.Open(ctx, "/r/P1/proj.ap15")
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("mismatched response id", func(t *testing.T) {
		session, _ := startFakeBridge(t, func(req bridgeRequest) bridgeResponse {
			return bridgeResponse{ID: req.ID + 10, OK: true, Handle: "h"}
		})

		_, err := session.Open(ctx, "/r/P1/proj.ap15")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not match")
	})

	t.Run("canceled context sends nothing", func(t *testing.T) {
		session, fb := startFakeBridge(t, okBridge)
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := session.Open(canceled, "/r/P1/proj.ap15")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, fb.seen())
	})

	t.Run("calls after dispose", func(t *testing.T) {
		session, _ := startFakeBridge(t, okBridge)
		require.NoError(t, session.Dispose())
		require.NoError(t, session.Dispose())

		_, err := session.Open(ctx, "/r/P1/proj.ap15")
		assert.ErrorIs(t, err, shared.ErrSessionClosed)
	})
}

func TestBridgeFactory(t *testing.T) {
	t.Run("requires command", func(t *testing.T) {
		_, err := NewBridgeFactory(shared.BackendConfig{Name: BridgeName})
		assert.ErrorIs(t, err, shared.ErrInvalidConfig)
	})

	t.Run("CommandArgs", func(t *testing.T) {
		f, err := NewBridgeFactory(shared.BackendConfig{
			Name:    BridgeName,
			Version: "V17",
			Command: "bridge",
			Args:    []string{"--quiet"},
			LibraryPaths: map[string]string{
				"hmi":         "/lib/hmi.dll",
				"engineering": "/lib/eng.dll",
				"unused":      "",
			},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{
			"--quiet", "--headless", "--version", "V17",
			"--lib", "engineering=/lib/eng.dll",
			"--lib", "hmi=/lib/hmi.dll",
		}, f.CommandArgs(SessionOpts{Headless: true}))

		assert.Equal(t, []string{"--quiet", "--version", "V17", "--lib", "engineering=/lib/eng.dll", "--lib", "hmi=/lib/hmi.dll"},
			f.CommandArgs(SessionOpts{}))
	})

	t.Run("missing executable", func(t *testing.T) {
		f, err := NewBridgeFactory(shared.BackendConfig{Name: BridgeName, Command: "/nonexistent/projarc-bridge"})
		require.NoError(t, err)
		f.SetStderr(nil)

		_, err = f.NewSession(context.Background(), SessionOpts{Headless: true})
		assert.Error(t, err)
	})
}

func TestRegistry(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewRegistry().Load(shared.BackendConfig{Name: "nope"})
		assert.ErrorIs(t, err, shared.ErrUnknownBackend)
	})

	t.Run("constructor error is wrapped", func(t *testing.T) {
		_, err := DefaultRegistry().Load(shared.BackendConfig{Name: BridgeName})
		assert.ErrorIs(t, err, shared.ErrInvalidConfig)
	})

	t.Run("loads registered backend", func(t *testing.T) {
		r := DefaultRegistry()
		f, err := r.Load(shared.BackendConfig{Name: BridgeName, Command: "bridge"})
		require.NoError(t, err)
		assert.Equal(t, BridgeName, f.Name())
	})

	t.Run("Names are sorted", func(t *testing.T) {
		r := DefaultRegistry()
		r.Register("alpha", func(cfg shared.BackendConfig) (Factory, error) { return nil, errors.New("unused") })
		assert.Equal(t, []string{"alpha", BridgeName}, r.Names())
	})
}
