package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSearchRoots(t *testing.T) {
	t.Run("missing paths file falls back to default", func(t *testing.T) {
		cfg := ResolveSearchRoots(ResolveOpts{
			PathsFile:   filepath.Join(t.TempDir(), "paths.txt"),
			DefaultRoot: "/home/user/Desktop",
		})

		assert.Equal(t, []string{"/home/user/Desktop"}, cfg.Roots())
		assert.Equal(t, SourceDefault, cfg.Source())
	})

	t.Run("paths file overrides default in file order", func(t *testing.T) {
		pathsFile := filepath.Join(t.TempDir(), "paths.txt")
		require.NoError(t, os.WriteFile(pathsFile, []byte("/d1\r\n\n  /d2  \n\n"), 0644))

		cfg := ResolveSearchRoots(ResolveOpts{PathsFile: pathsFile, DefaultRoot: "/desktop"})

		assert.Equal(t, []string{"/d1", "/d2"}, cfg.Roots())
		assert.Equal(t, SourcePathsFile, cfg.Source())
		assert.Equal(t, 2, cfg.Len())
	})

	t.Run("empty paths file falls back", func(t *testing.T) {
		pathsFile := filepath.Join(t.TempDir(), "paths.txt")
		require.NoError(t, os.WriteFile(pathsFile, []byte("\n   \n"), 0644))

		cfg := ResolveSearchRoots(ResolveOpts{PathsFile: pathsFile, DefaultRoot: "/desktop"})
		assert.Equal(t, []string{"/desktop"}, cfg.Roots())
	})

	t.Run("malformed paths file falls back", func(t *testing.T) {
		pathsFile := filepath.Join(t.TempDir(), "paths.txt")
		require.NoError(t, os.WriteFile(pathsFile, []byte{0xff, 0xfe, '\n'}, 0644))

		cfg := ResolveSearchRoots(ResolveOpts{PathsFile: pathsFile, DefaultRoot: "/desktop"})
		assert.Equal(t, []string{"/desktop"}, cfg.Roots())
	})

	t.Run("directory instead of file falls back", func(t *testing.T) {
		cfg := ResolveSearchRoots(ResolveOpts{PathsFile: t.TempDir(), DefaultRoot: "/desktop"})
		assert.Equal(t, []string{"/desktop"}, cfg.Roots())
	})

	t.Run("no paths file configured", func(t *testing.T) {
		cfg := ResolveSearchRoots(ResolveOpts{DefaultRoot: "/desktop"})
		assert.Equal(t, []string{"/desktop"}, cfg.Roots())
	})
}

func TestSearchConfig_Immutable(t *testing.T) {
	cfg := NewSearchConfig("/a", "/b")
	roots := cfg.Roots()
	roots[0] = "/mutated"

	assert.Equal(t, []string{"/a", "/b"}, cfg.Roots())
	assert.Equal(t, SourceExplicit, cfg.Source())
}
