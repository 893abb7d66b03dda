package discovery

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// RootSource records where a [SearchConfig] came from.
type RootSource string

const (
	SourcePathsFile RootSource = "paths_file"
	SourceDefault   RootSource = "default"
	SourceExplicit  RootSource = "explicit"
)

// SearchConfig is the ordered, immutable list of directories to search.
type SearchConfig struct {
	roots  []string
	source RootSource
}

// NewSearchConfig builds a SearchConfig from explicit roots, e.g. command line arguments.
func NewSearchConfig(roots ...string) SearchConfig {
	return SearchConfig{roots: append([]string(nil), roots...), source: SourceExplicit}
}

// Roots returns a copy of the search roots in order.
func (c SearchConfig) Roots() []string {
	return append([]string(nil), c.roots...)
}

// Source reports where the roots came from.
func (c SearchConfig) Source() RootSource { return c.source }

// Len returns the number of roots.
func (c SearchConfig) Len() int { return len(c.roots) }

// ResolveOpts configures [ResolveSearchRoots].
type ResolveOpts struct {
	PathsFile   string      // Plain-text list of directories, one per line
	DefaultRoot string      // Used when PathsFile yields nothing
	Logger      *log.Logger // Optional; fallbacks are logged at debug level
}

// ResolveSearchRoots returns the roots listed in opts.PathsFile, or just opts.DefaultRoot.
//
// A missing, unreadable or malformed paths file is not an error. The result always holds at least one root.
func ResolveSearchRoots(opts ResolveOpts) SearchConfig {
	roots, err := readPathsFile(opts.PathsFile)
	if err == nil {
		return SearchConfig{roots: roots, source: SourcePathsFile}
	}

	if opts.Logger != nil {
		opts.Logger.Debug("using default search root", "default", opts.DefaultRoot, "reason", err)
	}
	return SearchConfig{roots: []string{opts.DefaultRoot}, source: SourceDefault}
}

func readPathsFile(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("no paths file configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("paths file %s is not valid UTF-8", path)
	}

	var roots []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		roots = append(roots, line)
	}

	if len(roots) == 0 {
		return nil, fmt.Errorf("paths file %s lists no directories", path)
	}
	return roots, nil
}
