package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/projarc/internal/models"
	"github.com/desertthunder/projarc/internal/shared"
)

// SkippedDir is the diagnostic record for a directory that could not be listed.
type SkippedDir struct {
	Path string
	Err  error
}

func (s SkippedDir) Error() string {
	return fmt.Sprintf("%v: %s: %v", shared.ErrScanSkipped, s.Path, s.Err)
}

func (s SkippedDir) Unwrap() []error { return []error{shared.ErrScanSkipped, s.Err} }

// ScanResult holds every discovered project.
//
// Projects is never nil; Found is false when the search completed with zero matches.
type ScanResult struct {
	Projects []models.ProjectDescriptor
	Found    bool
	Skipped  []SkippedDir
}

// Scanner enumerates project files one level below each search root.
type Scanner struct {
	extensions map[string]struct{}
	logger     *log.Logger
}

// NewScanner creates a Scanner that recognizes the given extensions (with leading dot, matched exactly).
func NewScanner(extensions []string, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[ext] = struct{}{}
	}
	return &Scanner{extensions: set, logger: logger}
}

// Recognized reports whether ext belongs to the recognized set.
func (s *Scanner) Recognized(ext string) bool {
	_, ok := s.extensions[ext]
	return ok
}

// Scan walks every root in order and returns the matched projects.
func (s *Scanner) Scan(roots SearchConfig) ScanResult {
	result := ScanResult{Projects: []models.ProjectDescriptor{}}

	for _, root := range roots.roots {
		s.logger.Infof("Searching projects in %s", root)

		entries, err := os.ReadDir(root)
		if err != nil {
			result.Skipped = append(result.Skipped, s.skip(root, err))
			continue
		}

		for _, entry := range entries {
			dir := filepath.Join(root, entry.Name())
			if !isDir(entry, dir) {
				continue
			}

			projects, err := s.scanDir(dir)
			if err != nil {
				result.Skipped = append(result.Skipped, s.skip(dir, err))
				continue
			}
			result.Projects = append(result.Projects, projects...)
		}
	}

	result.Found = len(result.Projects) > 0

	switch n := len(result.Projects); {
	case n > 1:
		s.logger.Infof("%d projects found", n)
	case n == 1:
		s.logger.Info("1 project found")
	default:
		s.logger.Warn("Couldn't find any project")
	}

	return result
}

// scanDir lists the files directly inside dir and keeps those with a recognized extension.
func (s *Scanner) scanDir(dir string) ([]models.ProjectDescriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var projects []models.ProjectDescriptor
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if isDir(entry, path) || !s.Recognized(filepath.Ext(entry.Name())) {
			continue
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		projects = append(projects, models.NewProjectDescriptor(abs))
	}
	return projects, nil
}

func (s *Scanner) skip(path string, err error) SkippedDir {
	s.logger.Warn("skipping directory", "path", path, "error", err)
	return SkippedDir{Path: path, Err: err}
}

// isDir follows symlinks so linked project folders are scanned like real ones.
func isDir(entry fs.DirEntry, path string) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir()
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
