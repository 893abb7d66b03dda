package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrInvalidInput  = fmt.Errorf("invalid input")

	// Discovery errors
	ErrNoProjects  = fmt.Errorf("no projects found")
	ErrScanSkipped = fmt.Errorf("directory skipped")

	// Backend errors
	ErrUnknownBackend     = fmt.Errorf("unknown backend")
	ErrSessionUnavailable = fmt.Errorf("backend session unavailable")
	ErrSessionClosed      = fmt.Errorf("backend session closed")
	ErrProjectOpen        = fmt.Errorf("failed to open project")
	ErrProjectArchive     = fmt.Errorf("failed to archive project")
	ErrProjectClose       = fmt.Errorf("failed to close project")
	ErrInvalidHandle      = fmt.Errorf("invalid project handle")

	// History errors
	ErrRunNotFound    = fmt.Errorf("run not found")
	ErrRunInterrupted = fmt.Errorf("archive run interrupted")
	ErrHistoryOff     = fmt.Errorf("run history is disabled")
)
