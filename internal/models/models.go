// package models defines the data model for project discovery and archive runs
package models

import (
	"path/filepath"
	"strings"
	"time"
)

// Model defines the base interface for all persistent models.
// Implementations include ArchiveRun and ArchiveOutcome.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// ProjectDescriptor is a discovered project file.
type ProjectDescriptor struct {
	Path      string `json:"path"`      // Absolute file path
	BaseName  string `json:"base_name"` // File name without extension
	Extension string `json:"extension"` // Recognized extension including the leading dot
}

// NewProjectDescriptor derives the base name and extension from path.
func NewProjectDescriptor(path string) ProjectDescriptor {
	ext := filepath.Ext(path)
	return ProjectDescriptor{
		Path:      path,
		BaseName:  strings.TrimSuffix(filepath.Base(path), ext),
		Extension: ext,
	}
}

// Outcome is the terminal result of an archive task.
type Outcome string

const (
	OutcomePending   Outcome = ""
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// IsTerminal reports whether the outcome has been decided.
func (o Outcome) IsTerminal() bool {
	return o == OutcomeSucceeded || o == OutcomeFailed
}

// TaskState is the lifecycle position of an archive task.
//
//	Created → SessionAcquiring → Opening → Archiving → Closing → Succeeded | Failed
type TaskState int

const (
	StateCreated TaskState = iota
	StateSessionAcquiring
	StateOpening
	StateArchiving
	StateClosing
	StateSucceeded
	StateFailed
)

func (s TaskState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateSessionAcquiring:
		return "session_acquiring"
	case StateOpening:
		return "opening"
	case StateArchiving:
		return "archiving"
	case StateClosing:
		return "closing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return ""
	}
}

// IsTerminal reports whether no further transitions can happen.
func (s TaskState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}
