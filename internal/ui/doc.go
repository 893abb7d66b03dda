// Package ui implements a terminal progress view for archive runs using bubbletea's Elm architecture.
//
// The TUI moves through two views:
//  1. [ProgressView] : Spinner, progress bar and live per-project state while tasks run
//  2. [ResultView] : Filterable list of outcomes with failures highlighted
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the ArchiveEngine, providing non-blocking status reporting during a run.
//
// Keyboard navigation uses vim-style bindings (j/k, /, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
