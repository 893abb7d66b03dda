// Package tasks archives discovered projects concurrently through a backend session per project.
//
// # Core Operations
//
//  1. [ArchiveEngine.RunAll] : Archive every project at once
//     - Materializes one [ArchiveTask] per descriptor before starting any work
//     - Starts one goroutine per task, with no admission limit unless a launch rate is configured
//     - Waits for every task to reach a terminal outcome, never cancelling siblings and never retrying
//     - Returns a [RunResult] listing every task outcome (order unspecified)
//
//  2. [ArchiveEngine.Archive] : Archive a single project
//     - Names the archive "<base>_<YYYYMMDD>_<HHMM>" with a "z" inserted after the extension dot
//     - Acquires a headless session, opens the project, archives it compressed into the output directory
//     - Closes the project only when it was opened, then disposes the session on every path
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct carries the phase, step counters, a message, and a task or run snapshot in Data.
// Updates use select with default so a slow consumer never stalls an archive task.
//
// # Limitations
//
// Backend calls have no timeout. A hung session blocks the completion barrier until its context is cancelled.
package tasks
