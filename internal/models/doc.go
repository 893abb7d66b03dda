// Package models defines domain entities and persistence interfaces for projarc.
//
// The package contains two categories of types:
//
// 1. Value types produced and consumed by a run
//   - [ProjectDescriptor] : A discovered project file (path, base name, extension)
//   - [Outcome] : Terminal result of one archive task
//   - [TaskState] : Lifecycle position of one archive task
//
// 2. Persistent Entities: Database-backed run history
//   - [ArchiveRun] : One invocation of the archive command with its totals
//   - [ArchiveOutcome] : The recorded result of archiving a single project within a run
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
