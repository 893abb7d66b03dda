// Package discovery finds engineering project files to archive.
//
// [ResolveSearchRoots] decides which directories to search: the lines of a per-user paths file, or a single
// default directory when that file is missing, unreadable or empty. Resolution never fails.
//
// [Scanner.Scan] looks exactly one level below each root. Files directly inside a root are ignored; files
// inside each immediate subdirectory are kept when their extension is in the recognized set. A directory that
// cannot be listed is skipped and reported as a [SkippedDir] while its siblings are still scanned.
package discovery
