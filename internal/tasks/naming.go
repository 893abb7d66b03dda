package tasks

import (
	"strings"
	"time"

	"github.com/desertthunder/projarc/internal/models"
)

// TimestampLayout is the fixed-width, zero-padded timestamp appended to archive names.
const TimestampLayout = "20060102_1504"

// ArchiveMarker is inserted after the leading dot of a project extension to form the archive extension.
const ArchiveMarker = "z"

// ArchiveBaseName returns "<base>_<YYYYMMDD>_<HHMM>" for the instant at.
func ArchiveBaseName(base string, at time.Time) string {
	return base + "_" + at.Format(TimestampLayout)
}

// ArchiveExtension turns ".ap15" into ".zap15".
func ArchiveExtension(ext string) string {
	return "." + ArchiveMarker + strings.TrimPrefix(ext, ".")
}

// ArchiveFileName returns the full archive file name for d at the instant at.
func ArchiveFileName(d models.ProjectDescriptor, at time.Time) string {
	return ArchiveBaseName(d.BaseName, at) + ArchiveExtension(d.Extension)
}
