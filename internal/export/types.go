// Package export writes recorded scans to machine-readable report
// files so results can leave the local store.
package export

import (
	"codex/internal/scan"
	"codex/internal/store"
)

// Report is the exported form of one recorded scan.
type Report struct {
	Metadata   ReportMetadata   `json:"metadata"`
	Summary    map[string]int   `json:"summaryByCategory"`
	Violations []scan.Violation `json:"violations"`
}

// ReportMetadata describes the scan the report was built from.
type ReportMetadata struct {
	ScanID       string `json:"scanId"`
	TargetPath   string `json:"targetPath"`
	CreatedAt    string `json:"createdAt"` // ISO 8601 timestamp
	FilesScanned int    `json:"filesScanned"`
	FilesSkipped int    `json:"filesSkipped"`
	Generated    string `json:"generated"`
}

// Options configures an export.
type Options struct {
	Path     string // Destination file; defaults to codex-report-<scan id>.json
	Compress bool   // Write zstd-compressed output (implied by a .zst path)
}

func metadataFrom(rec *store.ScanRecord, generated string) ReportMetadata {
	return ReportMetadata{
		ScanID:       rec.ScanID,
		TargetPath:   rec.TargetPath,
		CreatedAt:    rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		FilesScanned: rec.FilesScanned,
		FilesSkipped: rec.FilesSkipped,
		Generated:    generated,
	}
}
