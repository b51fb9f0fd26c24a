// Package store provides SQLite-backed history of generate_filelist runs.
package store

import "time"

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run records one invocation of the generator.
type Run struct {
	ID              int64     `json:"id"`
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	ProjectPath     string    `json:"project_path"`
	JobPath         string    `json:"job_path"`
	SrcCount        int       `json:"src_count"`
	TbCount         int       `json:"tb_count"`
	IncludeCount    int       `json:"include_count"`
	IncludeDirCount int       `json:"include_dir_count"`
	TotalFiles      int       `json:"total_files"`
	Status          string    `json:"status"`
	Error           string    `json:"error,omitempty"`
}
