package store

import (
	"database/sql"
	"time"
)

const runColumns = `id, run_id, started_at, project_path, job_path, src_count, tb_count,
	include_count, include_dir_count, total_files, status, error`

// InsertRun records a run and returns its row ID.
func (db *DB) InsertRun(r *Run) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO runs
		(run_id, started_at, project_path, job_path, src_count, tb_count,
		 include_count, include_dir_count, total_files, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.StartedAt.UTC().Format(time.RFC3339Nano), r.ProjectPath, r.JobPath,
		r.SrcCount, r.TbCount, r.IncludeCount, r.IncludeDirCount, r.TotalFiles,
		r.Status, nullString(r.Error),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// RunFilter narrows ListRuns.
type RunFilter struct {
	// JobPath, when set, keeps only runs that wrote into that job directory.
	JobPath string
	// Limit caps the result; <= 0 returns all.
	Limit int
}

// ListRuns returns runs matching f, newest first.
func (db *DB) ListRuns(f RunFilter) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs"
	args := []any{}
	if f.JobPath != "" {
		query += " WHERE job_path = ?"
		args = append(args, f.JobPath)
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var startedAt string
	var errText sql.NullString
	err := row.Scan(&r.ID, &r.RunID, &startedAt, &r.ProjectPath, &r.JobPath,
		&r.SrcCount, &r.TbCount, &r.IncludeCount, &r.IncludeDirCount,
		&r.TotalFiles, &r.Status, &errText)
	if err != nil {
		return nil, err
	}
	r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	r.Error = errText.String
	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
