package index

import (
	"context"
	"database/sql"
	"time"

	"github.com/romilly/claude-code-log-tools/internal/parse"
)

// Cutoff returns the timestamp up to which a project is known to be fully
// imported; the zero time means no checkpoint exists yet.
func (d *DB) Cutoff(ctx context.Context, project string) (time.Time, error) {
	var ts sql.NullString
	err := d.db.QueryRowContext(ctx,
		"SELECT last_import_timestamp FROM import_metadata WHERE project_path = ?",
		project,
	).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return ParseTime(ts), nil
}

// ShouldSkip reports whether an entry is at or before the cutoff. Entries
// without a timestamp are never skipped; the cutoff is the newest timestamp
// actually committed, so an entry exactly at it is already stored.
func ShouldSkip(e *parse.Entry, cutoff time.Time) bool {
	if cutoff.IsZero() || e.Time.IsZero() {
		return false
	}
	return !e.Time.After(cutoff)
}

// AdvanceCheckpoint moves a project's cutoff forward to ts. An older ts is a
// no-op. Call only once every entry up to ts has been committed.
func (d *DB) AdvanceCheckpoint(ctx context.Context, project string, ts time.Time) error {
	if ts.IsZero() {
		return nil
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO import_metadata (project_path, last_import_timestamp) VALUES (?, ?)
		ON CONFLICT(project_path) DO UPDATE SET
			last_import_timestamp = max(import_metadata.last_import_timestamp, excluded.last_import_timestamp)`,
		project, FormatTime(ts),
	)
	return err
}

type Checkpoint struct {
	Project string
	Cutoff  time.Time
}

func (d *DB) Checkpoints() ([]Checkpoint, error) {
	rows, err := d.db.Query("SELECT project_path, last_import_timestamp FROM import_metadata ORDER BY project_path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Checkpoint
	for rows.Next() {
		var c Checkpoint
		var ts sql.NullString
		if err := rows.Scan(&c.Project, &ts); err != nil {
			return nil, err
		}
		c.Cutoff = ParseTime(ts)
		out = append(out, c)
	}
	return out, rows.Err()
}
