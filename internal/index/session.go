package index

import (
	"context"
	"time"
)

// SessionRef identifies a persisted session.
type SessionRef struct {
	ID   int64
	UUID string
}

// A single upsert statement: two importers resolving the same identifier
// can never create two rows. updated_at only moves forward and created_at
// only moves back, so re-running over the same entries changes nothing.
const upsertSessionSQL = `
INSERT INTO sessions (session_uuid, project_path, file_path, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(session_uuid) DO UPDATE SET
    updated_at = CASE
        WHEN excluded.updated_at IS NULL THEN sessions.updated_at
        WHEN sessions.updated_at IS NULL OR excluded.updated_at > sessions.updated_at THEN excluded.updated_at
        ELSE sessions.updated_at END,
    created_at = CASE
        WHEN excluded.created_at IS NULL THEN sessions.created_at
        WHEN sessions.created_at IS NULL OR excluded.created_at < sessions.created_at THEN excluded.created_at
        ELSE sessions.created_at END,
    project_path = CASE WHEN sessions.project_path = '' THEN excluded.project_path ELSE sessions.project_path END,
    file_path = CASE WHEN sessions.file_path = '' THEN excluded.file_path ELSE sessions.file_path END
RETURNING id`

func resolveSession(ctx context.Context, q queryer, sessionUUID, project, filePath string, ts time.Time) (SessionRef, error) {
	ref := SessionRef{UUID: sessionUUID}
	stamp := FormatTime(ts)
	err := q.QueryRowContext(ctx, upsertSessionSQL,
		sessionUUID, project, filePath, stamp, stamp,
	).Scan(&ref.ID)
	return ref, err
}

// ResolveSession returns the session for sessionUUID, creating it with zero
// token totals and no summary on first sight. ts, when non-zero, widens the
// session's created/updated range.
func (d *DB) ResolveSession(ctx context.Context, sessionUUID, project, filePath string, ts time.Time) (SessionRef, error) {
	return resolveSession(ctx, d.db, sessionUUID, project, filePath, ts)
}

func applySummary(ctx context.Context, q queryer, sessionID int64, summary string) error {
	_, err := q.ExecContext(ctx, "UPDATE sessions SET summary = ? WHERE id = ?", summary, sessionID)
	return err
}

// ApplySummary sets or overwrites a session's summary; the last call wins.
func (d *DB) ApplySummary(ctx context.Context, sessionUUID, summary string) error {
	res, err := d.db.ExecContext(ctx, "UPDATE sessions SET summary = ? WHERE session_uuid = ?", summary, sessionUUID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
