package index

import "context"

const recomputeTokensSQL = `
UPDATE sessions SET
    total_input_tokens  = (SELECT COALESCE(SUM(input_tokens), 0)  FROM messages WHERE session_id = sessions.id),
    total_output_tokens = (SELECT COALESCE(SUM(output_tokens), 0) FROM messages WHERE session_id = sessions.id)
WHERE id = ?`

func recomputeTokens(ctx context.Context, q queryer, sessionID int64) error {
	_, err := q.ExecContext(ctx, recomputeTokensSQL, sessionID)
	return err
}

// RecomputeTokens sets a session's token totals to the sums over its
// messages, counting missing per-message counts as zero.
func (d *DB) RecomputeTokens(ctx context.Context, sessionID int64) error {
	return recomputeTokens(ctx, d.db, sessionID)
}
