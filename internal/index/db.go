package index

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;

CREATE TABLE IF NOT EXISTS sessions (
    id                  INTEGER PRIMARY KEY,
    session_uuid        TEXT NOT NULL UNIQUE,
    project_path        TEXT NOT NULL DEFAULT '',
    file_path           TEXT NOT NULL DEFAULT '',
    summary             TEXT,
    created_at          TEXT,
    updated_at          TEXT,
    total_input_tokens  INTEGER NOT NULL DEFAULT 0,
    total_output_tokens INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    id                    INTEGER PRIMARY KEY,
    session_id            INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    uuid                  TEXT UNIQUE,
    parent_uuid           TEXT,
    type                  TEXT NOT NULL,
    role                  TEXT,
    timestamp             TEXT,
    cwd                   TEXT,
    git_branch            TEXT,
    model                 TEXT,
    input_tokens          INTEGER,
    output_tokens         INTEGER,
    cache_creation_tokens INTEGER,
    cache_read_tokens     INTEGER,
    version               TEXT,
    line_number           INTEGER NOT NULL DEFAULT 0,
    source_line           TEXT
);

CREATE TABLE IF NOT EXISTS content_blocks (
    id           INTEGER PRIMARY KEY,
    message_id   INTEGER NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
    block_index  INTEGER NOT NULL,
    block_type   TEXT NOT NULL,
    text_content TEXT,
    tool_name    TEXT,
    tool_input   TEXT,
    tool_use_id  TEXT,
    is_error     INTEGER NOT NULL DEFAULT 0,
    UNIQUE (message_id, block_index)
);

CREATE TABLE IF NOT EXISTS import_metadata (
    project_path          TEXT PRIMARY KEY,
    last_import_timestamp TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id);
CREATE INDEX IF NOT EXISTS idx_messages_type ON messages(type);
CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp);
CREATE INDEX IF NOT EXISTS idx_content_blocks_message_id ON content_blocks(message_id);
CREATE INDEX IF NOT EXISTS idx_content_blocks_type ON content_blocks(block_type);
CREATE INDEX IF NOT EXISTS idx_content_blocks_tool_use_id ON content_blocks(tool_use_id);
CREATE INDEX IF NOT EXISTS idx_content_blocks_tool_name ON content_blocks(tool_name);

CREATE VIRTUAL TABLE IF NOT EXISTS content_blocks_fts USING fts5(
    text_content,
    content=content_blocks,
    content_rowid=id,
    tokenize='porter unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS content_blocks_ai AFTER INSERT ON content_blocks BEGIN
    INSERT INTO content_blocks_fts(rowid, text_content) VALUES (new.id, new.text_content);
END;

CREATE TRIGGER IF NOT EXISTS content_blocks_ad AFTER DELETE ON content_blocks BEGIN
    INSERT INTO content_blocks_fts(content_blocks_fts, rowid, text_content) VALUES('delete', old.id, old.text_content);
END;

CREATE TRIGGER IF NOT EXISTS content_blocks_au AFTER UPDATE OF text_content ON content_blocks BEGIN
    INSERT INTO content_blocks_fts(content_blocks_fts, rowid, text_content) VALUES('delete', old.id, old.text_content);
    INSERT INTO content_blocks_fts(rowid, text_content) VALUES (new.id, new.text_content);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// timeLayout is fixed width so that text comparison in SQL orders by time.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// schemaVersion should be bumped whenever the FTS tokenizer or block text
// extraction changes; a mismatch rebuilds the full-text index.
const schemaVersion = "1"

type DB struct {
	db *sql.DB
}

// OpenDB opens (creating if needed) the store at dbPath. Per-connection
// settings go through the DSN so every pooled connection gets them.
func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Set("_txlock", "immediate")
	db, err := sql.Open("sqlite", "file:"+dbPath+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.addSourceLine(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate source_line: %w", err)
	}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if ver == schemaVersion {
		return nil
	}
	if ver != "" {
		if _, err := d.db.Exec("INSERT INTO content_blocks_fts(content_blocks_fts) VALUES('rebuild')"); err != nil {
			return fmt.Errorf("rebuild fts: %w", err)
		}
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

// addSourceLine brings stores created before source_line existed up to
// date. Entries without a uuid are unique by (session, source_line).
func (d *DB) addSourceLine() error {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('messages') WHERE name = 'source_line'").Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		if _, err := d.db.Exec("ALTER TABLE messages ADD COLUMN source_line TEXT"); err != nil {
			return err
		}
	}
	_, err := d.db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_source_line ON messages(session_id, source_line)")
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// FormatTime renders t in the stored layout; the zero time becomes NULL.
func FormatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

// ParseTime reads a stored timestamp; NULL and garbage yield the zero time.
func ParseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func (d *DB) SessionCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

func (d *DB) BlockCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM content_blocks").Scan(&n)
	return n, err
}

// CheckFTS runs the FTS5 integrity check, which fails when the index has
// drifted from content_blocks.
func (d *DB) CheckFTS() error {
	_, err := d.db.Exec("INSERT INTO content_blocks_fts(content_blocks_fts, rank) VALUES('integrity-check', 1)")
	return err
}
