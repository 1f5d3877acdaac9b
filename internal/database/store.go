package database

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/clearseek/clearseek/internal/model"
)

// dbFileName is the snapshot database filename inside the snapshot
// directory.
const dbFileName = "clearseek.db"

// Store provides SQLite-based persistence for session snapshots.
//
// Design decision: We use a single database file for all sessions
// rather than one file per session. This keeps the knowledge base
// cumulative across runs and makes count/clear operations trivial.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a snapshot store in the given directory.
// If CreateIfNotExists is false and the database doesn't exist, an
// error is returned; used by the query command, which must not create
// an empty knowledge base by accident.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot not found at %s (run a research session with snapshots enabled first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("check snapshot path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the snapshot database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Sessions store one row per research run
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		seed TEXT NOT NULL,
		state TEXT NOT NULL,
		created DATETIME DEFAULT CURRENT_TIMESTAMP,
		summary_json TEXT NOT NULL
	);

	-- Documents store one row per crawled URL, whatever the outcome
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		status TEXT NOT NULL,
		title TEXT,
		document_json TEXT NOT NULL,
		UNIQUE(session, url)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_session ON documents(session);
	CREATE INDEX IF NOT EXISTS idx_documents_url ON documents(url);

	-- Edges store the link graph
	CREATE TABLE IF NOT EXISTS edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		anchor TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_edges_session ON edges(session);
	CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source);

	-- Chunks store indexed text with embedding vectors
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT NOT NULL,
		session TEXT NOT NULL,
		document_url TEXT NOT NULL,
		start_offset INTEGER NOT NULL,
		end_offset INTEGER NOT NULL,
		text TEXT NOT NULL,
		embedding BLOB NOT NULL,
		domain TEXT,
		depth INTEGER,
		fetched_at DATETIME,
		PRIMARY KEY (session, id)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_session ON chunks(session);
	CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_url);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveSession persists a finished session's summary, documents, edges,
// and chunks in one transaction. Re-saving a session ID replaces its
// rows.
func (s *Store) SaveSession(ctx context.Context, sessionID, seed string, summary *model.Summary, docs []*model.Document, edges []model.LinkEdge, chunks []model.Chunk) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("serialize summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, table := range []string{"documents", "edges", "chunks"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE session = ?", sessionID); err != nil {
			return fmt.Errorf("clear previous %s: %w", table, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO sessions (id, seed, state, summary_json)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		seed = excluded.seed,
		state = excluded.state,
		summary_json = excluded.summary_json,
		created = CURRENT_TIMESTAMP
	`, sessionID, seed, string(summary.State), string(summaryJSON))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for _, doc := range docs {
		docJSON, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("serialize document %s: %w", doc.URL, err)
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (session, url, depth, status, title, document_json)
		VALUES (?, ?, ?, ?, ?, ?)
		`, sessionID, doc.URL, doc.Depth, string(doc.Status), doc.Title, string(docJSON))
		if err != nil {
			return fmt.Errorf("insert document %s: %w", doc.URL, err)
		}
	}

	for _, edge := range edges {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO edges (session, source, target, anchor)
		VALUES (?, ?, ?, ?)
		`, sessionID, edge.Source, edge.Target, edge.Anchor)
		if err != nil {
			return fmt.Errorf("insert edge %s -> %s: %w", edge.Source, edge.Target, err)
		}
	}

	for _, chunk := range chunks {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO chunks (id, session, document_url, start_offset, end_offset, text, embedding, domain, depth, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, chunk.ID, sessionID, chunk.DocumentURL, chunk.Start, chunk.End,
			chunk.Text, encodeVector(chunk.Embedding), chunk.Domain, chunk.Depth,
			chunk.FetchedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
		}
	}

	return tx.Commit()
}

// LoadChunks returns all stored chunks across sessions, with their
// embedding vectors decoded. Used to rebuild an in-memory index for
// offline queries.
func (s *Store) LoadChunks(ctx context.Context) ([]model.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, document_url, start_offset, end_offset, text, embedding, domain, depth, fetched_at
	FROM chunks
	ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []model.Chunk
	for rows.Next() {
		var c model.Chunk
		var blob []byte
		var fetchedAt string
		if err := rows.Scan(&c.ID, &c.DocumentURL, &c.Start, &c.End, &c.Text, &blob, &c.Domain, &c.Depth, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		c.Embedding = decodeVector(blob)
		c.FetchedAt = parseTimestamp(fetchedAt)
		chunks = append(chunks, c)
	}

	return chunks, rows.Err()
}

// ChunkCount returns the number of stored chunks across all sessions.
func (s *Store) ChunkCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// Clear removes all snapshot data: sessions, documents, edges, and
// chunks. The knowledge-base reset.
func (s *Store) Clear(ctx context.Context) error {
	for _, table := range []string{"chunks", "edges", "documents", "sessions"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// SessionInfo is one row of the session listing.
type SessionInfo struct {
	// ID is the session identifier.
	ID string

	// Seed is the session's seed URL.
	Seed string

	// State is the terminal crawl state.
	State string

	// Created is when the snapshot was written.
	Created time.Time
}

// ListSessions returns stored sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, seed, state, created FROM sessions
	ORDER BY created DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var created string
		if err := rows.Scan(&info.ID, &info.Seed, &info.State, &created); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.Created = parseTimestamp(created)
		sessions = append(sessions, info)
	}

	return sessions, rows.Err()
}

// GetSummary returns a stored session's summary, or nil when the
// session is unknown.
func (s *Store) GetSummary(ctx context.Context, sessionID string) (*model.Summary, error) {
	var summaryJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT summary_json FROM sessions WHERE id = ?", sessionID).Scan(&summaryJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session summary: %w", err)
	}

	var summary model.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("parse session summary: %w", err)
	}
	return &summary, nil
}

// encodeVector serializes an embedding as little-endian float32 bytes.
// Four bytes per dimension, no header: the vector length is implied by
// the blob length.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector is the inverse of encodeVector. Trailing partial values
// are dropped.
func decodeVector(buf []byte) []float32 {
	vec := make([]float32, 0, len(buf)/4)
	for i := 0; i+4 <= len(buf); i += 4 {
		vec = append(vec, math.Float32frombits(binary.LittleEndian.Uint32(buf[i:])))
	}
	return vec
}

// timestampFormats contains the timestamp formats that SQLite may
// return. The order matters: more specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. Returns zero time when none matches.
func parseTimestamp(v string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
