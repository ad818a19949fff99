package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type Database struct {
	db *sql.DB
}

func NewSQLite(path string) (*Database, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	d := &Database{db: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transcriptions (
		id TEXT PRIMARY KEY,
		file_path TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		language TEXT NOT NULL,
		include_timestamps INTEGER NOT NULL DEFAULT 0,
		was_chunked INTEGER NOT NULL DEFAULT 0,
		chunk_count INTEGER NOT NULL DEFAULT 0,
		duration REAL,
		status TEXT NOT NULL DEFAULT 'running',
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		completed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_transcriptions_created_at ON transcriptions(created_at);
	`
	_, err := d.db.Exec(schema)
	return err
}

// StartTranscription inserts t as running and fills in its ID and CreatedAt.
func (d *Database) StartTranscription(t *Transcription) error {
	t.ID = uuid.NewString()
	t.Status = StatusRunning
	t.CreatedAt = time.Now()
	_, err := d.db.Exec(`
		INSERT INTO transcriptions (id, file_path, file_size, language, include_timestamps, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.FilePath, t.FileSize, t.Language, t.IncludeTimestamps, t.Status, t.CreatedAt,
	)
	return err
}

// FinishTranscription stores the terminal state of t.
func (d *Database) FinishTranscription(t *Transcription) error {
	now := time.Now()
	t.CompletedAt = &now
	var errMsg sql.NullString
	if t.Error != "" {
		errMsg = sql.NullString{String: t.Error, Valid: true}
	}
	var duration sql.NullFloat64
	if t.Duration != nil {
		duration = sql.NullFloat64{Float64: *t.Duration, Valid: true}
	}
	_, err := d.db.Exec(`
		UPDATE transcriptions
		SET status = ?, error = ?, was_chunked = ?, chunk_count = ?, duration = ?, completed_at = ?
		WHERE id = ?`,
		t.Status, errMsg, t.WasChunked, t.ChunkCount, duration, now, t.ID,
	)
	return err
}

const selectTranscription = `
	SELECT id, file_path, file_size, language, include_timestamps, was_chunked, chunk_count,
	       duration, status, error, created_at, completed_at
	FROM transcriptions`

type scanner interface {
	Scan(dest ...any) error
}

func scanTranscription(row scanner) (*Transcription, error) {
	t := &Transcription{}
	var duration sql.NullFloat64
	var errMsg sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(&t.ID, &t.FilePath, &t.FileSize, &t.Language, &t.IncludeTimestamps,
		&t.WasChunked, &t.ChunkCount, &duration, &t.Status, &errMsg, &t.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if duration.Valid {
		t.Duration = &duration.Float64
	}
	if errMsg.Valid {
		t.Error = errMsg.String
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return t, nil
}

func (d *Database) GetTranscription(id string) (*Transcription, error) {
	return scanTranscription(d.db.QueryRow(selectTranscription+" WHERE id = ?", id))
}

// ListTranscriptions returns the most recent calls first.
func (d *Database) ListTranscriptions(limit int) ([]*Transcription, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.db.Query(selectTranscription+" ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Transcription
	for rows.Next() {
		t, err := scanTranscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
