// Package history keeps a capped, append-only log of generation and
// publication attempts.
package history

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/postpilot/postpilot/internal/database"
)

// Status of a history entry.
type Status string

const (
	StatusGenerated Status = "generated"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// MaxEntries is the maximum number of entries retained; inserting beyond
// the cap evicts the oldest entries.
const MaxEntries = 100

// Entry is one durable record of a single generate/publish attempt and its
// outcome. Entries are never mutated after creation.
type Entry struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	WordCount   int       `json:"word_count"`
	Status      Status    `json:"status"`
	PublishedID string    `json:"published_id,omitempty"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Store handles database operations for the post history log. Appends are
// serialized by a store-level mutex so concurrent runs cannot interleave
// the insert-then-truncate sequence.
type Store struct {
	db     *database.DB
	mu     sync.Mutex
	lastID int64
}

// NewStore creates a new history store.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Append assigns a fresh identifier and timestamp to the entry, inserts it,
// truncates the log to the MaxEntries most recent entries, and returns the
// stored entry.
func (s *Store) Append(ctx context.Context, entry Entry) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	entry.ID = s.nextID(now)
	entry.Timestamp = now

	query := `
		INSERT INTO posts (id, content, word_count, status, published_id, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Content,
		entry.WordCount,
		string(entry.Status),
		entry.PublishedID,
		entry.Error,
		entry.Timestamp.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting history entry: %w", err)
	}

	if err := s.truncate(ctx); err != nil {
		return nil, fmt.Errorf("truncating history: %w", err)
	}

	return &entry, nil
}

// List returns the full log, newest first. An empty log yields an empty
// slice, not an error.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT id, content, word_count, status, published_id, error, created_at
		FROM posts
		ORDER BY id DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var status, createdAt string
		if err := rows.Scan(&e.ID, &e.Content, &e.WordCount, &status, &e.PublishedID, &e.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.Status = Status(status)
		if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
			e.Timestamp = t
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Count returns the number of entries currently stored.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting history entries: %w", err)
	}
	return count, nil
}

// nextID derives a unique, monotonically increasing identifier from the
// current time. Callers must hold s.mu.
func (s *Store) nextID(now time.Time) string {
	id := now.UnixNano()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Store) truncate(ctx context.Context) error {
	query := `
		DELETE FROM posts WHERE id NOT IN (
			SELECT id FROM posts ORDER BY id DESC LIMIT ?
		)
	`
	_, err := s.db.ExecContext(ctx, query, MaxEntries)
	return err
}
