// Package credential persists the LinkedIn publishing credential.
package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/postpilot/postpilot/internal/database"
)

// Credential is the access token and resolved account identity needed to
// publish on behalf of a user. Exactly one credential is held at a time.
type Credential struct {
	AccessToken string    `json:"access_token"`
	AccountID   string    `json:"account_id"`
	ObtainedAt  time.Time `json:"obtained_at"`
}

// Store handles database operations for the credential record.
type Store struct {
	db *database.DB
}

// NewStore creates a new credential store.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Save persists the credential, fully replacing any prior value. The write
// is durable before Save returns.
func (s *Store) Save(ctx context.Context, cred *Credential) error {
	query := `
		INSERT INTO credentials (id, access_token, account_id, obtained_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			access_token = excluded.access_token,
			account_id = excluded.account_id,
			obtained_at = excluded.obtained_at
	`

	_, err := s.db.ExecContext(ctx, query,
		cred.AccessToken,
		cred.AccountID,
		cred.ObtainedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}

	return nil
}

// Load returns the current credential, or (nil, nil) when none has been
// stored. Absence is not an error.
func (s *Store) Load(ctx context.Context) (*Credential, error) {
	query := `SELECT access_token, account_id, obtained_at FROM credentials WHERE id = 1`

	var cred Credential
	var obtainedAt string

	err := s.db.QueryRowContext(ctx, query).Scan(
		&cred.AccessToken,
		&cred.AccountID,
		&obtainedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading credential: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, obtainedAt); err == nil {
		cred.ObtainedAt = t
	}

	return &cred, nil
}
