// Package session owns the persisted session: the opaque bearer token and
// the most recently issued API key.
//
// Store is the only holder of that state. Readers across the client use
// Token/APIKey; writes are limited to Save (auth success), Invalidate (the
// gateway seeing a rejected token) and Clear (logout). Consumers are handed
// narrow interfaces so no other component can write.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/beaux-riel/openengram-site/internal/client/repositories/metadata"
	"github.com/beaux-riel/openengram-site/internal/dbx"
)

const (
	tokenKey  = "engram_token"
	apiKeyKey = "engram_api_key"
)

// Session is a snapshot of the stored values. Empty strings mean absent.
type Session struct {
	Token  string
	APIKey string
}

// Authenticated reports whether a token is held. It says nothing about
// whether the backend still accepts it.
func (s Session) Authenticated() bool { return s.Token != "" }

// Store caches the session in memory and persists every change to the
// metadata table. It is safe for concurrent use.
type Store struct {
	db *sql.DB

	mu      sync.RWMutex
	current Session
}

// NewStore loads the persisted session from db.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	s := &Store{db: db}

	repo := metadata.NewSQLiteRepository(db)
	token, _, err := repo.Get(ctx, tokenKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	apiKey, _, err := repo.Get(ctx, apiKeyKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	s.current = Session{Token: string(token), APIKey: string(apiKey)}
	return s, nil
}

// Get returns the current session.
func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the bearer token, ok=false when there is none.
func (s *Store) Token() (string, bool) {
	cur := s.Get()
	return cur.Token, cur.Token != ""
}

// APIKey returns the stored account key, ok=false when there is none.
func (s *Store) APIKey() (string, bool) {
	cur := s.Get()
	return cur.APIKey, cur.APIKey != ""
}

// Save persists the non-empty fields of next. An empty APIKey keeps the
// previously stored key. Both writes happen in one transaction; memory is
// only updated once they commit.
func (s *Store) Save(ctx context.Context, next Session) error {
	if next.Token == "" && next.APIKey == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if next.Token != "" {
			if err := repo.Set(ctx, tokenKey, []byte(next.Token)); err != nil {
				return err
			}
		}
		if next.APIKey != "" {
			if err := repo.Set(ctx, apiKeyKey, []byte(next.APIKey)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if next.Token != "" {
		s.current.Token = next.Token
	}
	if next.APIKey != "" {
		s.current.APIKey = next.APIKey
	}
	return nil
}

// Clear forgets token and API key. It is idempotent. Memory is cleared
// before the delete so a storage failure can never leave a usable token.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx)
}

// Invalidate clears the session only if stale is still the stored token.
// A rejection that arrives after a fresh login must not log the new session
// out. It reports whether the session was cleared.
func (s *Store) Invalidate(ctx context.Context, stale string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Token == "" || s.current.Token != stale {
		return false, nil
	}
	return true, s.clearLocked(ctx)
}

func (s *Store) clearLocked(ctx context.Context) error {
	s.current = Session{}
	if err := metadata.NewSQLiteRepository(s.db).Delete(ctx, tokenKey, apiKeyKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
