package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/pkg/auth"
)

// Only one credential pair is held per client process.
const singletonRow = 1

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// CredentialStore persists the session pair in PostgreSQL. Tokens are sealed
// before they leave the process.
type CredentialStore struct {
	pool   pgxPool
	sealer auth.Sealer
	logger *slog.Logger
}

// New connects to dsn and ensures the schema exists.
func New(ctx context.Context, dsn string, sealer auth.Sealer, logger *slog.Logger) (*CredentialStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	store := &CredentialStore{pool: pool, sealer: sealer, logger: logger}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// Close releases database resources.
func (s *CredentialStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *CredentialStore) initSchema(ctx context.Context) error {
	const stmt = `CREATE TABLE IF NOT EXISTS session_credentials (
            id SMALLINT PRIMARY KEY,
            customer_id TEXT NOT NULL,
            access_token TEXT NOT NULL,
            refresh_token TEXT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	if _, err := s.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Load returns the persisted session. ErrNotFound is returned when nothing
// usable is stored, including values sealed under a different secret.
func (s *CredentialStore) Load(ctx context.Context) (model.Session, error) {
	const query = `SELECT customer_id, access_token, refresh_token FROM session_credentials WHERE id=$1`

	var customerID, sealedAccess, sealedRefresh string
	err := s.pool.QueryRow(ctx, query, singletonRow).Scan(&customerID, &sealedAccess, &sealedRefresh)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Session{}, domainErrors.ErrNotFound
		}
		return model.Session{}, err
	}

	access, err := s.sealer.Open(sealedAccess)
	if err != nil {
		s.logger.Warn("discarding unreadable persisted credentials", slog.String("error", err.Error()))
		return model.Session{}, domainErrors.ErrNotFound
	}
	refresh, err := s.sealer.Open(sealedRefresh)
	if err != nil {
		s.logger.Warn("discarding unreadable persisted credentials", slog.String("error", err.Error()))
		return model.Session{}, domainErrors.ErrNotFound
	}

	return model.Session{
		Credentials: model.Credentials{AccessToken: access, RefreshToken: refresh},
		CustomerID:  customerID,
	}, nil
}

// Save replaces the persisted session as a whole.
func (s *CredentialStore) Save(ctx context.Context, session model.Session) error {
	if session.Credentials.Empty() {
		return s.Clear(ctx)
	}

	access, err := s.sealer.Seal(session.Credentials.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	refresh, err := s.sealer.Seal(session.Credentials.RefreshToken)
	if err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}

	const query = `INSERT INTO session_credentials (id, customer_id, access_token, refresh_token, updated_at)
                   VALUES ($1, $2, $3, $4, NOW())
                   ON CONFLICT (id) DO UPDATE
                   SET customer_id = EXCLUDED.customer_id,
                       access_token = EXCLUDED.access_token,
                       refresh_token = EXCLUDED.refresh_token,
                       updated_at = NOW()`
	if _, err := s.pool.Exec(ctx, query, singletonRow, session.CustomerID, access, refresh); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Clear removes the persisted session.
func (s *CredentialStore) Clear(ctx context.Context) error {
	const query = `DELETE FROM session_credentials WHERE id=$1`
	if _, err := s.pool.Exec(ctx, query, singletonRow); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// HealthCheck verifies database connectivity.
func (s *CredentialStore) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
