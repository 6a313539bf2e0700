package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/eventmart/internal/config"
	"github.com/polkiloo/eventmart/internal/pkg/auth"
	"github.com/polkiloo/eventmart/internal/session"
)

// Module provides the session persistence backend. Without a DSN the
// credentials live in memory only.
var Module = fx.Provide(newStore)

type storeParams struct {
	fx.In

	Ctx       context.Context
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newStore(p storeParams) (session.Store, error) {
	if p.Config.SessionDatabaseURI == "" {
		p.Logger.Info("session credentials kept in memory")
		return session.NewMemoryStore(), nil
	}

	sealer, err := auth.NewSecretBox(p.Config.SessionSecret, auth.Options{})
	if err != nil {
		return nil, err
	}

	store, err := New(p.Ctx, p.Config.SessionDatabaseURI, sealer, p.Logger)
	if err != nil {
		return nil, err
	}
	registerLifecycle(p.Lifecycle, store)
	return store, nil
}

func registerLifecycle(lc fx.Lifecycle, store *CredentialStore) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.HealthCheck(ctx)
		},
		OnStop: func(ctx context.Context) error {
			store.Close()
			return nil
		},
	})
}
