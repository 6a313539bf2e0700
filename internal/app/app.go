package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/eventmart/internal/config"
	"github.com/polkiloo/eventmart/internal/session"
	"github.com/polkiloo/eventmart/internal/usecase"
	"github.com/polkiloo/eventmart/internal/worker"
)

// Module wires the facade, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newMarketplaceFacade,
		newHTTPServer,
		func(p *usecase.PaymentUseCase) worker.SettlementChecker { return p },
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Sessions *usecase.SessionUseCase
	Checkout *usecase.CheckoutUseCase
	Orders   *usecase.OrderUseCase
	Payments *usecase.PaymentUseCase
	Tracker  *worker.SettlementTracker
	Logger   *slog.Logger
}

func newMarketplaceFacade(p facadeParams) *MarketplaceFacade {
	return NewMarketplaceFacade(p.Sessions, p.Checkout, p.Orders, p.Payments, p.Tracker, p.Logger)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

// SessionResetter drops per-session state when a session ends.
type SessionResetter interface {
	ResetSessionState()
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Tracker    *worker.SettlementTracker
	Sessions   *session.Manager
	Facade     *MarketplaceFacade
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	registerHooks(p.Lifecycle, p.Shutdowner, p.Logger, p.Server, p.Tracker, p.Sessions, p.Facade, p.Config)
}

func registerHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	logger *slog.Logger,
	server *http.Server,
	tracker *worker.SettlementTracker,
	sessions *session.Manager,
	resetter SessionResetter,
	cfg *config.Config,
) {
	var (
		unsubscribe func()
		watcherDone chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := sessions.Restore(ctx); err != nil {
				return err
			}

			events, cancel := sessions.Subscribe()
			unsubscribe = cancel
			watcherDone = make(chan struct{})
			go watchSessions(events, resetter, logger, watcherDone)

			logger.Info("starting eventmart", slog.String("addr", server.Addr))
			tracker.Start(context.WithoutCancel(ctx))
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			tracker.Stop()
			if unsubscribe != nil {
				unsubscribe()
				<-watcherDone
			}

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, cfg.ShutdownTimeout)
			}
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("eventmart stopped")
			return nil
		},
	})
}

func watchSessions(events <-chan session.Event, resetter SessionResetter, logger *slog.Logger, done chan<- struct{}) {
	defer close(done)
	for ev := range events {
		resetter.ResetSessionState()
		attrs := []any{slog.String("kind", string(ev.Kind)), slog.String("customer_id", ev.CustomerID)}
		if ev.Cause != nil {
			attrs = append(attrs, slog.String("cause", ev.Cause.Error()))
		}
		logger.Info("session state cleared", attrs...)
	}
}
