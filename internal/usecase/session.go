package usecase

import (
	"context"
	"log/slog"

	"github.com/polkiloo/eventmart/internal/adapter/authsvc"
	"github.com/polkiloo/eventmart/internal/session"
)

// SessionUseCase signs the customer in and out.
type SessionUseCase struct {
	auth    authsvc.Client
	manager *session.Manager
	logger  *slog.Logger
}

// NewSessionUseCase constructs SessionUseCase.
func NewSessionUseCase(auth authsvc.Client, manager *session.Manager, logger *slog.Logger) *SessionUseCase {
	return &SessionUseCase{auth: auth, manager: manager, logger: logger}
}

// Login authenticates and replaces the active session.
func (u *SessionUseCase) Login(ctx context.Context, email, password string) (string, error) {
	s, err := u.auth.Login(ctx, email, password)
	if err != nil {
		return "", err
	}
	if err := u.manager.Begin(ctx, *s); err != nil {
		return "", err
	}
	u.logger.Info("customer signed in", slog.String("customer_id", s.CustomerID))
	return s.CustomerID, nil
}

// Logout ends the session. It reports false when none was active.
func (u *SessionUseCase) Logout(ctx context.Context) bool {
	return u.manager.Logout(ctx)
}

// CustomerID returns the identity of the active session.
func (u *SessionUseCase) CustomerID() (string, bool) {
	return u.manager.Identity()
}
