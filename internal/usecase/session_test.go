package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/session"
)

type stubAuth struct {
	session *model.Session
	err     error
}

func (s stubAuth) Login(context.Context, string, string) (*model.Session, error) {
	return s.session, s.err
}

func (s stubAuth) Refresh(context.Context, string) (model.Credentials, error) {
	return model.Credentials{}, s.err
}

func TestSessionLoginAndLogout(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStore(), testLogger())
	uc := NewSessionUseCase(stubAuth{session: &model.Session{
		Credentials: model.Credentials{AccessToken: "a", RefreshToken: "r"},
		CustomerID:  "cust-1",
	}}, manager, testLogger())

	id, err := uc.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "cust-1", id)

	current, ok := uc.CustomerID()
	assert.True(t, ok)
	assert.Equal(t, "cust-1", current)

	assert.True(t, uc.Logout(context.Background()))
	assert.False(t, uc.Logout(context.Background()))
	_, ok = uc.CustomerID()
	assert.False(t, ok)
}

func TestSessionLoginFailureKeepsSignedOut(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStore(), testLogger())
	uc := NewSessionUseCase(stubAuth{err: &domainErrors.StatusError{Service: "auth", StatusCode: http.StatusUnauthorized}}, manager, testLogger())

	_, err := uc.Login(context.Background(), "ana@example.com", "bad")
	assert.ErrorIs(t, err, domainErrors.ErrUpstream)
	assert.False(t, manager.Active())
}
