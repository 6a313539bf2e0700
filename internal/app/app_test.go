package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/eventmart/internal/config"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/metrics"
	"github.com/polkiloo/eventmart/internal/session"
	testhelpers "github.com/polkiloo/eventmart/internal/test"
	"github.com/polkiloo/eventmart/internal/worker"
)

type resetCounter struct {
	calls chan struct{}
}

func (r *resetCounter) ResetSessionState() {
	r.calls <- struct{}{}
}

type idleChecker struct{}

func (idleChecker) CheckSettlement(context.Context, string, string) (*model.MasterOrder, error) {
	return nil, errors.New("idle")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestTracker() *worker.SettlementTracker {
	return worker.NewSettlementTracker(idleChecker{}, 10*time.Millisecond, time.Second, 1, metrics.NewNop(), testLogger())
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestLifecycleRestoresSessionAndWatchesEvents(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	store := session.NewMemoryStore()
	if err := store.Save(context.Background(), model.Session{
		Credentials: model.Credentials{AccessToken: "a", RefreshToken: "r"},
		CustomerID:  "cust-1",
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	manager := session.NewManager(store, testLogger())
	resetter := &resetCounter{calls: make(chan struct{}, 1)}
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}

	registerHooks(recorder, shutdowner, testLogger(), server, newTestTracker(), manager, resetter,
		&config.Config{ShutdownTimeout: 100 * time.Millisecond})

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}
	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("on start failed: %v", err)
	}
	if id, ok := manager.Identity(); !ok || id != "cust-1" {
		t.Fatalf("expected restored session, got %q %v", id, ok)
	}

	manager.Expire(context.Background(), errors.New("renewal rejected"))
	select {
	case <-resetter.calls:
	case <-time.After(time.Second):
		t.Fatal("expected session state to be reset on expiry")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = recorder.Stop(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}
}

func TestLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	server := &http.Server{Addr: "bad addr"}

	registerHooks(recorder, shutdowner, testLogger(), server, newTestTracker(),
		session.NewManager(session.NewMemoryStore(), testLogger()), &resetCounter{calls: make(chan struct{}, 1)},
		&config.Config{ShutdownTimeout: time.Second})

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}
	if shutdowner.Calls() != 1 {
		t.Fatalf("expected a single shutdown request, got %d", shutdowner.Calls())
	}

	_ = recorder.Stop(context.Background())
}

func TestLifecycleFailsWhenRestoreFails(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	manager := session.NewManager(brokenStore{}, testLogger())

	registerHooks(recorder, &testhelpers.ShutdownerStub{}, testLogger(), &http.Server{Addr: "127.0.0.1:0"},
		newTestTracker(), manager, &resetCounter{calls: make(chan struct{}, 1)}, &config.Config{})

	if err := recorder.Start(context.Background()); err == nil {
		t.Fatal("expected restore failure to abort start")
	}
	if err := recorder.Stop(context.Background()); err != nil {
		t.Fatalf("stop after failed start: %v", err)
	}
}

type brokenStore struct{}

func (brokenStore) Load(context.Context) (model.Session, error) {
	return model.Session{}, errors.New("disk unreadable")
}
func (brokenStore) Save(context.Context, model.Session) error { return nil }
func (brokenStore) Clear(context.Context) error               { return nil }
