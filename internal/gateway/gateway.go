package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/metrics"
	"github.com/polkiloo/eventmart/internal/session"
)

const (
	maxResponseBody = 1 << 20
	renewalKey      = "renewal"
)

// Renewer exchanges a refresh token for a new credential pair.
type Renewer interface {
	Refresh(ctx context.Context, refreshToken string) (model.Credentials, error)
}

// CredentialStore is the subset of the session manager the gateway relies on.
type CredentialStore interface {
	Snapshot() model.Credentials
	Rotate(ctx context.Context, previous, next model.Credentials) error
	Expire(ctx context.Context, cause error) bool
}

// Request is a replayable outbound call.
type Request struct {
	Service string
	Method  string
	URL     string
	Body    []byte
	Header  http.Header
}

// Response is a fully read service response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Options tunes gateway behaviour.
type Options struct {
	RefreshTimeout time.Duration
}

// Gateway is the single chokepoint for authenticated outbound calls. It
// attaches the bearer token and renews it at most once concurrently.
type Gateway struct {
	client  *http.Client
	store   CredentialStore
	renewer Renewer
	tracer  trace.Tracer
	metrics *metrics.Metrics
	logger  *slog.Logger
	opts    Options

	renewals singleflight.Group
}

// New constructs a Gateway.
func New(client *http.Client, store CredentialStore, renewer Renewer, tracer trace.Tracer, m *metrics.Metrics, logger *slog.Logger, opts Options) *Gateway {
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 5 * time.Second
	}
	return &Gateway{
		client:  client,
		store:   store,
		renewer: renewer,
		tracer:  tracer,
		metrics: m,
		logger:  logger,
		opts:    opts,
	}
}

// Send issues req with the current access token. An authorization failure is
// answered by a single shared renewal followed by exactly one retry.
// Responses other than 401 are returned as-is for the caller to interpret.
func (g *Gateway) Send(ctx context.Context, req Request) (*Response, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("peer.service", req.Service),
		attribute.String("http.method", req.Method),
		attribute.String("http.url", req.URL),
	)

	resp, err := g.send(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.metrics.Requests.WithLabelValues(req.Service, string(domainErrors.Classify(err))).Inc()
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	g.metrics.Requests.WithLabelValues(req.Service, outcomeLabel(resp.StatusCode)).Inc()
	return resp, nil
}

func (g *Gateway) send(ctx context.Context, req Request) (*Response, error) {
	creds := g.store.Snapshot()
	if creds.Empty() {
		return nil, &domainErrors.AuthError{Reason: "no active session"}
	}

	resp, err := g.do(ctx, req, creds.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	if !creds.CanRefresh() {
		authErr := &domainErrors.AuthError{Reason: "authorization rejected and no refresh token held"}
		g.store.Expire(ctx, authErr)
		return nil, authErr
	}

	fresh, err := g.renew(ctx, creds)
	if err != nil {
		return nil, err
	}

	trace.SpanFromContext(ctx).AddEvent("retry after renewal")
	resp, err = g.do(ctx, req, fresh.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		authErr := &domainErrors.AuthError{Reason: "authorization rejected after renewal"}
		g.store.Expire(ctx, authErr)
		return nil, authErr
	}
	return resp, nil
}

// renew returns credentials newer than stale. Callers that observe a 401
// while a renewal is running attach to it instead of starting another one,
// even when the store already moved past stale: the current pair may be the
// one under renewal. With nothing in flight, performRenewal hands back a pair
// newer than stale without calling the auth service.
func (g *Gateway) renew(ctx context.Context, stale model.Credentials) (model.Credentials, error) {
	ch := g.renewals.DoChan(renewalKey, func() (any, error) {
		return g.performRenewal(context.WithoutCancel(ctx), stale)
	})

	select {
	case <-ctx.Done():
		return model.Credentials{}, &domainErrors.TransportError{Op: "await credential renewal", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return model.Credentials{}, res.Err
		}
		return res.Val.(model.Credentials), nil
	}
}

func (g *Gateway) performRenewal(ctx context.Context, stale model.Credentials) (model.Credentials, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.RefreshTimeout)
	defer cancel()

	cur := g.store.Snapshot()
	if cur.Empty() {
		return model.Credentials{}, &domainErrors.AuthError{Reason: "session ended before renewal"}
	}
	if cur.AccessToken != stale.AccessToken {
		return cur, nil
	}

	issued, err := g.renewer.Refresh(ctx, cur.RefreshToken)
	if err != nil {
		g.metrics.Renewals.WithLabelValues("failure").Inc()
		authErr := &domainErrors.AuthError{Reason: "credential renewal failed", Err: err}
		if g.store.Expire(ctx, authErr) {
			g.logger.Warn("session expired", slog.String("error", err.Error()))
		}
		return model.Credentials{}, authErr
	}

	next := model.Credentials{AccessToken: issued.AccessToken, RefreshToken: issued.RefreshToken}
	if next.RefreshToken == "" {
		next.RefreshToken = cur.RefreshToken
	}
	if err := g.store.Rotate(ctx, cur, next); err != nil {
		g.metrics.Renewals.WithLabelValues("discarded").Inc()
		if errors.Is(err, session.ErrSessionChanged) {
			return model.Credentials{}, &domainErrors.AuthError{Reason: "session changed during renewal", Err: err}
		}
		return model.Credentials{}, fmt.Errorf("store renewed credentials: %w", err)
	}

	g.metrics.Renewals.WithLabelValues("success").Inc()
	g.logger.Debug("credentials renewed")
	return next, nil
}

func (g *Gateway) do(ctx context.Context, req Request, accessToken string) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", req.Service, err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(CorrelationHeader, CorrelationID(ctx))

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	g.metrics.RequestLatency.WithLabelValues(req.Service).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, &domainErrors.TransportError{Op: req.Method + " " + req.Service, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &domainErrors.TransportError{Op: "read " + req.Service + " response", Err: err}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: payload}, nil
}

func outcomeLabel(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "ok"
	case status >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}
