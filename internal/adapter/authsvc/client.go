package authsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/gateway"
)

const service = "auth"

// Client exposes the credential operations of the auth service.
type Client interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Refresh(ctx context.Context, refreshToken string) (model.Credentials, error)
}

// HTTPClient talks to the auth service directly. It never carries a bearer
// token, so it bypasses the gateway.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	CustomerID   string `json:"customer_id,omitempty"`
}

// NewHTTPClient creates an auth client rooted at baseURL.
func NewHTTPClient(baseURL string, httpClient *http.Client, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := gateway.ParseBaseURL(service, baseURL)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{baseURL: parsed, httpClient: httpClient, logger: logger}, nil
}

// Login exchanges user credentials for a session.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if email == "" {
		return nil, domainErrors.NewValidation("email", "must not be empty")
	}
	if password == "" {
		return nil, domainErrors.NewValidation("password", "must not be empty")
	}

	var data tokenResponse
	if err := c.post(ctx, "/api/auth/login", loginRequest{Email: email, Password: password}, &data); err != nil {
		return nil, err
	}
	if data.AccessToken == "" {
		return nil, fmt.Errorf("auth login: empty access token")
	}
	return &model.Session{
		Credentials: model.Credentials{AccessToken: data.AccessToken, RefreshToken: data.RefreshToken},
		CustomerID:  data.CustomerID,
	}, nil
}

// Refresh obtains a new access token. When the service does not rotate the
// refresh token the returned pair carries an empty RefreshToken.
func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (model.Credentials, error) {
	var data tokenResponse
	if err := c.post(ctx, "/api/auth/refresh", refreshRequest{RefreshToken: refreshToken}, &data); err != nil {
		return model.Credentials{}, err
	}
	if data.AccessToken == "" {
		return model.Credentials{}, fmt.Errorf("auth refresh: empty access token")
	}
	return model.Credentials{AccessToken: data.AccessToken, RefreshToken: data.RefreshToken}, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	endpoint := gateway.Endpoint(c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(gateway.CorrelationHeader, gateway.CorrelationID(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domainErrors.TransportError{Op: "POST " + path, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domainErrors.TransportError{Op: "read auth response", Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode auth response: %w", err)
		}
		return nil
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return &domainErrors.StatusError{Service: service, StatusCode: resp.StatusCode, Body: string(payload)}
	default:
		c.logger.Error("auth request failed", slog.String("path", path), slog.Int("status", resp.StatusCode))
		return &domainErrors.StatusError{Service: service, StatusCode: resp.StatusCode, Body: string(payload)}
	}
}
