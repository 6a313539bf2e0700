package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/lithammer/shortuuid/v3"
	"github.com/samber/lo"

	"github.com/polkiloo/eventmart/internal/gateway"
	"github.com/polkiloo/eventmart/internal/server/http/dto"
)

// apiError is a non-success answer from the local API.
type apiError struct {
	Status int
	Body   dto.ErrorResponse
}

func (e *apiError) Error() string {
	if e.Body.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Body.Error, e.Body.Message)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Body.Error)
}

type apiClient struct {
	base *url.URL
	http *http.Client
}

func newAPIClient(rawBase string, client *http.Client) (*apiClient, error) {
	base, err := url.Parse(rawBase)
	if err != nil || !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("api address must be an absolute URL: %q", rawBase)
	}
	return &apiClient{base: base, http: client}, nil
}

// do sends in as JSON and decodes the response into out. Statuses listed in
// accept are decoded as success; any other status yields *apiError.
func (c *apiClient) do(ctx context.Context, method, p string, in, out any, accept ...int) (int, error) {
	u := *c.base
	u.Path = path.Join(u.Path, p)

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(gateway.CorrelationHeader, "ctl-"+shortuuid.New())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, p, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if !accepted(resp.StatusCode, accept) {
		apiErr := &apiError{Status: resp.StatusCode}
		if json.Unmarshal(payload, &apiErr.Body) != nil || apiErr.Body.Error == "" {
			apiErr.Body.Error = strings.ToLower(strings.ReplaceAll(http.StatusText(resp.StatusCode), " ", "_"))
		}
		return resp.StatusCode, apiErr
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func accepted(status int, accept []int) bool {
	if len(accept) == 0 {
		return status >= 200 && status < 300
	}
	return lo.Contains(accept, status)
}
