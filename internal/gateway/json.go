package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
)

// Sender is implemented by Gateway. Service adapters depend on it so they
// can be exercised against fakes.
type Sender interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, req Request) (*Response, error)

func (f SenderFunc) Send(ctx context.Context, req Request) (*Response, error) { return f(ctx, req) }

// Call describes a JSON request/response exchange.
type Call struct {
	Service string
	Method  string
	URL     string
	Header  http.Header
	In      any
	Out     any
}

// JSON marshals call.In, sends it through s and decodes a 2xx body into
// call.Out. Any other status becomes a *StatusError.
func JSON(ctx context.Context, s Sender, call Call) (*Response, error) {
	req := Request{
		Service: call.Service,
		Method:  call.Method,
		URL:     call.URL,
		Header:  call.Header,
	}
	if call.In != nil {
		body, err := json.Marshal(call.In)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", call.Service, err)
		}
		req.Body = body
	}

	resp, err := s.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, &domainErrors.StatusError{
			Service:    call.Service,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(resp.Body), 512),
		}
	}

	if call.Out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, call.Out); err != nil {
			return resp, fmt.Errorf("decode %s response: %w", call.Service, err)
		}
	}
	return resp, nil
}

// ParseBaseURL validates that raw is an absolute service URL.
func ParseBaseURL(service, raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s url: %w", service, err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("%s url must be absolute", service)
	}
	return parsed, nil
}

// Endpoint joins segments onto the path of base.
func Endpoint(base *url.URL, segments ...string) *url.URL {
	endpoint := *base
	endpoint.Path = path.Join(append([]string{endpoint.Path}, segments...)...)
	endpoint.RawPath = ""
	endpoint.RawQuery = ""
	return &endpoint
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
