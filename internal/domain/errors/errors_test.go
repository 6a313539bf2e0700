package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"transport", &TransportError{Op: "POST booking", Err: stdErrors.New("connection reset")}, KindTransport},
		{"wrapped transport", fmt.Errorf("create booking: %w", &TransportError{Op: "op", Err: stdErrors.New("eof")}), KindTransport},
		{"auth", &AuthError{Reason: "renewal failed"}, KindAuthTerminal},
		{"validation", NewValidation("cart", "empty"), KindValidation},
		{"status 404", &StatusError{Service: "orders", StatusCode: http.StatusNotFound}, KindNotFound},
		{"sentinel not found", ErrNotFound, KindNotFound},
		{"status 500", &StatusError{Service: "orders", StatusCode: http.StatusInternalServerError}, KindRejected},
		{"not payable", ErrNotPayable, KindConflict},
		{"not deletable", ErrSubOrderNotDeletable, KindConflict},
		{"plain", stdErrors.New("boom"), KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestAuthErrorUnwrapsCause(t *testing.T) {
	cause := stdErrors.New("refresh token revoked")
	err := &AuthError{Reason: "credential renewal failed", Err: cause}

	if !stdErrors.Is(err, ErrAuthTerminal) {
		t.Fatalf("expected auth error to match ErrAuthTerminal")
	}
	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected auth error to unwrap its cause")
	}
	if got := (&AuthError{Reason: "no active session"}).Error(); got != "session expired: no active session" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestTransportErrorIsRetryable(t *testing.T) {
	var target *TransportError
	err := fmt.Errorf("list orders: %w", &TransportError{Op: "GET orders", Err: stdErrors.New("timeout")})

	if !stdErrors.As(err, &target) {
		t.Fatalf("expected to find a transport error")
	}
	if !target.Retryable() {
		t.Fatalf("transport errors must be retryable")
	}
}

func TestSettlementRaceError(t *testing.T) {
	err := &SettlementRaceError{OrderID: "mo-1", Observed: "FULLY_APPROVED"}
	if !stdErrors.Is(err, ErrSettlementRace) {
		t.Fatalf("expected settlement race sentinel")
	}
	if Classify(err) != KindUnknown {
		t.Fatalf("settlement race is not a failure kind, got %q", Classify(err))
	}
}
