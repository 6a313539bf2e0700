package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

// Cheap derivation keeps the tests fast.
var testOptions = Options{N: 1 << 4}

func TestNewSecretBoxRejectsEmptySecret(t *testing.T) {
	if _, err := NewSecretBox("", testOptions); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestNewSecretBoxRejectsInvalidCost(t *testing.T) {
	if _, err := NewSecretBox("secret", Options{N: 3}); err == nil {
		t.Fatal("expected error for non power of two cost")
	}
}

func TestSecretBoxRoundTrip(t *testing.T) {
	box, err := NewSecretBox("secret", testOptions)
	if err != nil {
		t.Fatalf("new secret box: %v", err)
	}

	sealed, err := box.Seal("refresh-token-1")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if strings.Contains(sealed, "refresh-token-1") {
		t.Fatal("sealed value leaks plaintext")
	}

	again, err := box.Seal("refresh-token-1")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if again == sealed {
		t.Fatal("expected fresh nonce per seal")
	}

	plain, err := box.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if plain != "refresh-token-1" {
		t.Fatalf("unexpected plaintext: %q", plain)
	}
}

func TestSecretBoxEmptyValues(t *testing.T) {
	box, err := NewSecretBox("secret", testOptions)
	if err != nil {
		t.Fatalf("new secret box: %v", err)
	}
	sealed, err := box.Seal("")
	if err != nil || sealed != "" {
		t.Fatalf("expected empty seal, got %q, %v", sealed, err)
	}
	plain, err := box.Open("")
	if err != nil || plain != "" {
		t.Fatalf("expected empty open, got %q, %v", plain, err)
	}
}

func TestSecretBoxOpenRejectsTampering(t *testing.T) {
	box, err := NewSecretBox("secret", testOptions)
	if err != nil {
		t.Fatalf("new secret box: %v", err)
	}
	other, err := NewSecretBox("other-secret", testOptions)
	if err != nil {
		t.Fatalf("new secret box: %v", err)
	}

	sealed, err := box.Seal("access")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(sealed)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	cases := map[string]struct {
		box   *SecretBox
		input string
	}{
		"not base64": {box: box, input: "%%%"},
		"too short":  {box: box, input: base64.StdEncoding.EncodeToString([]byte("short"))},
		"tampered":   {box: box, input: tampered},
		"wrong key":  {box: other, input: sealed},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := tc.box.Open(tc.input); !errors.Is(err, ErrInvalidSealing) {
				t.Fatalf("expected ErrInvalidSealing, got %v", err)
			}
		})
	}
}
