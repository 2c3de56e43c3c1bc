package common

import (
	"strings"
	"testing"
)

func TestRandomString_LengthAndAlphabet(t *testing.T) {
	const n = 12
	s, err := RandomString(AlphaNumeric, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n {
		t.Fatalf("expected length %d, got %d", n, len(s))
	}
	for _, r := range s {
		if !strings.ContainsRune(AlphaNumeric, r) {
			t.Fatalf("symbol %q is outside the alphabet", r)
		}
	}
}

func TestRandomString_ZeroSize(t *testing.T) {
	s, err := RandomString(AlphaNumeric, 0)
	if err != nil {
		t.Fatalf("unexpected error for n=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for n=0, got %q", s)
	}
}

func TestRandomString_SingleSymbolAlphabet(t *testing.T) {
	s, err := RandomString("x", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "xxxxx" {
		t.Fatalf("expected xxxxx, got %q", s)
	}
}

func TestRandomString_EntropyHint(t *testing.T) {
	a, err := RandomString(AlphaNumeric, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := RandomString(AlphaNumeric, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Logf("warning: two RandomString(32) results are identical; extremely unlikely")
	}
}
