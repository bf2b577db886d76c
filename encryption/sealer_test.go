package encryption

import (
	stderrors "errors"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmChaCha20, AlgorithmAESGCM} {
		s, err := New("secret", WithAlgorithm(alg))
		if err != nil {
			t.Fatalf("%s: new: %v", alg, err)
		}
		tests := []struct {
			name      string
			plaintext string
		}{
			{"simple", "hello world"},
			{"empty", ""},
			{"multiline", "line one\nline two\n\nline four"},
			{"unicode", "こんにちは世界"},
		}
		for _, tc := range tests {
			t.Run(string(alg)+"/"+tc.name, func(t *testing.T) {
				sealed, err := s.Seal(tc.plaintext, "session-1")
				if err != nil {
					t.Fatalf("seal: %v", err)
				}
				if tc.plaintext != "" && sealed == tc.plaintext {
					t.Error("expected sealed value to differ from plaintext")
				}
				got, err := s.Open(sealed, "session-1")
				if err != nil {
					t.Fatalf("open: %v", err)
				}
				if got != tc.plaintext {
					t.Errorf("expected %q, got %q", tc.plaintext, got)
				}
			})
		}
	}
}

func TestSealUsesFreshNonce(t *testing.T) {
	s, _ := New("k")
	a, _ := s.Seal("same", "b")
	b, _ := s.Seal("same", "b")
	if a == b {
		t.Error("expected different ciphertexts for repeated seals")
	}
}

func TestOpenRejectsWrongBindingOrKey(t *testing.T) {
	s1, _ := New("key-one")
	s2, _ := New("key-two")

	sealed, err := s1.Seal("secret", "session-a")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := s1.Open(sealed, "session-b"); err == nil {
		t.Error("expected open with another binding to fail")
	}
	if _, err := s2.Open(sealed, "session-a"); err == nil {
		t.Error("expected open with another key to fail")
	}
}

func TestOpenMalformed(t *testing.T) {
	s, _ := New("k")
	if _, err := s.Open("not-base64!!!", ""); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := s.Open("YQ==", ""); !stderrors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty passphrase")
	}
	if _, err := New("k", WithAlgorithm("rot13")); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}
