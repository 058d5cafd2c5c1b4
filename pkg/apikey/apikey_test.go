package apikey

import "testing"

func TestGenerateIsRandom(t *testing.T) {
	h := NewHMAC([]byte("secret"))
	a, err := h.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := h.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("key length = %d, want 64 hex chars", len(a))
	}
	if a == b {
		t.Fatalf("two generated keys should differ")
	}
}

func TestDigestDeterministicPerSecret(t *testing.T) {
	h := NewHMAC([]byte("secret"))
	if h.Digest("abc") != h.Digest("abc") {
		t.Fatalf("digest should be deterministic")
	}
	other := NewHMAC([]byte("other-secret"))
	if h.Digest("abc") == other.Digest("abc") {
		t.Fatalf("different secrets must produce different digests")
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("abcdefgh1234567890wxyz"); got != "abcdefgh...wxyz" {
		t.Fatalf("Preview = %q", got)
	}
	if got := Preview("short"); got != "short" {
		t.Fatalf("short keys pass through, got %q", got)
	}
}
