package storage

import (
	"testing"

	"github.com/opencontainers/go-digest"
)

func TestBase64Checksum(t *testing.T) {
	// sha256 of the empty string.
	sum, err := base64Checksum(digest.FromBytes(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="
	if sum != want {
		t.Errorf("checksum = %q, want %q", sum, want)
	}
}

func TestBase64ChecksumRejectsForeignAlgorithm(t *testing.T) {
	if _, err := base64Checksum(digest.Digest("sha512:00")); err == nil {
		t.Fatal("expected error, got nil")
	}
}
