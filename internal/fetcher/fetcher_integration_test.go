//go:build integration

package fetcher

import (
	"testing"
	"time"

	"github.com/ivoronin/peervet/internal/session"
)

// Integration tests - require network access
// Run with: go test -tags=integration ./internal/fetcher

func TestFetchPublicEndpoint(t *testing.T) {
	t.Parallel()

	peer, err := Fetch("google.com", 10*time.Second)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if peer.Host != "google.com" {
		t.Errorf("Host = %q, want %q", peer.Host, "google.com")
	}
	if peer.Protocol == "" {
		t.Error("Protocol is empty")
	}

	leaf, _, err := session.RemoteCertificate(peer.Session, false)
	if err != nil {
		t.Fatalf("RemoteCertificate failed: %v", err)
	}
	if leaf == nil {
		t.Fatal("no peer certificate")
	}
}

func TestFetchPublicEndpointWithPort(t *testing.T) {
	t.Parallel()

	peer, err := Fetch("google.com:443", 10*time.Second)
	if err != nil {
		t.Fatalf("Fetch with port failed: %v", err)
	}
	if peer.Host != "google.com" {
		t.Errorf("Host = %q, want %q", peer.Host, "google.com")
	}
}

func TestFetchInvalidHost(t *testing.T) {
	t.Parallel()

	_, err := Fetch("invalid.host.that.does.not.exist.example", 5*time.Second)
	if err == nil {
		t.Error("expected error for invalid host")
	}
}

func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	_, err := Fetch("google.com", 1*time.Nanosecond)
	if err == nil {
		t.Error("expected timeout error")
	}
}
