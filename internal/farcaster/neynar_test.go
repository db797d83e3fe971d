package farcaster

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Awarix/Farc-mini-app-auth/platform/config"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(&config.Config{
		NeynarAPIKey:  "test-key",
		NeynarBaseURL: baseURL,
		NeynarTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.Config{NeynarBaseURL: "http://neynar.invalid"})
	if err == nil {
		t.Fatal("expected constructor to reject a missing API key")
	}
}

func TestResolveProfileParsesUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != bulkUsersPath {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("fids") != "3" {
			t.Errorf("expected fids=3, got %q", r.URL.Query().Get("fids"))
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("expected api key header, got %q", r.Header.Get("x-api-key"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users":[{"fid":3,"username":"dwr.eth","display_name":"Dan","pfp_url":"https://pfp.example/3.png","verified_addresses":{"eth_addresses":["0xd00d","0xbeef"]}}]}`))
	}))
	defer srv.Close()

	profile, err := newTestClient(t, srv.URL).ResolveProfile(context.Background(), 3)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if profile.Username != "dwr.eth" || profile.DisplayName != "Dan" || profile.PfpURL != "https://pfp.example/3.png" {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if profile.Address == nil || *profile.Address != "0xd00d" {
		t.Errorf("expected first verified address, got %v", profile.Address)
	}
}

func TestResolveProfileNoAddresses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"users":[{"fid":7,"username":"nobody","verified_addresses":{"eth_addresses":[]}}]}`))
	}))
	defer srv.Close()

	profile, err := newTestClient(t, srv.URL).ResolveProfile(context.Background(), 7)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if profile.Address != nil {
		t.Errorf("expected nil address, got %v", *profile.Address)
	}
}

func TestResolveProfileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"users":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).ResolveProfile(context.Background(), 99)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestResolveProfileUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).ResolveProfile(context.Background(), 3)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestResolveProfileTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(t, srv.URL).ResolveProfile(context.Background(), 3)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}
