// Package farcaster resolves verified Farcaster identities to profile data
// via the Neynar social-graph API.
package farcaster

import (
	"context"
	"errors"
)

var (
	// ErrProfileNotFound indicates the social graph has no record for the fid.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrServiceUnavailable indicates the profile service could not be
	// reached or rejected the request. Callers must treat this as an auth
	// failure, never as permission to skip profile enrichment.
	ErrServiceUnavailable = errors.New("profile service unavailable")
)

// Profile holds the display attributes of a Farcaster account.
type Profile struct {
	Username    string
	DisplayName string
	PfpURL      string
	// Address is the first verified Ethereum address, nil when the account
	// has none.
	Address *string
}

// ProfileResolver looks up profile data for a verified fid.
type ProfileResolver interface {
	ResolveProfile(ctx context.Context, fid int64) (Profile, error)
}
