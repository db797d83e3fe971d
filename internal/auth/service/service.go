// Package service orchestrates the token verification pipeline: verify the
// Quick Auth token, resolve the fid's profile, and upsert the local user.
package service

import (
	"context"
	"errors"

	"github.com/Awarix/Farc-mini-app-auth/internal/auth/quickauth"
	"github.com/Awarix/Farc-mini-app-auth/internal/farcaster"
	"github.com/Awarix/Farc-mini-app-auth/internal/users/repository"
	"github.com/Awarix/Farc-mini-app-auth/platform/logger"

	"github.com/google/uuid"
)

// ErrAuthenticationFailed is the single coarse failure the endpoint exposes.
// The concrete stage that failed is logged server-side only, so callers
// cannot probe which check rejected them.
var ErrAuthenticationFailed = errors.New("authentication failed")

// TokenVerifier validates a bearer token and extracts its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (quickauth.Subject, error)
}

// VerifiedIdentity is the minimal record an authenticated request needs.
type VerifiedIdentity struct {
	UserID uuid.UUID
	Fid    int64
	// Address is the fid's first verified Ethereum address, nil when none.
	// Currently computed but not surfaced over HTTP.
	Address *string
}

type Service struct {
	verifier TokenVerifier
	profiles farcaster.ProfileResolver
	users    repository.UserRepository
	log      *logger.Logger
}

func New(verifier TokenVerifier, profiles farcaster.ProfileResolver, users repository.UserRepository, log *logger.Logger) *Service {
	return &Service{verifier: verifier, profiles: profiles, users: users, log: log}
}

// Authenticate runs the pipeline for an inbound token. Every failure after
// the token reaches the verifier collapses to ErrAuthenticationFailed: a
// profile lookup failure is an auth failure, never a partial success.
func (s *Service) Authenticate(ctx context.Context, token string) (VerifiedIdentity, error) {
	subject, err := s.verifier.Verify(ctx, token)
	if err != nil {
		s.log.AuthEvent("token_verification", 0, false, err.Error())
		return VerifiedIdentity{}, ErrAuthenticationFailed
	}

	profile, err := s.profiles.ResolveProfile(ctx, subject.Fid)
	if err != nil {
		s.log.AuthEvent("profile_resolution", subject.Fid, false, err.Error())
		return VerifiedIdentity{}, ErrAuthenticationFailed
	}

	user, err := s.users.UpsertProfile(ctx, subject.Fid, repository.ProfileAttrs{
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		PfpURL:      profile.PfpURL,
	})
	if err != nil {
		s.log.DatabaseError("users.upsert_profile", err)
		s.log.AuthEvent("profile_upsert", subject.Fid, false, err.Error())
		return VerifiedIdentity{}, ErrAuthenticationFailed
	}

	s.log.AuthEvent("authenticated", subject.Fid, true, "")

	return VerifiedIdentity{
		UserID:  user.ID,
		Fid:     subject.Fid,
		Address: profile.Address,
	}, nil
}
