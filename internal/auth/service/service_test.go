package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Awarix/Farc-mini-app-auth/internal/auth/quickauth"
	"github.com/Awarix/Farc-mini-app-auth/internal/farcaster"
	"github.com/Awarix/Farc-mini-app-auth/internal/users/repository"
	"github.com/Awarix/Farc-mini-app-auth/platform/logger"

	"github.com/google/uuid"
)

type fakeVerifier struct {
	subject quickauth.Subject
	err     error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (quickauth.Subject, error) {
	if f.err != nil {
		return quickauth.Subject{}, f.err
	}
	return f.subject, nil
}

type fakeResolver struct {
	profile farcaster.Profile
	err     error
	calls   int
}

func (f *fakeResolver) ResolveProfile(ctx context.Context, fid int64) (farcaster.Profile, error) {
	f.calls++
	if f.err != nil {
		return farcaster.Profile{}, f.err
	}
	return f.profile, nil
}

// fakeUserRepo mimics the storage layer's upsert semantics in memory.
type fakeUserRepo struct {
	rows    map[int64]repository.User
	upserts int
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: map[int64]repository.User{}}
}

func (f *fakeUserRepo) UpsertProfile(ctx context.Context, fid int64, attrs repository.ProfileAttrs) (repository.User, error) {
	if f.err != nil {
		return repository.User{}, f.err
	}
	f.upserts++
	username := attrs.Username
	if username == "" {
		username = fmt.Sprintf("fid-%d", fid)
	}
	user, ok := f.rows[fid]
	if !ok {
		user = repository.User{ID: uuid.New(), Fid: fid}
	}
	user.Username = username
	user.DisplayName = attrs.DisplayName
	user.PfpURL = attrs.PfpURL
	f.rows[fid] = user
	return user, nil
}

func (f *fakeUserRepo) FetchOrCreateBare(ctx context.Context, fid int64) (repository.User, error) {
	user, ok := f.rows[fid]
	if !ok {
		user = repository.User{ID: uuid.New(), Fid: fid, Username: fmt.Sprintf("fid-%d", fid)}
		f.rows[fid] = user
	}
	return user, nil
}

func newService(v TokenVerifier, p farcaster.ProfileResolver, u repository.UserRepository) *Service {
	return New(v, p, u, logger.New("development"))
}

func TestAuthenticatePipeline(t *testing.T) {
	addr := "0xcafe"
	verifier := &fakeVerifier{subject: quickauth.Subject{Fid: 42}}
	resolver := &fakeResolver{profile: farcaster.Profile{Username: "alice", DisplayName: "Alice", PfpURL: "pfp", Address: &addr}}
	repo := newFakeUserRepo()

	identity, err := newService(verifier, resolver, repo).Authenticate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.Fid != 42 {
		t.Errorf("expected fid 42, got %d", identity.Fid)
	}
	if identity.UserID == uuid.Nil {
		t.Error("expected a user id")
	}
	if identity.Address == nil || *identity.Address != addr {
		t.Errorf("expected resolved address, got %v", identity.Address)
	}

	stored := repo.rows[42]
	if stored.Username != "alice" || stored.DisplayName != "Alice" || stored.PfpURL != "pfp" {
		t.Errorf("profile attributes not persisted: %+v", stored)
	}
}

func TestAuthenticateReplayIsIdempotent(t *testing.T) {
	verifier := &fakeVerifier{subject: quickauth.Subject{Fid: 42}}
	resolver := &fakeResolver{profile: farcaster.Profile{Username: "alice"}}
	repo := newFakeUserRepo()
	svc := newService(verifier, resolver, repo)

	first, err := svc.Authenticate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("first authenticate: %v", err)
	}
	second, err := svc.Authenticate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("second authenticate: %v", err)
	}

	if len(repo.rows) != 1 {
		t.Fatalf("expected one row after replay, got %d", len(repo.rows))
	}
	if first.UserID != second.UserID {
		t.Errorf("replay produced a different user: %s vs %s", first.UserID, second.UserID)
	}
}

func TestAuthenticateVerifierFailureSkipsDownstream(t *testing.T) {
	verifier := &fakeVerifier{err: quickauth.ErrInvalidToken}
	resolver := &fakeResolver{}
	repo := newFakeUserRepo()

	_, err := newService(verifier, resolver, repo).Authenticate(context.Background(), "bad")
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if resolver.calls != 0 {
		t.Error("profile resolver must not run for an unverified token")
	}
	if repo.upserts != 0 {
		t.Error("store must not be mutated for an unverified token")
	}
}

func TestAuthenticateProfileFailureLeavesExistingRowUntouched(t *testing.T) {
	verifier := &fakeVerifier{subject: quickauth.Subject{Fid: 42}}
	resolver := &fakeResolver{err: farcaster.ErrProfileNotFound}
	repo := newFakeUserRepo()
	repo.rows[42] = repository.User{ID: uuid.New(), Fid: 42, Username: "existing"}

	_, err := newService(verifier, resolver, repo).Authenticate(context.Background(), "tok")
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if repo.rows[42].Username != "existing" {
		t.Error("pre-existing row must remain unmodified on profile failure")
	}
}

func TestAuthenticateStoreFailure(t *testing.T) {
	verifier := &fakeVerifier{subject: quickauth.Subject{Fid: 42}}
	resolver := &fakeResolver{profile: farcaster.Profile{Username: "alice"}}
	repo := newFakeUserRepo()
	repo.err = errors.New("connection reset")

	_, err := newService(verifier, resolver, repo).Authenticate(context.Background(), "tok")
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}
