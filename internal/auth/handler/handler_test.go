package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Awarix/Farc-mini-app-auth/internal/auth/quickauth"
	"github.com/Awarix/Farc-mini-app-auth/internal/auth/service"
	"github.com/Awarix/Farc-mini-app-auth/internal/farcaster"
	"github.com/Awarix/Farc-mini-app-auth/internal/users/repository"
	"github.com/Awarix/Farc-mini-app-auth/platform/logger"
	"github.com/Awarix/Farc-mini-app-auth/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubVerifier struct {
	err error
}

func (s *stubVerifier) Verify(ctx context.Context, token string) (quickauth.Subject, error) {
	if s.err != nil {
		return quickauth.Subject{}, s.err
	}
	return quickauth.Subject{Fid: 42}, nil
}

type stubResolver struct{}

func (stubResolver) ResolveProfile(ctx context.Context, fid int64) (farcaster.Profile, error) {
	return farcaster.Profile{Username: "alice"}, nil
}

type stubRepo struct {
	upserts int
}

func (s *stubRepo) UpsertProfile(ctx context.Context, fid int64, attrs repository.ProfileAttrs) (repository.User, error) {
	s.upserts++
	return repository.User{ID: uuid.New(), Fid: fid, Username: attrs.Username}, nil
}

func (s *stubRepo) FetchOrCreateBare(ctx context.Context, fid int64) (repository.User, error) {
	return repository.User{ID: uuid.New(), Fid: fid}, nil
}

func newTestRouter(verifyErr error) (*gin.Engine, *stubRepo) {
	gin.SetMode(gin.TestMode)
	repo := &stubRepo{}
	svc := service.New(&stubVerifier{err: verifyErr}, stubResolver{}, repo, logger.New("development"))
	h := New(svc, validator.New())

	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/auth"))
	return engine, repo
}

func postAuth(t *testing.T, engine *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateSuccess(t *testing.T) {
	engine, repo := newTestRouter(nil)

	rec := postAuth(t, engine, `{"token":"valid"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["success"] != true || body["message"] != "Authentication successful" {
		t.Errorf("unexpected body: %v", body)
	}
	if repo.upserts != 1 {
		t.Errorf("expected one upsert, got %d", repo.upserts)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	for name, body := range map[string]string{
		"empty object": `{}`,
		"empty token":  `{"token":""}`,
		"no body":      ``,
	} {
		engine, repo := newTestRouter(nil)
		rec := postAuth(t, engine, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Token not provided") {
			t.Errorf("%s: unexpected body %s", name, rec.Body.String())
		}
		if repo.upserts != 0 {
			t.Errorf("%s: store must not be touched, got %d upserts", name, repo.upserts)
		}
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	engine, repo := newTestRouter(quickauth.ErrInvalidToken)

	rec := postAuth(t, engine, `{"token":"garbage"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["success"] != false || body["message"] != "Authentication failed" {
		t.Errorf("unexpected body: %v", body)
	}
	if repo.upserts != 0 {
		t.Errorf("store must not be touched, got %d upserts", repo.upserts)
	}
}

// The response for a verification failure must be indistinguishable from any
// other pipeline failure.
func TestAuthenticateFailureIsOpaque(t *testing.T) {
	engine, _ := newTestRouter(quickauth.ErrVerificationFailed)

	rec := postAuth(t, engine, `{"token":"valid-but-unverifiable"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if strings.Contains(strings.ToLower(rec.Body.String()), "verification") {
		t.Errorf("response leaks failure stage: %s", rec.Body.String())
	}
}
