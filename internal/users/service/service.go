// Package service implements the user bootstrap read path.
package service

import (
	"context"

	"github.com/Awarix/Farc-mini-app-auth/internal/users/repository"
	"github.com/Awarix/Farc-mini-app-auth/platform/apperr"
	"github.com/Awarix/Farc-mini-app-auth/platform/logger"
)

type Service struct {
	repo repository.UserRepository
	log  *logger.Logger
}

func New(repo repository.UserRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// FetchOrCreate returns the user for fid with related collections, lazily
// creating a bare row on first sight. This path runs without authentication;
// it never writes profile attributes over an existing row.
func (s *Service) FetchOrCreate(ctx context.Context, fid int64) (repository.User, error) {
	user, err := s.repo.FetchOrCreateBare(ctx, fid)
	if err != nil {
		s.log.DatabaseError("users.fetch_or_create", err)
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "Failed to fetch user data", err)
	}
	return user, nil
}
