package account

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/offerhub/offerhub/internal/apperr"
	"github.com/offerhub/offerhub/internal/media"
)

var errEmailTaken = apperr.Conflict("email already in use")

// Service manages account signup and credential checks.
type Service struct {
	repo    Repository
	images  media.Store
	folders media.Folders
	logger  *slog.Logger
}

// NewService creates a new account service.
func NewService(repo Repository, images media.Store, folders media.Folders, logger *slog.Logger) *Service {
	return &Service{repo: repo, images: images, folders: folders, logger: logger}
}

// CreateAccount registers a new account with a salted password hash and a
// fresh bearer token. The avatar, when present, is uploaded before the
// account is stored.
func (s *Service) CreateAccount(ctx context.Context, in SignupInput) (Public, error) {
	if in.Username == "" || in.Password == "" || in.Email == "" {
		return Public{}, apperr.ErrRequiredField
	}

	_, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return Public{}, errEmailTaken
	case !errors.Is(err, ErrNotFound):
		return Public{}, apperr.Dependency("lookup account", err)
	}

	salt, err := NewSalt()
	if err != nil {
		return Public{}, err
	}
	token, err := NewToken()
	if err != nil {
		return Public{}, err
	}

	acc := Account{
		ID:           uuid.New().String(),
		Email:        in.Email,
		Profile:      Profile{Username: in.Username, Phone: in.Phone},
		PasswordHash: HashPassword(in.Password, salt),
		PasswordSalt: salt,
		Token:        token,
		CreatedAt:    time.Now().UTC(),
	}

	if in.Avatar != nil && s.images != nil {
		ref, err := s.images.Upload(ctx, *in.Avatar, s.folders.User(acc.ID))
		if err != nil {
			return Public{}, apperr.Dependency("upload avatar", err)
		}
		acc.Avatar = &ref
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return Public{}, errEmailTaken
		}
		return Public{}, apperr.Dependency("create account", err)
	}

	if s.logger != nil {
		s.logger.Info("account.created", slog.String("account_id", acc.ID), slog.Bool("avatar", acc.Avatar != nil))
	}
	return acc.Public(), nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords fail with the same error. The stored token is returned as is.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Public, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return Public{}, apperr.ErrUnauthorized
	}
	if err != nil {
		return Public{}, apperr.Dependency("lookup account", err)
	}
	if !VerifyPassword(password, acc.PasswordSalt, acc.PasswordHash) {
		return Public{}, apperr.ErrUnauthorized
	}
	return acc.Public(), nil
}
