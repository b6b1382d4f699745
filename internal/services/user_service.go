package services

import (
	"context"
	"errors"
	"strings"

	"github.com/landsalelk/payments-backend/internal/auth"
	"github.com/landsalelk/payments-backend/internal/models"
	repo "github.com/landsalelk/payments-backend/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	r repo.Users
}

func NewUserService(r repo.Users) *UserService { return &UserService{r: r} }

func (s *UserService) Register(ctx context.Context, username, email, password, role string) (models.User, error) {
	u := models.User{Username: strings.TrimSpace(username), Email: strings.TrimSpace(email), Role: role}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return s.r.Create(ctx, u.Username, u.Email, hash, u.Role)
}

// EnsureAdmin seeds the first operator account at startup. A later boot with
// the same email is a no-op, so the env vars can stay set across restarts.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.r.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	_, err = s.Register(ctx, "admin", email, password, "admin")
	return err
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	return s.r.GetByID(ctx, id)
}

func (s *UserService) Login(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.r.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}
