package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
	"github.com/llmail-inject/ctf-control-plane/pkg/storage"
)

// UserService implements admin-facing user management, grounded on
// original_source/src/api/apis/users.py. It is not responsible for
// authentication itself — see pkg/auth for login/token handling.
type UserService struct {
	Users storage.UserStore
}

func NewUserService(users storage.UserStore) *UserService {
	return &UserService{Users: users}
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, login string) (*models.User, error) {
	user, err := s.Users.Get(ctx, login)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, login string) error {
	if err := s.Users.Delete(ctx, login); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// UserUpdate carries the optional fields an admin may patch on a User.
// Unlike the original (which checked one JSON key but read another),
// Role and Blocked are each read and validated under their own name.
type UserUpdate struct {
	Role    *string
	Blocked *bool
}

func (s *UserService) Update(ctx context.Context, login string, patch UserUpdate) (*models.User, error) {
	user, err := s.Get(ctx, login)
	if err != nil {
		return nil, err
	}
	if patch.Role != nil {
		if *patch.Role != models.RoleAdmin && *patch.Role != models.RoleCompetitor {
			return nil, NewValidationError("role", "must be admin or competitor")
		}
		user.Role = *patch.Role
	}
	if patch.Blocked != nil {
		user.Blocked = *patch.Blocked
	}
	if err := s.Users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
