// internal/service/auth/admin_create.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"laptoppro-service/internal/domain/staff"
	xerrors "laptoppro-service/internal/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// EnsureAdminExists creates the bootstrap admin account if it is missing (called on startup)
func (s *AuthService) EnsureAdminExists(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.logger.Warn("admin bootstrap credentials not configured, skipping")
		return nil
	}

	_, err := s.store.Staff().FindByUsername(ctx, username)
	if err == nil {
		s.logger.Info("admin already exists, skipping creation", zap.String("username", username))
		return nil
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return fmt.Errorf("failed to check admin existence: %w", err)
	}

	s.logger.Info("creating admin account", zap.String("username", username))

	if _, err := s.createUser(ctx, username, password, staff.RoleAdmin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// CreateStaff registers a new staff or admin account
func (s *AuthService) CreateStaff(ctx context.Context, req *staff.CreateStaffRequest) (*staff.User, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < 3 {
		return nil, xerrors.Invalid("username", "must be at least 3 characters")
	}
	if len(req.Password) < 8 {
		return nil, xerrors.Invalid("password", "must be at least 8 characters")
	}
	if !req.Role.Valid() {
		return nil, xerrors.Invalid("role", "must be admin or staff")
	}

	user, err := s.createUser(ctx, username, req.Password, req.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("staff user created",
		zap.Int64("staff_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, username, password string, role staff.Role) (*staff.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &staff.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	if err := s.store.Staff().Create(ctx, user); err != nil {
		return nil, xerrors.Persistence("create staff user", err)
	}
	return user, nil
}
