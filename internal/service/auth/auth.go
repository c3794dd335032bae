// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"laptoppro-service/internal/domain/staff"
	xerrors "laptoppro-service/internal/pkg/errors"
	"laptoppro-service/internal/pkg/jwt"
	"laptoppro-service/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// LoginLimiter counts login attempts per client and username.
type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, username string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, username string) error
}

// TokenRevoker blacklists access tokens on logout.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type AuthService struct {
	store       repository.Store
	jwtManager  *jwt.Manager
	rateLimiter LoginLimiter
	revoker     TokenRevoker
	logger      *zap.Logger
}

func NewAuthService(
	store repository.Store,
	jwtManager *jwt.Manager,
	rateLimiter LoginLimiter,
	revoker TokenRevoker,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		store:       store,
		jwtManager:  jwtManager,
		rateLimiter: rateLimiter,
		revoker:     revoker,
		logger:      logger,
	}
}

// ========== Login ==========

// Login authenticates a staff user with username/password
func (s *AuthService) Login(ctx context.Context, req *staff.LoginRequest, ip string) (*staff.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, xerrors.Invalid("", "username and password are required")
	}

	// Rate limiting
	if s.rateLimiter != nil {
		allowed, remaining, err := s.rateLimiter.CheckLoginAttempt(ctx, ip, username)
		if err != nil {
			// fail open when Redis is unavailable
			s.logger.Warn("rate limiter error", zap.Error(err))
		} else if !allowed {
			s.logger.Warn("login rate limited", zap.String("username", username), zap.String("ip", ip))
			return nil, xerrors.ErrRateLimited
		} else {
			s.logger.Debug("login attempt", zap.String("username", username), zap.Int64("remaining", remaining))
		}
	}

	user, err := s.store.Staff().FindByUsername(ctx, username)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, xerrors.ErrUnauthorized
	}
	if err != nil {
		return nil, xerrors.Persistence("find staff user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("invalid password", zap.String("username", username))
		return nil, xerrors.ErrUnauthorized
	}

	token, jti, err := s.jwtManager.Generator.GenerateAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to generate access token")
	}

	if s.rateLimiter != nil {
		if err := s.rateLimiter.ResetLoginAttempts(ctx, ip, username); err != nil {
			s.logger.Warn("failed to reset login attempts", zap.Error(err))
		}
	}

	s.logger.Info("staff logged in",
		zap.Int64("staff_id", user.ID),
		zap.String("username", user.Username),
		zap.String("jti", jti),
	)

	return &staff.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtManager.Generator.Ttl.Seconds()),
		User:        user,
	}, nil
}

// ========== Logout ==========

// Logout revokes the token identified by jti for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, staffID int64, jti string) error {
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, jti, s.jwtManager.Generator.Ttl); err != nil {
		return xerrors.Persistence("revoke token", err)
	}

	s.logger.Info("staff logged out", zap.Int64("staff_id", staffID), zap.String("jti", jti))
	return nil
}

// Me returns the staff user behind a verified token
func (s *AuthService) Me(ctx context.Context, staffID int64) (*staff.User, error) {
	user, err := s.store.Staff().FindByID(ctx, staffID)
	if err != nil {
		return nil, xerrors.Persistence("get staff user", err)
	}
	return user, nil
}
