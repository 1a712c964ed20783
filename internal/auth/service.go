// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/storefront/internal/config"
	"github.com/carterperez-dev/templates/storefront/internal/core"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserInfo struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, email, passwordHash string) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	repo         Repository
	userProvider UserProvider
	mailer       Mailer
	logger       *slog.Logger
	minLength    int
	resetTTL     time.Duration
	resetURLBase string
}

func NewService(
	repo Repository,
	userProvider UserProvider,
	mailer Mailer,
	logger *slog.Logger,
	cfg config.PasswordConfig,
	publicURL string,
) *Service {
	return &Service{
		repo:         repo,
		userProvider: userProvider,
		mailer:       mailer,
		logger:       logger,
		minLength:    cfg.MinLength,
		resetTTL:     cfg.ResetTokenTTL,
		resetURLBase: strings.TrimRight(publicURL, "/") + "/reset-password",
	}
}

// Login checks the credentials and returns the account. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(
	ctx context.Context,
	email, password string,
) (*UserInfo, error) {
	user, err := s.userProvider.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			_, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash := core.VerifyPasswordTimingSafe(password, &user.PasswordHash)
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		} else {
			user.PasswordHash = newHash
		}
	}

	return user, nil
}

func (s *Service) Register(
	ctx context.Context,
	email, password string,
) (*UserInfo, error) {
	if err := s.checkLength(password); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	passwordHash, err := core.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)

	return user, nil
}

// ChangePassword replaces the password of the account named by email.
// sessionEmail is the identity of the caller and must match it.
func (s *Service) ChangePassword(
	ctx context.Context,
	sessionEmail string,
	req ChangePasswordRequest,
) error {
	if !strings.EqualFold(strings.TrimSpace(req.Email), sessionEmail) {
		return ErrInvalidCredentials
	}

	if err := s.checkLength(req.NewPassword); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	user, err := s.userProvider.GetByEmail(ctx, sessionEmail)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("get user: %w", err)
	}

	if !core.VerifyPassword(req.OldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", user.ID)

	return nil
}

// ForgotPassword issues a reset token when the account exists. The result
// does not reveal whether it does.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userProvider.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	raw, err := core.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	token := &PasswordResetToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: core.HashToken(raw),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}

	if err := s.repo.Create(ctx, token); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := s.resetURLBase + "?token=" + url.QueryEscape(raw)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link, token.ExpiresAt); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	return nil
}

func (s *Service) ResetPassword(
	ctx context.Context,
	rawToken, newPassword string,
) error {
	if err := s.checkLength(newPassword); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.repo.Consume(ctx, core.HashToken(rawToken), newHash)
	if err != nil {
		if errors.Is(err, core.ErrTokenInvalid) {
			s.logger.WarnContext(ctx, "rejected password reset token")
		}
		return err
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", userID)

	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// PruneResetTokens removes reset tokens that expired or were used more
// than a day ago.
func (s *Service) PruneResetTokens(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}

func (s *Service) checkLength(password string) error {
	if utf8.RuneCountInString(password) < s.minLength {
		return core.ValidationError(fmt.Sprintf(
			"password must be at least %d characters",
			s.minLength,
		))
	}
	if len(password) > core.MaxPasswordBytes {
		return core.ValidationError(fmt.Sprintf(
			"password must be at most %d bytes",
			core.MaxPasswordBytes,
		))
	}
	return nil
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
