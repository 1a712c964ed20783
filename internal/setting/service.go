// AngelaMos | 2026
// service.go

package setting

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"github.com/carterperez-dev/templates/storefront/internal/core"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,99}$`)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, key string) (*Setting, error) {
	if !keyPattern.MatchString(key) {
		return nil, core.ValidationError("invalid setting key")
	}
	return s.repo.Get(ctx, key)
}

// Lookup reports whether key is set. A missing key is not an error.
func (s *Service) Lookup(ctx context.Context, key string) (string, bool, error) {
	setting, err := s.repo.Get(ctx, key)
	if errors.Is(err, core.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

func (s *Service) List(ctx context.Context) ([]Setting, error) {
	return s.repo.List(ctx)
}

func (s *Service) Set(ctx context.Context, key, value string) (*Setting, error) {
	if !keyPattern.MatchString(key) {
		return nil, core.ValidationError(
			"setting keys are lowercase letters, digits, '.', '_' or '-'",
		)
	}

	setting, err := s.repo.Upsert(ctx, key, value)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "setting updated", "key", key)
	return setting, nil
}
