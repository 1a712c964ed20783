// AngelaMos | 2026
// mailer.go

package auth

import (
	"context"
	"log/slog"
	"time"
)

// Mailer delivers password reset links. Outbound mail lives outside this
// service; LogMailer stands in for it.
type Mailer interface {
	SendPasswordReset(
		ctx context.Context,
		email, link string,
		expiresAt time.Time,
	) error
}

type LogMailer struct {
	logger      *slog.Logger
	revealLinks bool
}

// NewLogMailer logs reset requests. The link itself is only written when
// revealLinks is set, which main does outside production.
func NewLogMailer(logger *slog.Logger, revealLinks bool) *LogMailer {
	return &LogMailer{logger: logger, revealLinks: revealLinks}
}

func (m *LogMailer) SendPasswordReset(
	ctx context.Context,
	email, link string,
	expiresAt time.Time,
) error {
	attrs := []any{
		"email", email,
		"expires_at", expiresAt,
	}
	if m.revealLinks {
		attrs = append(attrs, "link", link)
	}

	m.logger.InfoContext(ctx, "password reset mail queued", attrs...)
	return nil
}
