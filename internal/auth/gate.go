// AngelaMos | 2026
// gate.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/carterperez-dev/templates/storefront/internal/core"
	"github.com/carterperez-dev/templates/storefront/internal/middleware"
)

const roleAdmin = "admin"

type RoleLoader interface {
	GetRole(ctx context.Context, userID string) (string, error)
}

// Gate admits callers whose current role is admin. The role is loaded
// from storage on every check, never trusted from the session token.
type Gate struct {
	sessions middleware.SessionReader
	roles    RoleLoader
}

func NewGate(sessions middleware.SessionReader, roles RoleLoader) *Gate {
	return &Gate{sessions: sessions, roles: roles}
}

// RequireAdmin returns nil for admins, core.ErrUnauthorized without a
// valid session and core.ErrForbidden for any other role.
func (g *Gate) RequireAdmin(r *http.Request) error {
	claims := g.sessions.GetSession(r)
	if claims == nil {
		return fmt.Errorf("require admin: %w", core.ErrUnauthorized)
	}

	role, err := g.roles.GetRole(r.Context(), claims.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("require admin: %w", core.ErrUnauthorized)
	}
	if err != nil {
		return fmt.Errorf("require admin: load role: %w", err)
	}

	if role != roleAdmin {
		return fmt.Errorf("require admin: %w", core.ErrForbidden)
	}

	return nil
}

var _ middleware.AdminGate = (*Gate)(nil)
