// AngelaMos | 2026
// repository.go

package setting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/storefront/internal/core"
)

type Repository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	List(ctx context.Context) ([]Setting, error)
	Upsert(ctx context.Context, key, value string) (*Setting, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, key string) (*Setting, error) {
	var s Setting
	err := r.db.GetContext(ctx, &s,
		`SELECT key, value, updated_at FROM settings WHERE key = $1`,
		key,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get setting: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}

	return &s, nil
}

func (r *repository) List(ctx context.Context) ([]Setting, error) {
	settings := []Setting{}
	if err := r.db.SelectContext(ctx, &settings,
		`SELECT key, value, updated_at FROM settings ORDER BY key`,
	); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	return settings, nil
}

// Upsert replaces both the value and the timestamp of an existing key.
func (r *repository) Upsert(
	ctx context.Context,
	key, value string,
) (*Setting, error) {
	var s Setting
	err := r.db.GetContext(ctx, &s, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		RETURNING key, value, updated_at`,
		key, value,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert setting: %w", err)
	}

	return &s, nil
}
