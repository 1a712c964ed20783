// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/storefront/internal/core"
)

type Repository interface {
	Create(ctx context.Context, token *PasswordResetToken) error
	Consume(ctx context.Context, tokenHash, passwordHash string) (string, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create stores a new reset token and voids any the user still holds, so
// only the most recently mailed link works.
func (r *repository) Create(
	ctx context.Context,
	token *PasswordResetToken,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE password_reset_tokens
			SET used_at = NOW()
			WHERE user_id = $1 AND used_at IS NULL`,
			token.UserID,
		); err != nil {
			return fmt.Errorf("void previous reset tokens: %w", err)
		}

		err := tx.GetContext(ctx, &token.CreatedAt, `
			INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at`,
			token.ID,
			token.UserID,
			token.TokenHash,
			token.ExpiresAt,
		)
		if err != nil {
			return fmt.Errorf("create reset token: %w", err)
		}

		return nil
	})
}

// Consume marks the token used and replaces the owner's password hash in
// one transaction. A token that is unknown, expired or already used yields
// core.ErrTokenInvalid and changes nothing.
func (r *repository) Consume(
	ctx context.Context,
	tokenHash, passwordHash string,
) (string, error) {
	var userID string

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &userID, `
			UPDATE password_reset_tokens
			SET used_at = NOW()
			WHERE token_hash = $1
				AND used_at IS NULL
				AND expires_at > NOW()
			RETURNING user_id`,
			tokenHash,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("consume reset token: %w", core.ErrTokenInvalid)
		}
		if err != nil {
			return fmt.Errorf("consume reset token: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE users
			SET password_hash = $2, updated_at = NOW()
			WHERE id = $1`,
			userID,
			passwordHash,
		)
		if err != nil {
			return fmt.Errorf("reset password: %w", err)
		}

		return core.ExpectOneRow(result, "reset password")
	})
	if err != nil {
		return "", err
	}

	return userID, nil
}

func (r *repository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM password_reset_tokens
		WHERE expires_at < $1 OR used_at < $1`

	cutoff := time.Now().Add(-24 * time.Hour)

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}

	return rows, nil
}
