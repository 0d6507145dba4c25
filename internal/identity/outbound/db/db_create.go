package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hireline/hireline/internal/identity/entity"
)

// CreateAccount inserts the account and its credential hash in one
// transaction so a half-created account can never log in.
func (s *DB) CreateAccount(ctx context.Context, acc entity.NewAccount, hash string) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAccount")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	phone := pgtype.Text{}
	if acc.Phone != "" {
		phone = pgtype.Text{String: acc.Phone, Valid: true}
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO accounts (id, full_name, email, phone, role, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		acc.ID, acc.FullName, acc.Email, phone, acc.Role, acc.EmailVerified,
	); err != nil {
		return s.mapError(err)
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO account_credentials (account_id, password)
		VALUES ($1, $2)`,
		acc.ID, hash,
	); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}
