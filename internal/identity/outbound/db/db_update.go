package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hireline/hireline/internal/pkg/goerror"
)

func (s *DB) UpdatePassword(ctx context.Context, accountID int64, hash string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdatePassword")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE account_credentials SET password = $2, updated_at = NOW()
		WHERE account_id = $1`,
		accountID, hash,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) UpdateProfile(ctx context.Context, accountID int64, fullName, phone string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateProfile")
	defer func() { s.endSpan(span, err) }()

	phoneArg := pgtype.Text{}
	if phone != "" {
		phoneArg = pgtype.Text{String: phone, Valid: true}
	}

	tag, err := s.conn.Exec(ctx, `
		UPDATE accounts SET full_name = $2, phone = $3, updated_at = NOW()
		WHERE id = $1`,
		accountID, fullName, phoneArg,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) UpdateResumeURL(ctx context.Context, accountID int64, resumeURL string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateResumeURL")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE accounts SET resume_url = $2, updated_at = NOW()
		WHERE id = $1`,
		accountID, resumeURL,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
