package db

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/hireline/hireline/internal/identity/entity"
)

const accountColumns = `id, full_name, email, COALESCE(phone, ''), role, email_verified, COALESCE(resume_url, ''), created_at, updated_at`

func scanAccount(row pgx.Row) (*entity.Account, error) {
	var acc entity.Account
	err := row.Scan(
		&acc.ID,
		&acc.FullName,
		&acc.Email,
		&acc.Phone,
		&acc.Role,
		&acc.EmailVerified,
		&acc.ResumeURL,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (s *DB) GetAccountByID(ctx context.Context, id int64) (acc *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByID")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)

	acc, err = scanAccount(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return acc, nil
}

func (s *DB) GetAccountByEmail(ctx context.Context, email string) (acc *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByEmail")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)

	acc, err = scanAccount(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return acc, nil
}

// GetAccountLoginInfo looks up the account plus its credential hash by email
// or phone, whichever is non-empty.
func (s *DB) GetAccountLoginInfo(ctx context.Context, email, phone string) (info *entity.AccountLoginInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountLoginInfo")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT a.id, a.email, a.role, a.email_verified, c.password
		FROM accounts a
		JOIN account_credentials c ON c.account_id = a.id
		WHERE `
	var arg string
	if email != "" {
		query += `a.email = $1`
		arg = email
	} else {
		query += `a.phone = $1`
		arg = phone
	}

	var out entity.AccountLoginInfo
	err = s.conn.QueryRow(ctx, query, arg).Scan(
		&out.ID,
		&out.Email,
		&out.Role,
		&out.EmailVerified,
		&out.Password,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &out, nil
}

func (s *DB) GetAccountCredential(ctx context.Context, accountID int64) (cred *entity.AccountCredential, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountCredential")
	defer func() { s.endSpan(span, err) }()

	var out entity.AccountCredential
	err = s.conn.QueryRow(ctx,
		`SELECT account_id, password, updated_at FROM account_credentials WHERE account_id = $1`,
		accountID,
	).Scan(&out.AccountID, &out.Password, &out.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &out, nil
}

func (s *DB) ListAccounts(ctx context.Context, filter entity.AccountListFilter) (accs []entity.Account, total int64, err error) {
	ctx, span := s.startSpan(ctx, "ListAccounts")
	defer func() { s.endSpan(span, err) }()

	where := ` WHERE TRUE`
	args := []any{}

	if filter.IsFilterBySearch {
		args = append(args, "%"+filter.Search+"%")
		where += ` AND (email ILIKE $1 OR full_name ILIKE $1)`
	}
	if filter.IsFilterByRole {
		args = append(args, filter.Roles)
		where += ` AND role = ANY($` + itoa(len(args)) + `)`
	}

	if err = s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`+where, args...).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	orderBy := "created_at"
	switch filter.OrderBy {
	case "email", "full_name", "updated_at":
		orderBy = filter.OrderBy
	}
	direction := "DESC"
	if filter.OrderDirection == "asc" {
		direction = "ASC"
	}

	args = append(args, filter.Size, filter.Offset)
	query := `SELECT ` + accountColumns + ` FROM accounts` + where +
		` ORDER BY ` + orderBy + ` ` + direction +
		` LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	accs = make([]entity.Account, 0)
	for rows.Next() {
		acc, errScan := scanAccount(rows)
		if errScan != nil {
			return nil, 0, s.mapError(errScan)
		}
		accs = append(accs, *acc)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, s.mapError(err)
	}

	return accs, total, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
