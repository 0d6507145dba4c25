package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/pkg/goerror"
)

type CheckUserOutput struct {
	Account entity.Account
}

// CheckUser returns the account behind the presented access token.
func (s *Usecase) CheckUser(ctx context.Context) (*CheckUserOutput, error) {
	ctx, span := s.startSpan(ctx, "CheckUser")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	acc, err := s.repoDB.GetAccountByID(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Account not found", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &CheckUserOutput{Account: *acc}, nil
}
