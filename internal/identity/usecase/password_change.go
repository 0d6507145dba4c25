package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hireline/hireline/internal/pkg/goerror"
)

type PasswordChangeInput struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,password"`
}

// PasswordChange is the authenticated variant of a reset: verify the current
// password, then overwrite the hash.
func (s *Usecase) PasswordChange(ctx context.Context, in PasswordChangeInput) error {
	ctx, span := s.startSpan(ctx, "PasswordChange")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	cred, err := s.repoDB.GetAccountCredential(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("Account not found", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get credential", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if !s.password.Verify(cred.Password, in.CurrentPassword) {
		slog.WarnContext(ctx, "current password mismatch", "user_id", clm.UserID)
		return goerror.NewBusiness("Current password is incorrect", goerror.CodeUnauthorized)
	}

	hashed, err := s.password.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.UpdatePassword(ctx, clm.UserID, string(hashed)); err != nil {
		slog.ErrorContext(ctx, "failed to repo update password", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	evt := PasswordChangedEvent{UserID: clm.UserID, Email: clm.UserEmail}
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishPasswordChanged(ctx, evt); err != nil {
			slog.ErrorContext(ctx, "failed to publish password changed", "user_id", evt.UserID, "error", err)
			return err
		}
		return nil
	})

	return nil
}
