package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hireline/hireline/internal/pkg/goerror"
)

type PasswordResetInput struct {
	Email       string `validate:"required,email"`
	NewPassword string `validate:"required,password"`
}

// PasswordReset overwrites the password hash. It is only reachable while a
// verified challenge for the email exists; the challenge is consumed here.
func (s *Usecase) PasswordReset(ctx context.Context, in PasswordResetInput) error {
	ctx, span := s.startSpan(ctx, "PasswordReset")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	ch, err := s.otpStore.Find(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("OTP verification required", goerror.CodeForbidden)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to find otp challenge", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}
	if !ch.Verified {
		return goerror.NewBusiness("OTP verification required", goerror.CodeForbidden)
	}

	acc, err := s.repoDB.GetAccountByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	hashed, err := s.password.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.UpdatePassword(ctx, acc.ID, string(hashed)); err != nil {
		slog.ErrorContext(ctx, "failed to repo update password", "user_id", acc.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.otpStore.Delete(ctx, in.Email); err != nil {
		slog.WarnContext(ctx, "failed to delete consumed otp challenge", "email", in.Email, "error", err)
	}

	evt := PasswordChangedEvent{UserID: acc.ID, Email: acc.Email}
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishPasswordChanged(ctx, evt); err != nil {
			slog.ErrorContext(ctx, "failed to publish password changed", "user_id", evt.UserID, "error", err)
			return err
		}
		return nil
	})

	return nil
}
