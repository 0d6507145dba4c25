package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/idempotency"
)

type SignupInput struct {
	FullName        string `validate:"required,min=3,max=100,alphaspace"`
	Email           string `validate:"required,email"`
	Phone           string `validate:"omitempty,e164"`
	Password        string `validate:"required,password"`
	ConfirmPassword string `validate:"required"`
	Role            string

	// IdempotencyKey is optional; when set, replays of the same key while a
	// previous call is in flight or already completed are rejected.
	IdempotencyKey string
}

type SignupOutput struct {
	UserID int64
	Email  string
}

// Signup creates the account for an email whose OTP challenge has already
// been verified. Creation is gated on that verified challenge so unverified
// accounts never exist.
func (s *Usecase) Signup(ctx context.Context, in SignupInput) (*SignupOutput, error) {
	ctx, span := s.startSpan(ctx, "Signup")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if in.Password != in.ConfirmPassword {
		return nil, goerror.NewInvalidInput(nil, "confirm_password", "Passwords do not match")
	}

	var out *SignupOutput
	register := func(ctx context.Context) error {
		ch, err := s.otpStore.Find(ctx, in.Email)
		if errors.Is(err, goerror.ErrNotFound) {
			return goerror.NewBusiness("Email not verified, request an OTP first", goerror.CodeForbidden)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to find otp challenge", "email", in.Email, "error", err)
			return goerror.NewServer(err)
		}
		if !ch.Verified {
			return goerror.NewBusiness("Email not verified, verify the OTP first", goerror.CodeForbidden)
		}

		acc, err := s.createVerifiedAccount(ctx, entity.NewAccount{
			FullName: in.FullName,
			Email:    in.Email,
			Phone:    strings.TrimSpace(in.Phone),
			Role:     registrationRole(in.Role),
		}, in.Password)
		if err != nil {
			return err
		}

		if err := s.otpStore.Delete(ctx, in.Email); err != nil {
			slog.WarnContext(ctx, "failed to delete consumed otp challenge", "email", in.Email, "error", err)
		}

		out = &SignupOutput{UserID: acc.ID, Email: acc.Email}
		return nil
	}

	if in.IdempotencyKey == "" {
		if err := register(ctx); err != nil {
			return nil, err
		}
		return out, nil
	}

	err := s.idemp.Exec(ctx, "signup:"+in.IdempotencyKey, register)
	switch {
	case errors.Is(err, idempotency.ErrAlreadyCompleted), errors.Is(err, idempotency.ErrAlreadyInProgress):
		return nil, goerror.NewBusiness("Signup already processed", goerror.CodeConflict)
	case err != nil:
		return nil, err
	}

	return out, nil
}
