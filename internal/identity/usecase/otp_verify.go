package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/identity/outbound/db"
	"github.com/hireline/hireline/internal/pkg/goerror"
)

type OtpVerifyInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,len=6,number"`

	// Registration is optional; when present a matching code creates the
	// account in the same call.
	Registration *OtpVerifyRegistration
}

type OtpVerifyRegistration struct {
	FullName        string `validate:"required,min=3,max=100,alphaspace"`
	Phone           string `validate:"omitempty,e164"`
	Password        string `validate:"required,password"`
	ConfirmPassword string `validate:"required"`
	Role            string
}

type OtpVerifyOutput struct {
	UserID int64
	Email  string
}

// OtpVerify runs the challenge state machine. Without registration data a
// matching code marks the challenge verified for a follow-up step; with
// registration data it consumes the challenge and creates the account.
func (s *Usecase) OtpVerify(ctx context.Context, in OtpVerifyInput) (*OtpVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "OtpVerify")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Registration == nil {
		if err := s.checkChallenge(ctx, in.Email, in.Code, false); err != nil {
			return nil, err
		}
		return &OtpVerifyOutput{Email: in.Email}, nil
	}

	reg := *in.Registration
	if err := s.validator.Validate(reg); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if reg.Password != reg.ConfirmPassword {
		return nil, goerror.NewInvalidInput(nil, "confirm_password", "Passwords do not match")
	}

	if err := s.checkChallenge(ctx, in.Email, in.Code, false); err != nil {
		return nil, err
	}

	acc, err := s.createVerifiedAccount(ctx, entity.NewAccount{
		FullName: strings.TrimSpace(reg.FullName),
		Email:    in.Email,
		Phone:    strings.TrimSpace(reg.Phone),
		Role:     registrationRole(reg.Role),
	}, reg.Password)
	if err != nil {
		return nil, err
	}

	if err := s.otpStore.Delete(ctx, in.Email); err != nil {
		slog.WarnContext(ctx, "failed to delete consumed otp challenge", "email", in.Email, "error", err)
	}

	return &OtpVerifyOutput{UserID: acc.ID, Email: acc.Email}, nil
}

// registrationRole resolves the requested role, refusing anything outside
// the self-registerable set.
func registrationRole(raw string) entity.Role {
	role := entity.RoleFromString(raw)
	for _, allowed := range entity.SelfRegisterableRoles() {
		if role == allowed {
			return role
		}
	}
	return entity.RoleUser
}

// createVerifiedAccount hashes the password and inserts the account with
// email_verified already set; a duplicate unique field maps to a conflict
// naming the offending field.
func (s *Usecase) createVerifiedAccount(ctx context.Context, acc entity.NewAccount, password string) (*entity.NewAccount, error) {
	hashed, err := s.password.Hash(password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	acc.ID = s.uid.Generate()
	acc.EmailVerified = true

	if err := s.repoDB.CreateAccount(ctx, acc, string(hashed)); err != nil {
		var conflict *db.ConflictError
		if errors.As(err, &conflict) {
			return nil, goerror.NewBusiness(
				strings.ToUpper(conflict.Field[:1])+conflict.Field[1:]+" already registered",
				goerror.CodeConflict,
			)
		}
		slog.ErrorContext(ctx, "failed to create account", "email", acc.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	evt := UserRegisteredEvent{
		UserID:   acc.ID,
		Email:    acc.Email,
		FullName: acc.FullName,
		Role:     acc.Role.String(),
	}
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishUserRegistered(ctx, evt); err != nil {
			slog.ErrorContext(ctx, "failed to publish user registered", "user_id", evt.UserID, "error", err)
			return err
		}
		return nil
	})

	return &acc, nil
}
