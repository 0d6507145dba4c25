package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hireline/hireline/internal/pkg/goerror"
)

type LoginInput struct {
	Email    string `validate:"omitempty,email"`
	Phone    string `validate:"omitempty,e164"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	UserID           int64
	Email            string
	Role             string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Login authenticates by email or phone, exactly one of the two. A missing
// account and a wrong password are reported identically.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)

	if (in.Email == "") == (in.Phone == "") {
		return nil, goerror.NewInvalidFormat("Provide either email or phone, not both")
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	info, err := s.repoDB.GetAccountLoginInfo(ctx, in.Email, in.Phone)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found on login", "email", in.Email)
		return nil, goerror.NewBusiness("Invalid credentials", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get login info", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.password.Verify(info.Password, in.Password) {
		slog.WarnContext(ctx, "password mismatch on login", "user_id", info.ID)
		return nil, goerror.NewBusiness("Invalid credentials", goerror.CodeUnauthorized)
	}

	if s.cfg.GetBool("modules.identity.require_verified_email") && !info.EmailVerified {
		slog.WarnContext(ctx, "login blocked, email not verified", "user_id", info.ID)
		return nil, goerror.NewBusiness("Email not verified", goerror.CodeForbidden)
	}

	return s.mintSession(ctx, info.ID, info.Email, info.Role.String())
}

// mintSession issues the access and refresh token pair for the user.
func (s *Usecase) mintSession(ctx context.Context, userID int64, email, role string) (*LoginOutput, error) {
	now := s.clock.Now()

	accessToken, err := s.accessJWT.Generate(userID, email, role)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	refreshToken, err := s.refreshJWT.Generate(userID, "", role)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate refresh token", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LoginOutput{
		UserID:           userID,
		Email:            email,
		Role:             role,
		AccessToken:      accessToken,
		AccessExpiresAt:  now.Add(s.cfg.GetMinute("jwt.access.ttl_minutes")),
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.cfg.GetDay("jwt.refresh.ttl_days")),
	}, nil
}
