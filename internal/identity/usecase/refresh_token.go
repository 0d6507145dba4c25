package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/jwt"
)

type RefreshTokenInput struct {
	RefreshToken string `validate:"required"`
}

type RefreshTokenOutput struct {
	AccessToken     string
	AccessExpiresAt time.Time

	// RefreshToken is only set when rotation is enabled; otherwise the
	// client keeps using the cookie it already holds.
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// RefreshToken exchanges a valid refresh JWT for a new access token. Any
// failure is an authentication failure; the HTTP boundary clears the cookie
// so the client is forced to log in again.
func (s *Usecase) RefreshToken(ctx context.Context, in RefreshTokenInput) (*RefreshTokenOutput, error) {
	ctx, span := s.startSpan(ctx, "RefreshToken")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	claims, err := s.refreshJWT.Verify(in.RefreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			slog.WarnContext(ctx, "refresh token expired")
		} else {
			slog.WarnContext(ctx, "refresh token invalid", "error", err)
		}
		return nil, goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
	}

	acc, err := s.repoDB.GetAccountByID(ctx, claims.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "refresh token subject no longer exists", "user_id", claims.UserID)
		return nil, goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account", "user_id", claims.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()

	accessToken, err := s.accessJWT.Generate(acc.ID, acc.Email, acc.Role.String())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &RefreshTokenOutput{
		AccessToken:     accessToken,
		AccessExpiresAt: now.Add(s.cfg.GetMinute("jwt.access.ttl_minutes")),
	}

	if s.cfg.GetBool("modules.identity.refresh_rotation") {
		refreshToken, err := s.refreshJWT.Generate(acc.ID, "", acc.Role.String())
		if err != nil {
			slog.ErrorContext(ctx, "failed to rotate refresh token", "user_id", acc.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
		out.RefreshToken = refreshToken
		out.RefreshExpiresAt = now.Add(s.cfg.GetDay("jwt.refresh.ttl_days"))
	}

	return out, nil
}
