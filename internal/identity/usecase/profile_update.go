package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hireline/hireline/internal/pkg/goerror"
)

type ProfileUpdateInput struct {
	FullName string `validate:"required,min=3,max=100,alphaspace"`
	Phone    string `validate:"omitempty,e164"`
}

func (s *Usecase) ProfileUpdate(ctx context.Context, in ProfileUpdateInput) error {
	ctx, span := s.startSpan(ctx, "ProfileUpdate")
	defer span.End()

	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	err = s.repoDB.UpdateProfile(ctx, clm.UserID, in.FullName, in.Phone)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found for valid token", "user_id", clm.UserID)
		return goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if errors.Is(err, goerror.ErrConflict) {
		return goerror.NewBusiness("Phone already registered", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to update profile", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
