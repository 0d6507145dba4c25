package usecase

import (
	"context"
	"strings"

	"github.com/hireline/hireline/internal/pkg/goerror"
)

type PasswordResetVerifyInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,len=6,number"`
}

// PasswordResetVerify validates the reset code. The challenge is marked
// verified rather than deleted so PasswordReset can complete the flow.
func (s *Usecase) PasswordResetVerify(ctx context.Context, in PasswordResetVerifyInput) error {
	ctx, span := s.startSpan(ctx, "PasswordResetVerify")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	return s.checkChallenge(ctx, in.Email, in.Code, false)
}
