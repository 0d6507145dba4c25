package usecase

import (
	"context"
	"strings"

	"github.com/hireline/hireline/internal/pkg/goerror"
)

type OtpRequestInput struct {
	Email string `validate:"required,email"`
}

// OtpRequest issues (or re-issues) a verification challenge for the email.
// A previously issued, unconsumed code for the same email stops working the
// moment the new one is stored.
func (s *Usecase) OtpRequest(ctx context.Context, in OtpRequestInput) error {
	ctx, span := s.startSpan(ctx, "OtpRequest")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	return s.issueChallenge(ctx, in.Email)
}
