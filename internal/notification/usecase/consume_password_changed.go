package usecase

import (
	"context"
	"log/slog"

	"github.com/hireline/hireline/internal/notification/entity"
	"github.com/hireline/hireline/internal/pkg/valueobject"
)

const passwordChangedEmailTpl = `
<html>
<body>
  <p>Hi,</p>
  <p>The password for your {{.company_name}} account was changed on
  {{.changed_at}}.</p>
  <p>If this was you, no action is needed. If you did not change your
  password, reset it immediately and contact {{.support_email}}.</p>
  <p>&copy; {{.year}} {{.company_name}}</p>
</body>
</html>`

type ConsumePasswordChangedInput struct {
	UserID int64  `validate:"required,gt=0"`
	Email  string `validate:"required,email"`
}

// ConsumePasswordChanged sends the security alert for a password change and
// records it in the feed.
func (s *Usecase) ConsumePasswordChanged(ctx context.Context, in ConsumePasswordChangedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumePasswordChanged")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid password changed payload", "error", err)
		return nil
	}

	data := s.baseEmailTemplateData()
	data["changed_at"] = s.clock.Now().UTC().Format("2006-01-02 15:04 MST")

	s.sendEmail(ctx, in.Email, "Your Hireline password was changed", "password_changed", passwordChangedEmailTpl, data)

	n := entity.CreateNotification{
		ID:     s.uid.Generate(),
		UserID: in.UserID,
		Kind:   entity.KindPasswordChanged,
		Title:  "Password changed",
		Body:   "Your password was changed. If this wasn't you, reset it immediately.",
		Data:   valueobject.JSONMap{},
	}
	if err := s.repoDB.CreateNotification(ctx, n); err != nil {
		slog.ErrorContext(ctx, "failed to repo create notification", "user_id", in.UserID, "error", err)
		return err
	}

	return nil
}
