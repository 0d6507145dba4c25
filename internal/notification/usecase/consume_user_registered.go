package usecase

import (
	"context"
	"log/slog"

	"github.com/hireline/hireline/internal/notification/entity"
	"github.com/hireline/hireline/internal/pkg/valueobject"
)

const welcomeEmailTpl = `
<html>
<body>
  <p>Hi {{.full_name}},</p>
  <p>Welcome to {{.company_name}}. Your account is verified and ready to use.</p>
  <p>You signed up as <b>{{.role}}</b>. Log in to complete your profile and
  start exploring opportunities.</p>
  <p>Questions? Reach us at {{.support_email}}.</p>
  <p>&copy; {{.year}} {{.company_name}}</p>
</body>
</html>`

type ConsumeUserRegisteredInput struct {
	UserID   int64  `validate:"required,gt=0"`
	Email    string `validate:"required,email"`
	FullName string `validate:"required,min=3,max=100,alphaspace"`
	Role     string `validate:"required"`
}

// ConsumeUserRegistered handles the event published after account creation:
// a welcome email plus a feed entry. Malformed payloads are dropped so the
// broker does not redeliver them forever.
func (s *Usecase) ConsumeUserRegistered(ctx context.Context, in ConsumeUserRegisteredInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserRegistered")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid user registered payload", "error", err)
		return nil
	}

	data := s.baseEmailTemplateData()
	data["full_name"] = in.FullName
	data["role"] = in.Role

	s.sendEmail(ctx, in.Email, "Welcome to Hireline", "welcome", welcomeEmailTpl, data)

	n := entity.CreateNotification{
		ID:     s.uid.Generate(),
		UserID: in.UserID,
		Kind:   entity.KindWelcome,
		Title:  "Welcome to Hireline",
		Body:   "Your account is verified and ready to use.",
		Data: valueobject.JSONMap{
			"full_name": in.FullName,
			"role":      in.Role,
		},
	}
	if err := s.repoDB.CreateNotification(ctx, n); err != nil {
		slog.ErrorContext(ctx, "failed to repo create notification", "user_id", in.UserID, "error", err)
		return err
	}

	return nil
}
