package usecase

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/hireline/hireline/internal/notification/entity"
	"github.com/hireline/hireline/internal/pkg/clock"
	"github.com/hireline/hireline/internal/pkg/config"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/instrument"
	"github.com/hireline/hireline/internal/pkg/jwt"
	"github.com/hireline/hireline/internal/pkg/mail"
	"github.com/hireline/hireline/internal/pkg/uid"
	"github.com/hireline/hireline/internal/pkg/validator"
)

type repoDB interface {
	CreateNotification(ctx context.Context, data entity.CreateNotification) error
	ListNotifications(ctx context.Context, userID int64, limit, offset int32) ([]entity.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID int64) (int64, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID int64) (bool, error)
}

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Usecase struct {
	repoDB    repoDB
	repoMail  repoMail
	cfg       config.Config
	uid       uid.NumberID
	clock     clock.Clocker
	validator validator.Validator
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	RepoMail   repoMail
	Config     config.Config
	UID        uid.NumberID
	Clock      clock.Clocker
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		repoMail:  dep.RepoMail,
		cfg:       dep.Config,
		uid:       dep.UID,
		clock:     dep.Clock,
		validator: dep.Validator,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	return clm, nil
}

func (s *Usecase) renderTemplate(name, tpl string, data map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Usecase) baseEmailTemplateData() map[string]any {
	return map[string]any{
		"support_email": s.cfg.GetString("modules.notification.support_email"),
		"company_name":  "Hireline",
		"year":          s.clock.Now().Format("2006"),
	}
}

// sendEmail renders the template and delivers it. Failures are logged, not
// returned; the retry policy lives in the mail outbound and a feed entry is
// still created when the email cannot be sent.
func (s *Usecase) sendEmail(ctx context.Context, to, subject, tplName, tpl string, data map[string]any) {
	html, err := s.renderTemplate(tplName, tpl, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render email template", "template", tplName, "error", err)
		return
	}

	msg := mail.Message{
		From:     s.cfg.GetString("modules.notification.email_from"),
		To:       []string{to},
		Subject:  subject,
		HTMLBody: html,
	}
	if err := s.repoMail.Send(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to send notification email", "template", tplName, "to", to, "error", err)
	}
}
