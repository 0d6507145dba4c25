package email

import (
	"bytes"
	"context"
	"html/template"

	"go.opentelemetry.io/otel/codes"

	"github.com/hireline/hireline/internal/pkg/instrument"
	"github.com/hireline/hireline/internal/pkg/mail"
)

var otpTemplate = template.Must(template.New("otp").Parse(`
<p>Your Hireline verification code is:</p>
<h2 style="letter-spacing: 4px;">{{.Code}}</h2>
<p>The code expires in {{.ExpiresIn}}. If you did not request it, ignore this email.</p>
`))

// Notifier sends OTP codes over email. It sits in the request path, so a
// failure here surfaces to the caller instead of being queued.
type Notifier struct {
	client mail.Mail
	ins    instrument.Instrumentation
	from   string
}

func NewNotifier(client mail.Mail, ins instrument.Instrumentation, from string) *Notifier {
	return &Notifier{client: client, ins: ins, from: from}
}

func (n *Notifier) SendOtp(ctx context.Context, to, code, expiresIn string) error {
	ctx, span := n.ins.Tracer("identity.outbound.email").Start(ctx, "SendOtp")
	defer span.End()

	var body bytes.Buffer
	if err := otpTemplate.Execute(&body, map[string]string{
		"Code":      code,
		"ExpiresIn": expiresIn,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := n.client.Send(ctx, mail.Message{
		From:     n.from,
		To:       []string{to},
		Subject:  "Your Hireline verification code",
		HTMLBody: body.String(),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
