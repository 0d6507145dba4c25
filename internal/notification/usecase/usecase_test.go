package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hireline/hireline/internal/notification/entity"
	"github.com/hireline/hireline/internal/pkg/config"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/instrument"
	"github.com/hireline/hireline/internal/pkg/jwt"
	"github.com/hireline/hireline/internal/pkg/mail"
	"github.com/hireline/hireline/internal/pkg/validator"
)

type fakeRepoDB struct {
	created []entity.CreateNotification
	items   []entity.Notification
	unread  int64

	lastUserID int64
	lastLimit  int32
	lastOffset int32

	markOK    bool
	createErr error
	listErr   error
}

func (f *fakeRepoDB) CreateNotification(_ context.Context, data entity.CreateNotification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, data)
	return nil
}

func (f *fakeRepoDB) ListNotifications(_ context.Context, userID int64, limit, offset int32) ([]entity.Notification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.lastUserID, f.lastLimit, f.lastOffset = userID, limit, offset
	return f.items, nil
}

func (f *fakeRepoDB) CountUnreadNotifications(_ context.Context, _ int64) (int64, error) {
	return f.unread, nil
}

func (f *fakeRepoDB) MarkNotificationRead(_ context.Context, _, _ int64) (bool, error) {
	return f.markOK, nil
}

type fakeRepoMail struct {
	sent []mail.Message
	err  error
}

func (f *fakeRepoMail) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeNumberID struct {
	next int64
}

func (f *fakeNumberID) Generate() int64 {
	f.next++
	return f.next
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

type fakeConfig struct {
	config.Config

	strs map[string]string
}

func (f *fakeConfig) GetString(key string) string { return f.strs[key] }

type testEnv struct {
	uc   *Usecase
	db   *fakeRepoDB
	mail *fakeRepoMail
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	env := &testEnv{
		db:   &fakeRepoDB{},
		mail: &fakeRepoMail{},
	}
	env.uc = NewNotification(Dependency{
		RepoDB:   env.db,
		RepoMail: env.mail,
		Config: &fakeConfig{strs: map[string]string{
			"modules.notification.email_from":    "no-reply@hireline.io",
			"modules.notification.support_email": "support@hireline.io",
		}},
		UID:        &fakeNumberID{},
		Clock:      &fakeClock{now: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)},
		Validator:  v,
		Instrument: instrument.NewNoop(),
	})

	return env
}

func TestConsumeUserRegistered(t *testing.T) {
	input := func() ConsumeUserRegisteredInput {
		return ConsumeUserRegisteredInput{
			UserID:   42,
			Email:    "jane@example.com",
			FullName: "Jane Smith",
			Role:     "user",
		}
	}

	t.Run("SendsWelcomeAndCreatesFeedEntry", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		err := env.uc.ConsumeUserRegistered(context.Background(), input())

		// Assert
		if err != nil {
			t.Fatalf("consume: %v", err)
		}
		if len(env.mail.sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(env.mail.sent))
		}
		msg := env.mail.sent[0]
		if msg.From != "no-reply@hireline.io" || msg.To[0] != "jane@example.com" {
			t.Fatalf("unexpected envelope %+v", msg)
		}
		if !strings.Contains(msg.HTMLBody, "Jane Smith") {
			t.Fatal("welcome email must greet the user by name")
		}
		if !strings.Contains(msg.HTMLBody, "support@hireline.io") {
			t.Fatal("welcome email must carry the support address")
		}

		if len(env.db.created) != 1 {
			t.Fatalf("expected 1 feed entry, got %d", len(env.db.created))
		}
		n := env.db.created[0]
		if n.UserID != 42 || n.Kind != entity.KindWelcome {
			t.Fatalf("unexpected feed entry %+v", n)
		}
	})

	t.Run("MalformedPayloadIsDropped", func(t *testing.T) {
		env := newTestEnv(t)
		in := input()
		in.Email = "not-an-email"

		err := env.uc.ConsumeUserRegistered(context.Background(), in)

		// nil keeps the broker from redelivering a payload that can never
		// become valid.
		if err != nil {
			t.Fatalf("expected nil for malformed payload, got %v", err)
		}
		if len(env.db.created) != 0 || len(env.mail.sent) != 0 {
			t.Fatal("malformed payload must produce no side effects")
		}
	})

	t.Run("MailFailureStillCreatesFeedEntry", func(t *testing.T) {
		env := newTestEnv(t)
		env.mail.err = errors.New("smtp unreachable")

		err := env.uc.ConsumeUserRegistered(context.Background(), input())

		if err != nil {
			t.Fatalf("mail failure must not fail the consumer: %v", err)
		}
		if len(env.db.created) != 1 {
			t.Fatal("feed entry must be created even when the email fails")
		}
	})

	t.Run("CreateFailureIsRetried", func(t *testing.T) {
		env := newTestEnv(t)
		env.db.createErr = errors.New("db down")

		err := env.uc.ConsumeUserRegistered(context.Background(), input())

		// A returned error signals the broker to redeliver.
		if err == nil {
			t.Fatal("expected error so the broker redelivers")
		}
	})
}

func TestConsumePasswordChanged(t *testing.T) {
	t.Run("SendsAlertAndCreatesFeedEntry", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		err := env.uc.ConsumePasswordChanged(context.Background(), ConsumePasswordChangedInput{
			UserID: 42,
			Email:  "jane@example.com",
		})

		// Assert
		if err != nil {
			t.Fatalf("consume: %v", err)
		}
		if len(env.mail.sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(env.mail.sent))
		}
		if len(env.db.created) != 1 || env.db.created[0].Kind != entity.KindPasswordChanged {
			t.Fatalf("unexpected feed entries %+v", env.db.created)
		}
	})
}

func TestListNotifications(t *testing.T) {
	userCtx := func() context.Context {
		return jwt.SetAuth(context.Background(), jwt.Claims{UserID: 42, UserRole: "user"})
	}

	t.Run("ReturnsFeedWithUnreadCount", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.db.items = []entity.Notification{{ID: 1, UserID: 42, Kind: entity.KindWelcome}}
		env.db.unread = 3

		// Act
		out, err := env.uc.ListNotifications(userCtx(), ListNotificationsInput{Size: 10, Page: 3})

		// Assert
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if out.Unread != 3 || len(out.Items) != 1 {
			t.Fatalf("unexpected output %+v", out)
		}
		if env.db.lastUserID != 42 {
			t.Fatalf("must list the caller's feed, got user %d", env.db.lastUserID)
		}
		if env.db.lastLimit != 10 || env.db.lastOffset != 20 {
			t.Fatalf("expected limit 10 offset 20, got %d/%d", env.db.lastLimit, env.db.lastOffset)
		}
	})

	t.Run("DefaultsSize", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.uc.ListNotifications(userCtx(), ListNotificationsInput{})

		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if out.Size != 20 || out.Page != 1 {
			t.Fatalf("expected defaults 20/1, got %d/%d", out.Size, out.Page)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.ListNotifications(context.Background(), ListNotificationsInput{})

		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})
}

func TestMarkRead(t *testing.T) {
	userCtx := func() context.Context {
		return jwt.SetAuth(context.Background(), jwt.Claims{UserID: 42, UserRole: "user"})
	}

	t.Run("MarksRead", func(t *testing.T) {
		env := newTestEnv(t)
		env.db.markOK = true

		if err := env.uc.MarkRead(userCtx(), MarkReadInput{ID: 7}); err != nil {
			t.Fatalf("mark read: %v", err)
		}
	})

	t.Run("NotFoundOrForeign", func(t *testing.T) {
		env := newTestEnv(t)
		env.db.markOK = false

		err := env.uc.MarkRead(userCtx(), MarkReadInput{ID: 7})

		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}
