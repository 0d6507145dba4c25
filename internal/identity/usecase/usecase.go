package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/casbin/casbin/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/pkg/clock"
	"github.com/hireline/hireline/internal/pkg/config"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/goroutine"
	"github.com/hireline/hireline/internal/pkg/hash"
	"github.com/hireline/hireline/internal/pkg/idempotency"
	"github.com/hireline/hireline/internal/pkg/instrument"
	"github.com/hireline/hireline/internal/pkg/jwt"
	"github.com/hireline/hireline/internal/pkg/storage"
	"github.com/hireline/hireline/internal/pkg/uid"
	"github.com/hireline/hireline/internal/pkg/validator"
)

type UserRegisteredEvent struct {
	UserID   int64
	Email    string
	FullName string
	Role     string
}

type PasswordChangedEvent struct {
	UserID int64
	Email  string
}

type repoMessaging interface {
	PublishUserRegistered(ctx context.Context, msg UserRegisteredEvent) error
	PublishPasswordChanged(ctx context.Context, msg PasswordChangedEvent) error
}

type repoDB interface {
	GetAccountByID(ctx context.Context, id int64) (*entity.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*entity.Account, error)
	GetAccountLoginInfo(ctx context.Context, email, phone string) (*entity.AccountLoginInfo, error)
	GetAccountCredential(ctx context.Context, accountID int64) (*entity.AccountCredential, error)
	ListAccounts(ctx context.Context, filter entity.AccountListFilter) ([]entity.Account, int64, error)

	CreateAccount(ctx context.Context, acc entity.NewAccount, hash string) error

	UpdatePassword(ctx context.Context, accountID int64, hash string) error
	UpdateProfile(ctx context.Context, accountID int64, fullName, phone string) error
	UpdateResumeURL(ctx context.Context, accountID int64, resumeURL string) error
}

type otpStore interface {
	Upsert(ctx context.Context, ch entity.OtpChallenge) error
	Find(ctx context.Context, email string) (*entity.OtpChallenge, error)
	IncrementAttempts(ctx context.Context, email string) (int64, error)
	MarkVerified(ctx context.Context, email string) error
	Delete(ctx context.Context, email string) error
}

type notifier interface {
	SendOtp(ctx context.Context, to, code, expiresIn string) error
}

type OtpCoder interface {
	Generate() (string, error)
	Lifetime() time.Duration
}

type Usecase struct {
	repoDB        repoDB
	otpStore      otpStore
	repoMessaging repoMessaging
	notifier      notifier
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	storage       storage.Storage
	password      hash.Hash
	hmac          hash.Hash
	uid           uid.NumberID
	objectID      uid.StringID
	otpCoder      OtpCoder
	clock         clock.Clocker
	accessJWT     jwt.JWT
	refreshJWT    jwt.JWT
	ins           instrument.Instrumentation
	enforcer      *casbin.Enforcer
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	OtpStore      otpStore
	RepoMessaging repoMessaging
	Notifier      notifier
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	Storage       storage.Storage
	Password      hash.Hash
	HMAC          hash.Hash
	UID           uid.NumberID
	ObjectID      uid.StringID
	OtpCoder      OtpCoder
	Clock         clock.Clocker
	AccessJWT     jwt.JWT
	RefreshJWT    jwt.JWT
	Instrument    instrument.Instrumentation
	Enforcer      *casbin.Enforcer
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		otpStore:      dep.OtpStore,
		repoMessaging: dep.RepoMessaging,
		notifier:      dep.Notifier,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		storage:       dep.Storage,
		password:      dep.Password,
		hmac:          dep.HMAC,
		uid:           dep.UID,
		objectID:      dep.ObjectID,
		otpCoder:      dep.OtpCoder,
		clock:         dep.Clock,
		accessJWT:     dep.AccessJWT,
		refreshJWT:    dep.RefreshJWT,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) maxOtpAttempts() int64 {
	if v := s.cfg.GetInt("modules.identity.otp_max_attempts"); v > 0 {
		return int64(v)
	}
	return 3
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	return clm, nil
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.enforcer.Enforce(clm.UserRole, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.Subject, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}

func newIncorrectCode(remaining int64) error {
	return goerror.NewInvalidInput(nil,
		"otp", "Incorrect OTP",
		"remaining_attempts", strconv.FormatInt(remaining, 10),
	)
}

// issueChallenge generates a fresh code, stores it (replacing any previous
// challenge for the email) and emails it synchronously. The notifier is the
// only unbounded I/O in the request path; on failure the stored challenge
// survives so the client can simply retry.
func (s *Usecase) issueChallenge(ctx context.Context, email string) error {
	code, err := s.otpCoder.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return goerror.NewServer(err)
	}

	// Only the HMAC digest is stored; a cache dump never exposes live codes.
	digest, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to digest otp code", "error", err)
		return goerror.NewServer(err)
	}

	now := s.clock.Now()
	lifetime := s.otpCoder.Lifetime()

	if err := s.otpStore.Upsert(ctx, entity.OtpChallenge{
		Email:     email,
		Code:      string(digest),
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to store otp challenge", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.notifier.SendOtp(ctx, email, code, lifetime.String()); err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp email", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

// checkChallenge runs the verification state machine for a submitted code.
// When consume is true a matching code deletes the challenge; otherwise the
// challenge is marked verified for a follow-up step.
func (s *Usecase) checkChallenge(ctx context.Context, email, code string, consume bool) error {
	ch, err := s.otpStore.Find(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("No OTP requested for this email", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to find otp challenge", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	if ch.Verified {
		return goerror.NewBusiness("OTP already verified", goerror.CodeConflict)
	}

	maxAttempts := s.maxOtpAttempts()

	if ch.Expired(s.clock.Now()) {
		if err := s.otpStore.Delete(ctx, email); err != nil {
			slog.WarnContext(ctx, "failed to delete expired otp challenge", "email", email, "error", err)
		}
		return goerror.NewBusiness("OTP has expired, request a new one", goerror.CodeInvalidInput)
	}

	if ch.Attempts >= maxAttempts {
		if err := s.otpStore.Delete(ctx, email); err != nil {
			slog.WarnContext(ctx, "failed to delete exhausted otp challenge", "email", email, "error", err)
		}
		return goerror.NewBusiness("Too many attempts, request a new OTP", goerror.CodeTooManyRequest)
	}

	if !s.hmac.Verify(ch.Code, code) {
		attempts, err := s.otpStore.IncrementAttempts(ctx, email)
		if err != nil {
			slog.ErrorContext(ctx, "failed to record otp attempt", "email", email, "error", err)
			return goerror.NewServer(err)
		}

		if attempts >= maxAttempts {
			if err := s.otpStore.Delete(ctx, email); err != nil {
				slog.WarnContext(ctx, "failed to delete exhausted otp challenge", "email", email, "error", err)
			}
		}

		remaining := maxAttempts - attempts
		if remaining < 0 {
			remaining = 0
		}
		return newIncorrectCode(remaining)
	}

	if consume {
		if err := s.otpStore.Delete(ctx, email); err != nil {
			slog.ErrorContext(ctx, "failed to delete verified otp challenge", "email", email, "error", err)
			return goerror.NewServer(err)
		}
		return nil
	}

	if err := s.otpStore.MarkVerified(ctx, email); err != nil {
		slog.ErrorContext(ctx, "failed to mark otp challenge verified", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
