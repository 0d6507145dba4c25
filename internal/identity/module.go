package identity

import (
	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hireline/hireline/internal/identity/inbound"
	"github.com/hireline/hireline/internal/identity/outbound/db"
	"github.com/hireline/hireline/internal/identity/outbound/email"
	"github.com/hireline/hireline/internal/identity/outbound/mq"
	"github.com/hireline/hireline/internal/identity/outbound/otpcache"
	"github.com/hireline/hireline/internal/identity/usecase"
	"github.com/hireline/hireline/internal/pkg/clock"
	"github.com/hireline/hireline/internal/pkg/config"
	"github.com/hireline/hireline/internal/pkg/goroutine"
	"github.com/hireline/hireline/internal/pkg/hash"
	"github.com/hireline/hireline/internal/pkg/idempotency"
	"github.com/hireline/hireline/internal/pkg/instrument"
	"github.com/hireline/hireline/internal/pkg/jwt"
	"github.com/hireline/hireline/internal/pkg/mail"
	"github.com/hireline/hireline/internal/pkg/messaging"
	"github.com/hireline/hireline/internal/pkg/router"
	"github.com/hireline/hireline/internal/pkg/storage"
	"github.com/hireline/hireline/internal/pkg/uid"
	"github.com/hireline/hireline/internal/pkg/validator"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	CacheConn   *redis.Client              `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Enforcer    *casbin.Enforcer           `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Storage     storage.Storage            `validate:"required"`
	Mail        mail.Mail                  `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	ObjectID    uid.StringID               `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	Password    hash.Hash                  `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	OtpCoder    usecase.OtpCoder           `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	AccessJWT   jwt.JWT                    `validate:"required"`
	RefreshJWT  jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)
	otpStore := otpcache.NewStore(dep.CacheConn, dep.Instrument,
		dep.Config.GetMinute("modules.identity.otp_retention_minutes"))
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	notifier := email.NewNotifier(dep.Mail, dep.Instrument,
		dep.Config.GetString("modules.identity.otp_email_from"))

	uc := usecase.New(usecase.Dependency{
		RepoDB:        repoDB,
		OtpStore:      otpStore,
		RepoMessaging: repoMsg,
		Notifier:      notifier,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Storage:       dep.Storage,
		Password:      dep.Password,
		HMAC:          dep.HMAC,
		UID:           dep.UID,
		ObjectID:      dep.ObjectID,
		OtpCoder:      dep.OtpCoder,
		Clock:         dep.Clock,
		AccessJWT:     dep.AccessJWT,
		RefreshJWT:    dep.RefreshJWT,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
