package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hireline/hireline/internal/pkg/clock"
	"github.com/hireline/hireline/internal/pkg/config"
	"github.com/hireline/hireline/internal/pkg/goroutine"
	"github.com/hireline/hireline/internal/pkg/hash"
	"github.com/hireline/hireline/internal/pkg/idempotency"
	"github.com/hireline/hireline/internal/pkg/instrument"
	"github.com/hireline/hireline/internal/pkg/jwt"
	"github.com/hireline/hireline/internal/pkg/mail"
	"github.com/hireline/hireline/internal/pkg/messaging"
	"github.com/hireline/hireline/internal/pkg/otp"
	"github.com/hireline/hireline/internal/pkg/router"
	"github.com/hireline/hireline/internal/pkg/storage"
	"github.com/hireline/hireline/internal/pkg/uid"
	"github.com/hireline/hireline/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine  *goroutine.Manager
	validator  validator.Validator
	clock      clock.Clocker
	hmac       hash.Hash
	password   hash.Hash
	uid        uid.NumberID
	uuid       uid.StringID
	oid        uid.StringID
	otpCoder   otp.Coder
	accessJWT  jwt.JWT
	refreshJWT jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging
	storage   storage.Storage
	casbin    *casbin.Enforcer

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initStorage()
	app.initMessaging()
	app.initCasbin()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
