// Package app assembles the storefront service from configuration and runs
// it until a termination signal arrives.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"slices"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goroutine"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/idempotency"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/shandysiswandi/storefront/internal/pkg/phone"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
	"github.com/shandysiswandi/storefront/internal/pkg/sms"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config config.Config
	ins    instrument.Instrumentation

	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	password  hash.Hash
	uid       uid.NumberID
	oid       uid.StringID // session ids
	uuid      uid.StringID
	phone     *phone.Parser
	otp       otp.Generator
	jwt       jwt.JWT

	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	messaging messaging.Broker
	sms       sms.Sender
	casbin    *casbin.Enforcer

	router     *router.Router
	httpServer *http.Server

	// closers run in reverse registration order.
	closers []closer
}

// New builds every dependency in order and exits the process if any of them
// cannot be created. Resources opened before the failure are released first.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{ctx: ctx, cancel: cancel}

	steps := []struct {
		name string
		run  func() error
	}{
		{"config", a.initConfig},
		{"instrument", a.initInstrument},
		{"libraries", a.initLibraries},
		{"jwt", a.initJWT},
		{"database", a.initDatabase},
		{"cache", a.initCache},
		{"messaging", a.initMessaging},
		{"sms", a.initSMS},
		{"casbin", a.initCasbin},
		{"http", a.initHTTPServer},
		{"modules", a.initModules},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			slog.Error("startup failed", "step", step.name, "error", err)
			cancel()
			a.release(context.Background())
			os.Exit(1)
		}
	}

	return a
}

func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// release runs the registered closers newest first and reports how many failed.
func (a *App) release(ctx context.Context) int {
	var failed int
	for _, c := range slices.Backward(a.closers) {
		if err := c.fn(ctx); err != nil {
			failed++
			slog.ErrorContext(ctx, "failed to release resource", "name", c.name, "error", err)
		}
	}
	return failed
}
