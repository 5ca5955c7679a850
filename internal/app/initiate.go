package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goroutine"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/shandysiswandi/storefront/internal/pkg/phone"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
)

// configPath resolves CONFIG_PATH, then the container mount, then the
// working directory when LOCAL=true.
func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	if os.Getenv("LOCAL") == "true" {
		return "./config/config.yaml"
	}
	return "/config/config.yaml"
}

func (a *App) initConfig() error {
	cfg, err := config.NewViper(configPath())
	if err != nil {
		return err
	}
	a.config = cfg
	a.onClose("config", func(context.Context) error { return cfg.Close() })

	if tz := cfg.GetString("app.tz"); tz != "" {
		if err := os.Setenv("TZ", tz); err != nil {
			return fmt.Errorf("set TZ: %w", err)
		}
	}
	return nil
}

func (a *App) initInstrument() error {
	c := a.config
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          c.GetBool("instrument.enabled"),
		ServiceName:      cmp.Or(c.GetString("instrument.service_name"), "storefront"),
		ServiceVersion:   c.GetString("instrument.service_version"),
		Environment:      c.GetString("instrument.env"),
		OTLPEndpoint:     c.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       c.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: c.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  c.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       c.GetArray("instrument.log_mask_fields"),
		LogLevel:         c.GetString("instrument.log_level"),
	})
	if err != nil {
		return err
	}
	a.ins = ins
	a.onClose("instrument", ins.Shutdown)
	return nil
}

func (a *App) initLibraries() error {
	c := a.config

	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(c.GetInt("app.server.max_goroutine"))
	a.hmac = hash.NewHMACSHA256(c.GetString("hash.hmac.secret"))
	a.password = hash.NewPassword(
		hash.NewArgon2id(c.GetString("hash.argon2id.pepper")),
		hash.NewBcrypt(c.GetInt("hash.bcrypt.cost"), c.GetString("hash.bcrypt.pepper")),
	)
	a.phone = phone.NewParser(c.GetString("modules.accounts.default_region"))
	a.otp = otp.NewRandom()

	v, vErr := validator.NewV10Validator()
	snow, sErr := uid.NewSnowflake()
	oid, oErr := uid.NewObjectIDGenerator()
	if err := errors.Join(vErr, sErr, oErr); err != nil {
		return err
	}
	a.validator, a.uid, a.oid = v, snow, oid
	return nil
}

func (a *App) initJWT() error {
	token, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		return err
	}
	a.jwt = token
	return nil
}
