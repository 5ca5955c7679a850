package app

import (
	"fmt"

	"github.com/shandysiswandi/storefront/internal/accounts"
	"github.com/shandysiswandi/storefront/internal/notification"
)

// initModules mounts the modules switched on under modules.<name>.enabled.
func (a *App) initModules() error {
	if a.config.GetBool("modules.accounts.enabled") {
		if err := accounts.New(accounts.Dependency{
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			Enforcer:   a.casbin,
			Router:     a.router,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			SessionID:  a.oid,
			HMAC:       a.hmac,
			Password:   a.password,
			Phone:      a.phone,
			OTP:        a.otp,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			return fmt.Errorf("accounts: %w", err)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			DBConn:      a.dbConn,
			Messaging:   a.messaging,
			SMS:         a.sms,
			Idempotency: a.idemp,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			UUID:        a.uuid,
			Clock:       a.clock,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
		}); err != nil {
			return fmt.Errorf("notification: %w", err)
		}
	}

	return nil
}
