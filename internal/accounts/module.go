package accounts

import (
	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/storefront/internal/accounts/inbound"
	"github.com/shandysiswandi/storefront/internal/accounts/outbound/db"
	"github.com/shandysiswandi/storefront/internal/accounts/outbound/mq"
	"github.com/shandysiswandi/storefront/internal/accounts/outbound/session"
	"github.com/shandysiswandi/storefront/internal/accounts/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/shandysiswandi/storefront/internal/pkg/phone"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  redis.Cmdable              `validate:"required"`
	Enforcer   casbin.IEnforcer           `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Broker           `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	SessionID  uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Password   hash.Hash                  `validate:"required"`
	Phone      *phone.Parser              `validate:"required"`
	OTP        otp.Generator              `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAcc := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	sessions := session.NewStore(dep.CacheConn, dep.HMAC,
		dep.Config.GetMinute("modules.accounts.session.ttl_minutes"), dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAcc,
		RepoSession:   sessions,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Phone:         dep.Phone,
		OTP:           dep.OTP,
		Password:      dep.Password,
		UID:           dep.UID,
		UUID:          dep.UUID,
		SessionID:     dep.SessionID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
