package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/storefront/internal/pkg/idempotency"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/pkg/migrate"
	"github.com/shandysiswandi/storefront/internal/pkg/pgxcasbin"
	"github.com/shandysiswandi/storefront/internal/pkg/sms"
	"google.golang.org/api/option"
)

// Admins hold role "admin"; grants use "*" as a wildcard object or action.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// ping retries check with exponential backoff for up to about 6 seconds, so a
// database or redis that is still starting does not abort the boot.
func (a *App) ping(what string, check func(context.Context) error) error {
	b := retry.WithMaxRetries(5, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(a.ctx, b, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := check(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ping %s: %w", what, err)
	}
	return nil
}

func (a *App) initDatabase() error {
	c := a.config
	dsn := c.GetString("database.url")

	if c.GetBool("database.auto_migrate") {
		if err := migrate.Up(dsn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return err
	}
	pc.MaxConns = c.GetInt32("database.pool.max_conns")
	pc.MinConns = c.GetInt32("database.pool.min_conns")
	pc.MaxConnLifetime = c.GetSecond("database.pool.max_conn_lifetime_seconds")
	pc.MaxConnIdleTime = c.GetSecond("database.pool.max_conn_idle_seconds")
	pc.HealthCheckPeriod = c.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, pc)
	if err != nil {
		return err
	}
	a.dbConn = pool
	a.onClose("database", func(context.Context) error { pool.Close(); return nil })

	return a.ping("database", pool.Ping)
}

func (a *App) initCache() error {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		return err
	}

	rdb := redis.NewClient(opt)
	a.cacheConn = rdb
	a.idemp = idempotency.New(rdb)
	a.onClose("redis", func(context.Context) error { return rdb.Close() })

	return a.ping("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
}

func (a *App) nsqConfig() messaging.NSQConfig {
	c := a.config

	producer := nsq.NewConfig()
	producer.DialTimeout = c.GetSecond("messaging.nsq.producer_config.dial_timeout_seconds")
	producer.ReadTimeout = c.GetSecond("messaging.nsq.producer_config.read_timeout_seconds")
	producer.WriteTimeout = c.GetSecond("messaging.nsq.producer_config.write_timeout_seconds")

	consumer := nsq.NewConfig()
	consumer.MaxInFlight = c.GetInt("messaging.nsq.consumer_config.max_in_flight")
	consumer.MaxAttempts = c.GetUint16("messaging.nsq.consumer_config.max_attempts")
	consumer.LookupdPollInterval = c.GetSecond("messaging.nsq.consumer_config.lookupd_poll_interval_seconds")
	consumer.DefaultRequeueDelay = c.GetSecond("messaging.nsq.consumer_config.default_requeue_delay_seconds")
	consumer.MaxRequeueDelay = c.GetSecond("messaging.nsq.consumer_config.max_requeue_delay_seconds")

	return messaging.NSQConfig{
		ProducerAddr:         c.GetString("messaging.nsq.producer_addr"),
		ConsumerNSQDAddrs:    c.GetArray("messaging.nsq.consumer_nsqd_addrs"),
		ConsumerLookupdAddrs: c.GetArray("messaging.nsq.consumer_lookupd_addrs"),
		ProducerConfig:       producer,
		ConsumerConfig:       consumer,
	}
}

func (a *App) pubsubConfig() messaging.PubSubConfig {
	var opts []option.ClientOption
	if a.config.GetBool("messaging.pubsub.without_auth") {
		opts = append(opts, option.WithoutAuthentication())
	}
	if ep := strings.TrimSpace(a.config.GetString("messaging.pubsub.endpoint")); ep != "" {
		opts = append(opts, option.WithEndpoint(ep))
	}
	return messaging.PubSubConfig{
		ProjectID:     a.config.GetString("messaging.pubsub.project_id"),
		ClientOptions: opts,
	}
}

func (a *App) initMessaging() error {
	c := a.config
	driver := c.GetString("messaging.driver")

	broker, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: a.nsqConfig(),
		Kafka: messaging.KafkaConfig{
			Brokers: c.GetArray("messaging.kafka.brokers"),
			Dialer: &kafka.Dialer{
				ClientID:  c.GetString("messaging.kafka.client_id"),
				Timeout:   c.GetSecond("messaging.kafka.dial_timeout_seconds"),
				DualStack: true,
			},
		},
		NATS: messaging.NATSConfig{
			URL: c.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(c.GetString("messaging.nats.name")),
				nats.MaxReconnects(c.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(c.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(c.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(c.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		PubSub: a.pubsubConfig(),
	})
	if err != nil {
		return fmt.Errorf("driver %q: %w", driver, err)
	}

	a.messaging = broker
	a.onClose("messaging", func(context.Context) error { return broker.Close() })
	return nil
}

func (a *App) initSMS() error {
	c := a.config
	sender, err := sms.New(a.ctx, sms.Config{
		Driver: c.GetString("sms.driver"),
		Pinpoint: sms.PinpointConfig{
			ApplicationID: c.GetString("sms.pinpoint.application_id"),
			Region:        c.GetString("sms.pinpoint.region"),
			AccessKey:     c.GetString("sms.pinpoint.access_key"),
			SecretKey:     c.GetString("sms.pinpoint.secret_key"),
			SenderID:      c.GetString("sms.pinpoint.sender_id"),
			MessageType:   c.GetString("sms.pinpoint.message_type"),
			EntityID:      c.GetString("sms.pinpoint.entity_id"),
			TemplateID:    c.GetString("sms.pinpoint.template_id"),
			Timeout:       c.GetSecond("sms.pinpoint.timeout_seconds"),
		},
		Webhook: sms.WebhookConfig{
			URL:      c.GetString("sms.webhook.url"),
			Username: c.GetString("sms.webhook.username"),
			Password: c.GetString("sms.webhook.password"),
			Timeout:  c.GetSecond("sms.webhook.timeout_seconds"),
		},
	})
	if err != nil {
		return err
	}
	a.sms = sender
	return nil
}

// initCasbin loads RBAC policy from postgres and keeps it in sync across
// replicas through LISTEN/NOTIFY.
func (a *App) initCasbin() error {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return err
	}

	var opts []pgxcasbin.Option
	if table := strings.TrimSpace(a.config.GetString("casbin.table")); table != "" {
		opts = append(opts, pgxcasbin.WithTableName(table))
	}

	e, err := casbin.NewEnforcer(m, pgxcasbin.NewAdapter(a.dbConn, opts...))
	if err != nil {
		return err
	}

	w, err := pgxcasbin.NewWatcher(a.ctx, a.dbConn, a.config.GetString("casbin.channel"), a.uuid.Generate())
	if err != nil {
		return err
	}
	a.onClose("casbin watcher", func(context.Context) error { w.Close(); return nil })

	if err := w.SetUpdateCallback(pgxcasbin.ReloadCallback(e)); err != nil {
		return err
	}
	if err := e.SetWatcher(w); err != nil {
		return err
	}
	e.EnableAutoSave(true)
	e.EnableAutoNotifyWatcher(true)

	a.casbin = e
	return nil
}
