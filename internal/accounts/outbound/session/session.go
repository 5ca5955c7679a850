// Package session keeps login sessions in redis, one hash per session id.
package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyPrefix = "accounts:session:"

	fieldState       = "state"
	fieldOTPID       = "otp_id"
	fieldPhoneNumber = "phone_number"
	fieldEmail       = "email"
	fieldUserID      = "user_id"
)

const defaultTTL = 2 * time.Hour

var ErrEmptySessionID = errors.New("session: empty session id")

// Store persists entity.LoginSession values under the HMAC of the session id.
type Store struct {
	client redis.Cmdable
	hasher hash.Hash
	ttl    time.Duration
	ins    instrument.Instrumentation
}

// NewStore returns a Store whose entries live for ttl after the last save.
// A non-positive ttl falls back to two hours.
func NewStore(client redis.Cmdable, hasher hash.Hash, ttl time.Duration, ins instrument.Instrumentation) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{client: client, hasher: hasher, ttl: ttl, ins: ins}
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("accounts.outbound.session").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Store) key(sid string) (string, error) {
	if sid == "" {
		return "", ErrEmptySessionID
	}
	h, err := s.hasher.Hash(sid)
	if err != nil {
		return "", err
	}
	return keyPrefix + string(h), nil
}

// Get loads the session for sid. An unknown or corrupted session comes back
// as a fresh session in the start state.
func (s *Store) Get(ctx context.Context, sid string) (_ *entity.LoginSession, err error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer func() { s.endSpan(span, err) }()

	key, err := s.key(sid)
	if err != nil {
		return nil, err
	}

	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	return decode(values), nil
}

// Save replaces the stored session and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sid string, sess *entity.LoginSession) (err error) {
	ctx, span := s.startSpan(ctx, "Save")
	defer func() { s.endSpan(span, err) }()

	key, err := s.key(sid)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, encode(sess))
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

func (s *Store) Delete(ctx context.Context, sid string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { s.endSpan(span, err) }()

	key, err := s.key(sid)
	if err != nil {
		return err
	}

	return s.client.Del(ctx, key).Err()
}

func encode(sess *entity.LoginSession) map[string]any {
	values := map[string]any{fieldState: string(sess.State)}
	if sess.OTPID > 0 {
		values[fieldOTPID] = strconv.FormatInt(sess.OTPID, 10)
	}
	if sess.PhoneNumber != "" {
		values[fieldPhoneNumber] = sess.PhoneNumber
	}
	if sess.Email != "" {
		values[fieldEmail] = sess.Email
	}
	if sess.UserID > 0 {
		values[fieldUserID] = strconv.FormatInt(sess.UserID, 10)
	}
	return values
}

func decode(values map[string]string) *entity.LoginSession {
	state := entity.LoginState(values[fieldState])
	if !state.Valid() {
		return entity.NewLoginSession()
	}

	sess := &entity.LoginSession{
		State:       state,
		PhoneNumber: values[fieldPhoneNumber],
		Email:       values[fieldEmail],
	}
	if v, ok := values[fieldOTPID]; ok {
		sess.OTPID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := values[fieldUserID]; ok {
		sess.UserID, _ = strconv.ParseInt(v, 10, 64)
	}

	return sess
}
