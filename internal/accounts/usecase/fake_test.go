package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/shandysiswandi/storefront/internal/pkg/phone"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
	"github.com/stretchr/testify/require"
)

const (
	testSID    = "a3f1c2d4e5b6a7980112233445566778899aabbccddeeff00112233445566778"
	renewedSID = "0f0e0d0c0b0a09080706050403020100f0e0d0c0b0a090807060504030201000"
)

type fixedSID string

func (f fixedSID) Generate() string { return string(f) }

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// fakeDB keeps rows in memory with the same usability rule as the SQL.
type fakeDB struct {
	mu       sync.Mutex
	settings *entity.OTPSettings
	requests []*entity.OTPRequest
	users    map[int64]*entity.User

	errGet       error
	errCreateReq error
	errCreateUsr error
}

func newFakeDB() *fakeDB {
	st := entity.DefaultOTPSettings()
	return &fakeDB{settings: &st, users: map[int64]*entity.User{}}
}

func usable(r *entity.OTPRequest, since time.Time) bool {
	return !r.Used && r.SentAt.After(since)
}

func (f *fakeDB) GetOTPSettings(context.Context) (*entity.OTPSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errGet != nil {
		return nil, f.errGet
	}
	if f.settings == nil {
		return nil, goerror.ErrNotFound
	}
	st := *f.settings
	return &st, nil
}

func (f *fakeDB) CreateOTPSettings(_ context.Context, st entity.OTPSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings != nil {
		return goerror.ErrConflict
	}
	f.settings = &st
	return nil
}

func (f *fakeDB) UpdateOTPSettings(_ context.Context, st entity.OTPSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		return goerror.ErrNotFound
	}
	f.settings = &st
	return nil
}

func (f *fakeDB) find(match func(r *entity.OTPRequest) bool) (*entity.OTPRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var newest *entity.OTPRequest
	for _, r := range f.requests {
		if match(r) && (newest == nil || r.SentAt.After(newest.SentAt)) {
			newest = r
		}
	}
	if newest == nil {
		return nil, goerror.ErrNotFound
	}
	cp := *newest
	return &cp, nil
}

func (f *fakeDB) GetUsableOTPRequestByPhone(_ context.Context, phone string, since time.Time) (*entity.OTPRequest, error) {
	return f.find(func(r *entity.OTPRequest) bool { return r.PhoneNumber == phone && usable(r, since) })
}

func (f *fakeDB) GetUsableOTPRequestByID(_ context.Context, id int64, since time.Time) (*entity.OTPRequest, error) {
	return f.find(func(r *entity.OTPRequest) bool { return r.ID == id && usable(r, since) })
}

func (f *fakeDB) GetUsableOTPRequestByUUID(_ context.Context, uuid string, since time.Time) (*entity.OTPRequest, error) {
	return f.find(func(r *entity.OTPRequest) bool { return r.UUID == uuid && usable(r, since) })
}

func (f *fakeDB) CreateOTPRequestIfIdle(_ context.Context, req entity.OTPRequest, since time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errCreateReq != nil {
		return f.errCreateReq
	}
	for _, r := range f.requests {
		if r.PhoneNumber == req.PhoneNumber && usable(r, since) {
			return goerror.ErrConflict
		}
	}
	f.requests = append(f.requests, &req)
	return nil
}

func (f *fakeDB) ConsumeOTPRequest(_ context.Context, id int64, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.ID == id && usable(r, since) {
			r.Used = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) request(id int64) entity.OTPRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.ID == id {
			return *r
		}
	}
	return entity.OTPRequest{}
}

func (f *fakeDB) findUser(match func(u *entity.User) bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) GetUserByPhone(_ context.Context, phone string) (*entity.User, error) {
	return f.findUser(func(u *entity.User) bool { return u.PhoneNumber != "" && u.PhoneNumber == phone })
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	return f.findUser(func(u *entity.User) bool { return u.Email != "" && strings.EqualFold(u.Email, email) })
}

func (f *fakeDB) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	return f.findUser(func(u *entity.User) bool { return u.ID == id })
}

func (f *fakeDB) CreateUser(_ context.Context, in entity.NewUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errCreateUsr != nil {
		err := f.errCreateUsr
		f.errCreateUsr = nil
		return err
	}
	for _, u := range f.users {
		if u.PhoneNumber == in.PhoneNumber || u.Username == in.Username {
			return goerror.ErrConflict
		}
	}
	f.users[in.ID] = &entity.User{ID: in.ID, Username: in.Username, PhoneNumber: in.PhoneNumber, Status: in.Status}
	return nil
}

func (f *fakeDB) addUser(u entity.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = &u
}

func (f *fakeDB) userCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeSessions struct {
	mu   sync.Mutex
	data map[string]entity.LoginSession
	err  error
}

func (f *fakeSessions) Get(_ context.Context, sid string) (*entity.LoginSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	sess, ok := f.data[sid]
	if !ok {
		return entity.NewLoginSession(), nil
	}
	return &sess, nil
}

func (f *fakeSessions) Save(_ context.Context, sid string, sess *entity.LoginSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.data[sid] = *sess
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.data, sid)
	return nil
}

func (f *fakeSessions) has(sid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[sid]
	return ok
}

func (f *fakeSessions) get(sid string) entity.LoginSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[sid]
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []OTPRequestedEvent
	err    error
}

func (f *fakeMessaging) PublishOTPRequested(_ context.Context, msg OTPRequestedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return f.err
}

type fixedCode struct {
	code string
	err  error
}

func (f fixedCode) Generate(otp.CodeType, int) (string, error) {
	return f.code, f.err
}

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return 1000 + s.n
}

type fakeEnforcer struct {
	allow bool
	err   error
	got   []any
}

func (f *fakeEnforcer) Enforce(rvals ...any) (bool, error) {
	f.got = rvals
	return f.allow, f.err
}

var errBoom = errors.New("boom")

type harness struct {
	uc       *Usecase
	db       *fakeDB
	sessions *fakeSessions
	mq       *fakeMessaging
	clock    *clock.Manual
	enforcer *fakeEnforcer
	jwt      jwt.JWT
	password hash.Hash
}

const testConfig = `
modules:
  accounts:
    default_region: IR
    fill_username_with_phone_number: %s
    login_redirect_url: /account/
`

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	code         string
	fillUsername bool
}

func withCode(code string) harnessOption {
	return func(c *harnessConfig) { c.code = code }
}

func withoutPhoneUsername() harnessOption {
	return func(c *harnessConfig) { c.fillUsername = false }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	hc := harnessConfig{code: "48213", fillUsername: true}
	for _, opt := range opts {
		opt(&hc)
	}

	fill := "false"
	if hc.fillUsername {
		fill = "true"
	}
	cfg, err := config.NewViperFromBytes("yaml", []byte(fmt.Sprintf(testConfig, fill)))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	clk := clock.NewManual(t0)
	token, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("0123456789abcdef", 4)),
		Issuer:    "storefront",
		Audiences: []string{"storefront"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	h := &harness{
		db:       newFakeDB(),
		sessions: &fakeSessions{data: map[string]entity.LoginSession{}},
		mq:       &fakeMessaging{},
		clock:    clk,
		enforcer: &fakeEnforcer{allow: true},
		jwt:      token,
		password: hash.NewPassword(hash.NewArgon2id(""), hash.NewBcrypt(4, "")),
	}

	h.uc = New(Dependency{
		RepoDB:        h.db,
		RepoSession:   h.sessions,
		RepoMessaging: h.mq,
		Validator:     v,
		Config:        cfg,
		Phone:         phone.NewParser(cfg.GetString("modules.accounts.default_region")),
		OTP:           fixedCode{code: hc.code},
		Password:      h.password,
		UID:           &seqID{},
		UUID:          uid.NewUUID(),
		SessionID:     fixedSID(renewedSID),
		Clock:         clk,
		JWT:           token,
		Instrument:    instrument.NewNoop(),
		Enforcer:      h.enforcer,
	})

	return h
}

func (h *harness) addEmailUser(t *testing.T, id int64, email, password string, status entity.UserStatus) {
	t.Helper()
	hashed, err := h.password.Hash(password)
	require.NoError(t, err)
	h.db.addUser(entity.User{ID: id, Username: "u" + email, Email: email, Password: string(hashed), Status: status})
}

func requireCode(t *testing.T, err error, code goerror.Code, msg string) {
	t.Helper()
	require.Error(t, err)

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, code, gerr.Code(), "error: %v", err)
	if msg != "" {
		require.Equal(t, msg, gerr.Msg())
	}
}

func requireField(t *testing.T, err error, field, msg string) {
	t.Helper()
	requireCode(t, err, goerror.CodeInvalidInput, "")

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, msg, gerr.Fields()[field])
}
