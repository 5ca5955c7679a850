package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/shandysiswandi/storefront/internal/pkg/pgutil"
)

const (
	sqlGetOTPSettings = `SELECT code_type, code_length, code_validity_seconds, case_sensitive, updated_at
FROM accounts_otp_settings WHERE id = 1`

	sqlCreateOTPSettings = `INSERT INTO accounts_otp_settings
(id, code_type, code_length, code_validity_seconds, case_sensitive, updated_at)
VALUES (1, $1, $2, $3, $4, $5)`

	sqlUpdateOTPSettings = `UPDATE accounts_otp_settings
SET code_type = $1, code_length = $2, code_validity_seconds = $3, case_sensitive = $4, updated_at = $5
WHERE id = 1`

	otpRequestColumns = `id, uuid::text, phone_number, code, used, sent_at`

	sqlGetUsableOTPRequestByPhone = `SELECT ` + otpRequestColumns + `
FROM accounts_otp_requests
WHERE phone_number = $1 AND used = false AND sent_at > $2
ORDER BY sent_at DESC, id DESC
LIMIT 1`

	sqlGetUsableOTPRequestByID = `SELECT ` + otpRequestColumns + `
FROM accounts_otp_requests
WHERE id = $1 AND used = false AND sent_at > $2`

	sqlGetUsableOTPRequestByUUID = `SELECT ` + otpRequestColumns + `
FROM accounts_otp_requests
WHERE uuid = $1::uuid AND used = false AND sent_at > $2`

	sqlLockPhone = `SELECT pg_advisory_xact_lock(hashtext($1))`

	sqlExistsUsableOTPRequest = `SELECT EXISTS (
SELECT 1 FROM accounts_otp_requests WHERE phone_number = $1 AND used = false AND sent_at > $2)`

	sqlCreateOTPRequest = `INSERT INTO accounts_otp_requests (id, uuid, phone_number, code, used, sent_at)
VALUES ($1, $2::uuid, $3, $4, false, $5)`

	sqlConsumeOTPRequest = `UPDATE accounts_otp_requests SET used = true
WHERE id = $1 AND used = false AND sent_at > $2`
)

func (s *DB) GetOTPSettings(ctx context.Context) (_ *entity.OTPSettings, err error) {
	ctx, span := s.startSpan(ctx, "GetOTPSettings")
	defer func() { pgutil.EndSpan(span, err) }()

	var (
		st       entity.OTPSettings
		codeType string
	)
	err = s.conn.QueryRow(ctx, sqlGetOTPSettings).
		Scan(&codeType, &st.CodeLength, &st.CodeValiditySeconds, &st.CaseSensitive, &st.UpdatedAt)
	if err != nil {
		return nil, pgutil.MapError(err)
	}
	st.CodeType = otp.CodeType(codeType)

	return &st, nil
}

func (s *DB) CreateOTPSettings(ctx context.Context, st entity.OTPSettings) (err error) {
	ctx, span := s.startSpan(ctx, "CreateOTPSettings")
	defer func() { pgutil.EndSpan(span, err) }()

	_, err = s.conn.Exec(ctx, sqlCreateOTPSettings,
		string(st.CodeType), st.CodeLength, st.CodeValiditySeconds, st.CaseSensitive, st.UpdatedAt)
	return pgutil.MapError(err)
}

func (s *DB) UpdateOTPSettings(ctx context.Context, st entity.OTPSettings) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateOTPSettings")
	defer func() { pgutil.EndSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, sqlUpdateOTPSettings,
		string(st.CodeType), st.CodeLength, st.CodeValiditySeconds, st.CaseSensitive, st.UpdatedAt)
	if err != nil {
		return pgutil.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

// GetUsableOTPRequestByPhone returns the newest unused request for phone
// sent after since.
func (s *DB) GetUsableOTPRequestByPhone(ctx context.Context, phone string, since time.Time) (_ *entity.OTPRequest, err error) {
	ctx, span := s.startSpan(ctx, "GetUsableOTPRequestByPhone")
	defer func() { pgutil.EndSpan(span, err) }()

	req, err := scanOTPRequest(s.conn.QueryRow(ctx, sqlGetUsableOTPRequestByPhone, phone, since))
	if err != nil {
		return nil, pgutil.MapError(err)
	}

	return req, nil
}

func (s *DB) GetUsableOTPRequestByID(ctx context.Context, id int64, since time.Time) (_ *entity.OTPRequest, err error) {
	ctx, span := s.startSpan(ctx, "GetUsableOTPRequestByID")
	defer func() { pgutil.EndSpan(span, err) }()

	req, err := scanOTPRequest(s.conn.QueryRow(ctx, sqlGetUsableOTPRequestByID, id, since))
	if err != nil {
		return nil, pgutil.MapError(err)
	}

	return req, nil
}

func (s *DB) GetUsableOTPRequestByUUID(ctx context.Context, uuid string, since time.Time) (_ *entity.OTPRequest, err error) {
	ctx, span := s.startSpan(ctx, "GetUsableOTPRequestByUUID")
	defer func() { pgutil.EndSpan(span, err) }()

	req, err := scanOTPRequest(s.conn.QueryRow(ctx, sqlGetUsableOTPRequestByUUID, uuid, since))
	if err != nil {
		return nil, pgutil.MapError(err)
	}

	return req, nil
}

// CreateOTPRequestIfIdle inserts req unless the phone already has a usable
// request sent after since, in which case goerror.ErrConflict is returned.
// Concurrent callers for the same phone are serialized by an advisory lock.
func (s *DB) CreateOTPRequestIfIdle(ctx context.Context, req entity.OTPRequest, since time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "CreateOTPRequestIfIdle")
	defer func() { pgutil.EndSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer pgutil.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, sqlLockPhone, req.PhoneNumber); err != nil {
		return pgutil.MapError(err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, sqlExistsUsableOTPRequest, req.PhoneNumber, since).Scan(&exists); err != nil {
		return pgutil.MapError(err)
	}
	if exists {
		return goerror.ErrConflict
	}

	if _, err := tx.Exec(ctx, sqlCreateOTPRequest, req.ID, req.UUID, req.PhoneNumber, req.Code, req.SentAt); err != nil {
		return pgutil.MapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return pgutil.MapError(err)
	}

	return nil
}

// ConsumeOTPRequest marks the request used if it is still usable. It
// reports false when another caller consumed it first or it expired.
func (s *DB) ConsumeOTPRequest(ctx context.Context, id int64, since time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeOTPRequest")
	defer func() { pgutil.EndSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, sqlConsumeOTPRequest, id, since)
	if err != nil {
		return false, pgutil.MapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

func scanOTPRequest(row pgx.Row) (*entity.OTPRequest, error) {
	var req entity.OTPRequest
	if err := row.Scan(&req.ID, &req.UUID, &req.PhoneNumber, &req.Code, &req.Used, &req.SentAt); err != nil {
		return nil, err
	}
	return &req, nil
}
