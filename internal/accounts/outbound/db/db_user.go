package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/pgutil"
)

const (
	userColumns = `id, username, COALESCE(email, ''), COALESCE(phone_number, ''), COALESCE(password, ''), status`

	sqlGetUserByPhone = `SELECT ` + userColumns + ` FROM accounts_users WHERE phone_number = $1`
	sqlGetUserByEmail = `SELECT ` + userColumns + ` FROM accounts_users WHERE lower(email) = lower($1)`
	sqlGetUserByID    = `SELECT ` + userColumns + ` FROM accounts_users WHERE id = $1`

	sqlCreateUser = `INSERT INTO accounts_users (id, username, phone_number, status) VALUES ($1, $2, $3, $4)`
)

func (s *DB) GetUserByPhone(ctx context.Context, phone string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByPhone")
	defer func() { pgutil.EndSpan(span, err) }()

	user, err := scanUser(s.conn.QueryRow(ctx, sqlGetUserByPhone, phone))
	if err != nil {
		return nil, pgutil.MapError(err)
	}

	return user, nil
}

// GetUserByEmail matches email case-insensitively.
func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { pgutil.EndSpan(span, err) }()

	user, err := scanUser(s.conn.QueryRow(ctx, sqlGetUserByEmail, email))
	if err != nil {
		return nil, pgutil.MapError(err)
	}

	return user, nil
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { pgutil.EndSpan(span, err) }()

	user, err := scanUser(s.conn.QueryRow(ctx, sqlGetUserByID, id))
	if err != nil {
		return nil, pgutil.MapError(err)
	}

	return user, nil
}

func (s *DB) CreateUser(ctx context.Context, user entity.NewUser) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { pgutil.EndSpan(span, err) }()

	_, err = s.conn.Exec(ctx, sqlCreateUser, user.ID, user.Username, user.PhoneNumber, int16(user.Status))
	return pgutil.MapError(err)
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		user   entity.User
		status int16
	)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PhoneNumber, &user.Password, &status); err != nil {
		return nil, err
	}
	user.Status = entity.UserStatus(status)
	return &user, nil
}
