package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/phone"
)

// GetOrCreateByPhone returns the user owning phoneNumber, creating an
// active one on first sight.
func (s *Usecase) GetOrCreateByPhone(ctx context.Context, phoneNumber string) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "GetOrCreateByPhone")
	defer span.End()

	masked := phone.Mask(phoneNumber)

	user, err := s.repoDB.GetUserByPhone(ctx, phoneNumber)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by phone", "phone_number", masked, "error", err)
		return nil, goerror.NewServer(err)
	}

	id := s.uid.Generate()
	username := "user_" + strconv.FormatInt(id, 10)
	if s.cfg.GetBool("modules.accounts.fill_username_with_phone_number") {
		username = phoneNumber
	}

	newUser := entity.NewUser{
		ID:          id,
		Username:    username,
		PhoneNumber: phoneNumber,
		Status:      entity.UserStatusActive,
	}

	err = s.repoDB.CreateUser(ctx, newUser)
	if errors.Is(err, goerror.ErrConflict) {
		// created by a concurrent login for the same phone
		user, err = s.repoDB.GetUserByPhone(ctx, phoneNumber)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo re-read user by phone", "phone_number", masked, "error", err)
			return nil, goerror.NewServer(err)
		}
		return user, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "phone_number", masked, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user account created by phone login", "user_id", id, "phone_number", masked)

	return &entity.User{
		ID:          newUser.ID,
		Username:    newUser.Username,
		PhoneNumber: newUser.PhoneNumber,
		Status:      newUser.Status,
	}, nil
}

// GetByEmail looks the user up case-insensitively. A miss is
// goerror.ErrNotFound.
func (s *Usecase) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "GetByEmail")
	defer span.End()

	user, err := s.repoDB.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	return user, nil
}
