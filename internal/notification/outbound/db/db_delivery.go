package db

import (
	"context"

	"github.com/shandysiswandi/storefront/internal/notification/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/pgutil"
	"github.com/shandysiswandi/storefront/internal/pkg/valueobject"
)

const (
	// A redelivered message lands on the existing row; its status tells the
	// caller whether the SMS already went out.
	queryEnsureSMSDelivery = `
		INSERT INTO notification_sms_deliveries (id, reference, phone_number, provider, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (reference) DO UPDATE SET updated_at = now()
		RETURNING id, reference, phone_number, provider, COALESCE(provider_message_id, ''),
			status, attempts, COALESCE(last_error, ''), metadata`

	queryUpdateSMSDelivery = `
		UPDATE notification_sms_deliveries
		SET status = $2, attempts = $3, provider_message_id = NULLIF($4, ''),
			last_error = NULLIF($5, ''), updated_at = now()
		WHERE id = $1`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSMSDelivery(row rowScanner) (*entity.SMSDelivery, error) {
	var d entity.SMSDelivery
	if err := row.Scan(&d.ID, &d.Reference, &d.PhoneNumber, &d.Provider, &d.ProviderMessageID,
		&d.Status, &d.Attempts, &d.LastError, &d.Metadata); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DB) EnsureSMSDelivery(ctx context.Context, in entity.CreateSMSDelivery) (_ *entity.SMSDelivery, err error) {
	ctx, span := s.startSpan(ctx, "EnsureSMSDelivery")
	defer func() { pgutil.EndSpan(span, err) }()

	meta := in.Metadata
	if meta == nil {
		meta = valueobject.JSONMap{}
	}

	d, err := scanSMSDelivery(s.conn.QueryRow(ctx, queryEnsureSMSDelivery,
		in.ID, in.Reference, in.PhoneNumber, in.Provider, entity.DeliveryStatusQueued, meta))
	if err != nil {
		return nil, pgutil.MapError(err)
	}

	return d, nil
}

func (s *DB) UpdateSMSDelivery(ctx context.Context, u entity.UpdateSMSDelivery) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateSMSDelivery")
	defer func() { pgutil.EndSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryUpdateSMSDelivery, u.ID, u.Status, u.Attempts, u.ProviderMessageID, u.LastError)
	if err != nil {
		return pgutil.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
