package entity

import (
	"github.com/shandysiswandi/storefront/internal/pkg/valueobject"
)

// DeliveryStatus is stored as a smallint. A failed row is retried when the
// broker redelivers the event.
type DeliveryStatus int16

const (
	DeliveryStatusQueued DeliveryStatus = iota + 1
	DeliveryStatusSent
	DeliveryStatusFailed
)

var deliveryStatusNames = map[DeliveryStatus]string{
	DeliveryStatusQueued: "queued",
	DeliveryStatusSent:   "sent",
	DeliveryStatusFailed: "failed",
}

func (s DeliveryStatus) String() string {
	if name, ok := deliveryStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// SMSDelivery is the log row of one outbound SMS. Reference is unique; for
// login codes it is the otp request uuid.
type SMSDelivery struct {
	ID                int64
	Reference         string
	PhoneNumber       string
	Provider          string
	ProviderMessageID string
	Status            DeliveryStatus
	Attempts          int
	LastError         string
	Metadata          valueobject.JSONMap
}

type CreateSMSDelivery struct {
	ID          int64
	Reference   string
	PhoneNumber string
	Provider    string
	Metadata    valueobject.JSONMap
}

type UpdateSMSDelivery struct {
	ID                int64
	Status            DeliveryStatus
	Attempts          int
	ProviderMessageID string
	LastError         string
}
