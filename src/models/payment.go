package models

import (
	"cbe/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	ID        uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	BookingID uint      `gorm:"uniqueIndex" json:"booking_id,omitempty"`
	Amount    float64   `json:"amount_usd,omitempty"`

	// ProviderTransactionID stays nil until the provider (or the stub)
	// assigns one; its presence is what makes preauth idempotent.
	ProviderTransactionID *string             `json:"provider_transaction_id,omitempty"`
	Status                types.PaymentStatus `gorm:"default:'pending'" json:"status,omitempty"`
	ProviderResponse      types.JSONB         `json:"provider_response,omitempty"`
	InitiatedAt           time.Time           `json:"initiated_at,omitempty"`
	CompletedAt           *time.Time          `json:"completed_at,omitempty"`
	FailedAt              *time.Time          `json:"failed_at,omitempty"`
	FailureReason         *string             `json:"failure_reason,omitempty"`

	Booking BookingRequest `gorm:"foreignKey:booking_id" json:"-"`

	types.Timestamps
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.InitiatedAt.IsZero() {
		p.InitiatedAt = time.Now().UTC()
	}
	return nil
}
