package models

import (
	"cbe/src/types"
	"time"
)

type BookingRequest struct {
	ID              uint                `gorm:"primarykey" json:"id"`
	UnitID          uint                `gorm:"index" json:"unit_id,omitempty"`
	GuestName       string              `json:"guest_name,omitempty"`
	GuestEmail      string              `json:"guest_email,omitempty"`
	GuestPhone      string              `json:"guest_phone,omitempty"`
	CheckInDate     string              `gorm:"size:10" json:"check_in_date,omitempty"`
	CheckOutDate    string              `gorm:"size:10" json:"check_out_date,omitempty"`
	TotalPrice      float64             `json:"total_price_usd,omitempty"`
	SpecialRequests *string             `json:"special_requests,omitempty"`
	Status          types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`

	// LastSyncAtSubmission records how fresh the unit's availability was when
	// the guest submitted, for staleness auditing.
	LastSyncAtSubmission time.Time  `json:"last_sync_at_submission,omitempty"`
	ApprovedBy           *string    `json:"approved_by,omitempty"`
	ApprovedAt           *time.Time `json:"approved_at,omitempty"`
	RejectedAt           *time.Time `json:"rejected_at,omitempty"`
	RejectionReason      *string    `json:"rejection_reason,omitempty"`

	Unit *Unit `gorm:"foreignKey:unit_id" json:"unit,omitempty"`

	types.Timestamps
}
