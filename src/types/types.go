package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBArray []any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// JSONBArrayOf boxes a string slice for storage.
func JSONBArrayOf(values []string) JSONBArray {
	arr := make(JSONBArray, 0, len(values))
	for _, v := range values {
		arr = append(arr, v)
	}
	return arr
}

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type UnitStatus string

const (
	UNIT_ACTIVE   UnitStatus = "active"
	UNIT_INACTIVE UnitStatus = "inactive"
)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_APPROVED  BookingStatus = "approved"
	BOOKING_REJECTED  BookingStatus = "rejected"
	BOOKING_PAID      BookingStatus = "paid"
	BOOKING_CANCELLED BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PAYMENT_PENDING   PaymentStatus = "pending"
	PAYMENT_COMPLETED PaymentStatus = "completed"
	PAYMENT_FAILED    PaymentStatus = "failed"
	PAYMENT_REFUNDED  PaymentStatus = "refunded"
)

type SyncStatus string

const (
	SYNC_IN_PROGRESS SyncStatus = "in_progress"
	SYNC_SUCCESS     SyncStatus = "success"
	SYNC_FAILED      SyncStatus = "failed"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateBookingRequestBody struct {
	UnitID          uint    `json:"unit_id" binding:"required"`
	GuestName       string  `json:"guest_name" binding:"required,min=2"`
	GuestEmail      string  `json:"guest_email" binding:"required,email"`
	GuestPhone      string  `json:"guest_phone" binding:"required,min=6,max=20"`
	CheckInDate     string  `json:"check_in_date" binding:"required,isodate"`
	CheckOutDate    string  `json:"check_out_date" binding:"required,isodate"`
	SpecialRequests *string `json:"special_requests,omitempty" binding:"omitempty,max=1000"`
}

type RejectBookingRequestBody struct {
	RejectionReason string `json:"rejection_reason" binding:"required,min=2,max=1000"`
}

type CreatePreauthRequestBody struct {
	BookingID uint `json:"booking_id" binding:"required"`
}

type ManualSyncRequestBody struct {
	UnitID *uint `json:"unit_id,omitempty"`
}

type CreateUnitRequestBody struct {
	Name        string   `json:"name" binding:"required,min=2"`
	Description *string  `json:"description,omitempty" binding:"omitempty,max=5000"`
	NightlyRate float64  `json:"nightly_rate_usd" binding:"required,gt=0"`
	MaxGuests   uint     `json:"max_guests,omitempty" binding:"omitempty,gt=0"`
	ListingURL  *string  `json:"listing_url,omitempty" binding:"omitempty,url"`
	CalendarURL string   `json:"calendar_url" binding:"required,url"`
	ImageURLs   []string `json:"image_urls,omitempty" binding:"omitempty,dive,url"`
	Status      string   `json:"status,omitempty" binding:"omitempty,oneof=active inactive"`
}

type UpdateUnitRequestBody struct {
	Name        *string  `json:"name,omitempty" binding:"omitempty,min=2"`
	Description *string  `json:"description,omitempty" binding:"omitempty,max=5000"`
	NightlyRate *float64 `json:"nightly_rate_usd,omitempty" binding:"omitempty,gt=0"`
	MaxGuests   *uint    `json:"max_guests,omitempty" binding:"omitempty,gt=0"`
	ListingURL  *string  `json:"listing_url,omitempty" binding:"omitempty,url"`
	CalendarURL *string  `json:"calendar_url,omitempty" binding:"omitempty,url"`
	ImageURLs   []string `json:"image_urls,omitempty" binding:"omitempty,dive,url"`
	Status      *string  `json:"status,omitempty" binding:"omitempty,oneof=active inactive"`
}

// BancardWebhookEvent is the provider's settlement notification. The handler
// matches on Status and ignores event types it does not know about.
type BancardWebhookEvent struct {
	ExternalTransactionID string `json:"external_transaction_id"`
	Status                string `json:"status"`
	Reason                string `json:"reason,omitempty"`
}
