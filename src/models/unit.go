package models

import "cbe/src/types"

type Unit struct {
	ID          uint             `gorm:"primarykey" json:"id"`
	Name        string           `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	NightlyRate float64          `json:"nightly_rate_usd,omitempty"`
	MaxGuests   uint             `gorm:"default:2" json:"max_guests,omitempty"`
	ListingURL  *string          `json:"listing_url,omitempty"`
	CalendarURL string           `json:"calendar_url,omitempty"`
	ImageURLs   types.JSONBArray `json:"image_urls,omitempty"`
	Status      types.UnitStatus `gorm:"default:'active'" json:"status,omitempty"`

	types.Timestamps
}
