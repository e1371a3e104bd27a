package models

import (
	"cbe/src/types"
	"time"
)

// SyncRun is the audit log of one calendar synchronization attempt. Runs are
// created in_progress, flipped exactly once to success or failed, and never
// deleted.
type SyncRun struct {
	ID                uint             `gorm:"primarykey" json:"id"`
	UnitID            *uint            `gorm:"index" json:"unit_id,omitempty"`
	FeedURL           string           `json:"feed_url,omitempty"`
	Status            types.SyncStatus `gorm:"default:'in_progress'" json:"status,omitempty"`
	StartedAt         time.Time        `json:"started_at,omitempty"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`
	BlockedDatesFound *int             `json:"blocked_dates_found,omitempty"`
	ErrorMessage      *string          `json:"error_message,omitempty"`

	Unit *Unit `gorm:"foreignKey:unit_id" json:"-"`

	types.Timestamps
}
