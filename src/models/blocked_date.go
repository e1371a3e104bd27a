package models

import "time"

// BlockedDate rows are the canonical availability set for a unit. The whole
// set is replaced by the sync pipeline; nothing else writes this table.
type BlockedDate struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	UnitID uint   `gorm:"uniqueIndex:idx_unit_date" json:"unit_id"`
	Date   string `gorm:"uniqueIndex:idx_unit_date;size:10" json:"date"`

	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
}
