package models

import "time"

// Setting is a simple key/value row for runtime toggles that must survive a
// restart, such as the current enforcement mode.
type Setting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"uniqueIndex"`
	Value     string    `json:"value" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}
