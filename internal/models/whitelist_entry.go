package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WhitelistEntry records a request body manually exempted after review.
// Entries are only ever created by overriding a blocked audit record.
type WhitelistEntry struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UUID             string    `json:"uuid" gorm:"uniqueIndex"`
	SourceRecordUUID string    `json:"source_record_uuid" gorm:"index"`
	Body             string    `json:"body" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID for new whitelist entries.
func (w *WhitelistEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if w.UUID == "" {
		w.UUID = uuid.NewString()
	}
	return nil
}
