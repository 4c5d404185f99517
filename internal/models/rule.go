package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rule origins. Manual rules arrive via the control plane or the seed file;
// learned rules are promoted from decision-service verdicts.
const (
	RuleOriginManual  = "manual"
	RuleOriginLearned = "learned"
)

// Rule stores a case-insensitive regex pattern used by the fast pre-filter.
// The pattern set is deduplicated via the unique index.
type Rule struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex"`
	Pattern   string    `json:"pattern" gorm:"uniqueIndex;type:text"`
	Origin    string    `json:"origin"` // "manual" or "learned"
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID for new rules.
func (r *Rule) BeforeCreate(tx *gorm.DB) (err error) {
	if r.UUID == "" {
		r.UUID = uuid.NewString()
	}
	return nil
}
