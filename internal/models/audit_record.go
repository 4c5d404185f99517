package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actions persisted on an audit record. A pipeline run that fails on
// infrastructure is recorded with ActionError and must be treated as a hard
// failure by the enforcement point.
const (
	ActionAllow = "ALLOW"
	ActionBlock = "BLOCK"
	ActionError = "ERROR"
)

// AuditRecord is the durable trace of one completed pipeline run. Records are
// append-only; the single permitted mutation is an override flipping Action
// from BLOCK to ALLOW.
type AuditRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	Method   string `json:"method"`
	Path     string `json:"path" gorm:"type:text"`
	Protocol string `json:"protocol"`
	Body     string `json:"request_body" gorm:"type:text"`

	Mode          string `json:"mode"` // enforcement mode snapshot for this run
	Stage1Matched bool   `json:"stage1_matched"`
	Stage1Rule    string `json:"stage1_rule,omitempty" gorm:"type:text"`
	Stage2Checked bool   `json:"stage2_checked"`

	IsMalicious bool     `json:"is_malicious"`
	Score       *float64 `json:"score,omitempty"`
	Perplexity  *float64 `json:"perplexity,omitempty"`
	Reason      string   `json:"reason" gorm:"type:text"`

	Action      string `json:"action_taken"`
	Overridden  bool   `json:"overridden"`
	LearnedRule string `json:"learned_rule,omitempty" gorm:"type:text"`
}

// BeforeCreate generates a UUID for new audit records.
func (a *AuditRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	return nil
}
