package waf

import (
	"errors"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/aridelmo/argus/internal/models"
)

// Mode is the global enforcement mode. It changes only through an explicit
// operator command; there are no automatic transitions.
type Mode string

const (
	// ModeOff skips both stages; every request is allowed but still logged.
	ModeOff Mode = "off"
	// ModeFast runs only the pattern pre-filter. No new rules are learned.
	ModeFast Mode = "fast"
	// ModeFull runs the pre-filter and, when it passes, the decision service.
	ModeFull Mode = "full"
)

var ErrInvalidMode = errors.New("invalid mode: must be one of off, fast, full")

const modeSettingKey = "waf.mode"

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeOff:
		return ModeOff, nil
	case ModeFast:
		return ModeFast, nil
	case ModeFull:
		return ModeFull, nil
	default:
		return "", ErrInvalidMode
	}
}

// ModeController is a versioned configuration cell holding the enforcement
// mode. Each pipeline run snapshots it exactly once so a mid-flight change
// cannot produce an inconsistent partial execution. The value is persisted
// to the settings table so it survives restarts.
type ModeController struct {
	db *gorm.DB

	mu      sync.RWMutex
	mode    Mode
	version uint64
}

// NewModeController loads the persisted mode, falling back to the default.
func NewModeController(db *gorm.DB, fallback Mode) (*ModeController, error) {
	c := &ModeController{db: db, mode: fallback}

	var setting models.Setting
	err := db.Where("key = ?", modeSettingKey).First(&setting).Error
	switch {
	case err == nil:
		if mode, perr := ParseMode(setting.Value); perr == nil {
			c.mode = mode
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first boot, keep the fallback
	default:
		return nil, err
	}

	return c, nil
}

// Snapshot returns the current mode and its version.
func (c *ModeController) Snapshot() (Mode, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode, c.version
}

// Current returns the current mode.
func (c *ModeController) Current() Mode {
	mode, _ := c.Snapshot()
	return mode
}

// Set validates, persists and applies a new mode atomically.
func (c *ModeController) Set(raw string) (Mode, error) {
	mode, err := ParseMode(raw)
	if err != nil {
		return "", err
	}

	setting := models.Setting{Key: modeSettingKey, Value: string(mode), UpdatedAt: time.Now()}
	var existing models.Setting
	err = c.db.Where("key = ?", modeSettingKey).First(&existing).Error
	switch {
	case err == nil:
		existing.Value = string(mode)
		existing.UpdatedAt = setting.UpdatedAt
		if err := c.db.Save(&existing).Error; err != nil {
			return "", err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := c.db.Create(&setting).Error; err != nil {
			return "", err
		}
	default:
		return "", err
	}

	c.mu.Lock()
	c.mode = mode
	c.version++
	c.mu.Unlock()
	return mode, nil
}
