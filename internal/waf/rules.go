package waf

import (
	"errors"
	"regexp"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/aridelmo/argus/internal/logger"
	"github.com/aridelmo/argus/internal/models"
)

var (
	ErrInvalidPattern = errors.New("pattern is not a valid regular expression")
	ErrRuleNotFound   = errors.New("rule not found")
)

// compiledRule pairs a persisted rule with its compiled, case-insensitive
// matcher.
type compiledRule struct {
	UUID    string
	Pattern string
	re      *regexp.Regexp
}

// RuleStore is the shared set of regex patterns used by the fast pre-filter.
// The database is the source of truth; an in-memory compiled snapshot serves
// concurrent readers without blocking. Sibling instances sharing the same
// database converge by calling Reload after a learning event, or lazily via
// their own learning traffic.
type RuleStore struct {
	db *gorm.DB

	mu       sync.RWMutex
	compiled []compiledRule

	changeMu sync.Mutex
	onChange []func()
}

// NewRuleStore creates a RuleStore and loads the current rule set.
func NewRuleStore(db *gorm.DB) (*RuleStore, error) {
	s := &RuleStore{db: db}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	// Matching is case-insensitive regardless of how the pattern was written;
	// a redundant (?i) in the stored pattern is harmless.
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, ErrInvalidPattern
	}
	return re, nil
}

// Reload replaces the in-memory snapshot with the current database contents.
// Rules that no longer compile are skipped with a warning instead of taking
// the whole set down.
func (s *RuleStore) Reload() error {
	var rules []models.Rule
	if err := s.db.Order("id asc").Find(&rules).Error; err != nil {
		return err
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := compilePattern(r.Pattern)
		if err != nil {
			logger.WithComponent("rules").WithField("pattern", r.Pattern).
				Warn("skipping stored rule that no longer compiles")
			continue
		}
		compiled = append(compiled, compiledRule{UUID: r.UUID, Pattern: r.Pattern, re: re})
	}

	s.mu.Lock()
	s.compiled = compiled
	s.mu.Unlock()
	return nil
}

// Add validates, persists and activates a pattern. Inserting an existing
// pattern is a no-op so learned rules can be promoted idempotently. Returns
// the stored rule and whether it was newly created.
func (s *RuleStore) Add(pattern, origin string) (models.Rule, bool, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return models.Rule{}, false, err
	}

	var existing models.Rule
	err = s.db.Where("pattern = ?", pattern).First(&existing).Error
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Rule{}, false, err
	}

	rule := models.Rule{Pattern: pattern, Origin: origin, CreatedAt: time.Now()}
	if err := s.db.Create(&rule).Error; err != nil {
		// A concurrent insert of the same pattern loses the race on the
		// unique index; treat it as the idempotent case.
		if s.db.Where("pattern = ?", pattern).First(&existing).Error == nil {
			return existing, false, nil
		}
		return models.Rule{}, false, err
	}

	s.mu.Lock()
	s.compiled = append(s.compiled, compiledRule{UUID: rule.UUID, Pattern: rule.Pattern, re: re})
	s.mu.Unlock()

	s.notifyChange()
	return rule, true, nil
}

// Remove deletes a rule by UUID.
func (s *RuleStore) Remove(uuid string) error {
	res := s.db.Where("uuid = ?", uuid).Delete(&models.Rule{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRuleNotFound
	}

	s.mu.Lock()
	for i, r := range s.compiled {
		if r.UUID == uuid {
			s.compiled = append(s.compiled[:i], s.compiled[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notifyChange()
	return nil
}

// List returns all persisted rules.
func (s *RuleStore) List() ([]models.Rule, error) {
	var rules []models.Rule
	if err := s.db.Order("created_at desc").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Len reports the size of the active snapshot.
func (s *RuleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.compiled)
}

// OnChange registers a callback fired after every successful mutation. Used
// by sibling workers to refresh promptly after a learning event.
func (s *RuleStore) OnChange(fn func()) {
	s.changeMu.Lock()
	s.onChange = append(s.onChange, fn)
	s.changeMu.Unlock()
}

func (s *RuleStore) notifyChange() {
	s.changeMu.Lock()
	callbacks := make([]func(), len(s.onChange))
	copy(callbacks, s.onChange)
	s.changeMu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
