package waf

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aridelmo/argus/internal/models"
)

func setupWAFTestDB(t *testing.T) *gorm.DB {
	// Use a unique in-memory database per test run to avoid shared state.
	dsn := fmt.Sprintf("file:waf_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Rule{}, &models.WhitelistEntry{}, &models.AuditRecord{}, &models.Setting{}))
	return db
}

func TestRuleStore_AddAndMatch(t *testing.T) {
	db := setupWAFTestDB(t)
	store, err := NewRuleStore(db)
	require.NoError(t, err)

	rule, created, err := store.Add(`drop\s+table`, models.RuleOriginManual)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, rule.UUID)

	match, ok := store.Match("'; DROP TABLE users; --")
	require.True(t, ok)
	assert.Equal(t, `drop\s+table`, match.Pattern)
}

func TestRuleStore_AddIdempotent(t *testing.T) {
	db := setupWAFTestDB(t)
	store, err := NewRuleStore(db)
	require.NoError(t, err)

	first, created, err := store.Add("(?i)xss_pattern", models.RuleOriginLearned)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := store.Add("(?i)xss_pattern", models.RuleOriginLearned)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.UUID, second.UUID)

	rules, err := store.List()
	require.NoError(t, err)
	assert.Len(t, rules, 1)
	assert.Equal(t, 1, store.Len())
}

func TestRuleStore_AddInvalidPattern(t *testing.T) {
	db := setupWAFTestDB(t)
	store, err := NewRuleStore(db)
	require.NoError(t, err)

	_, _, err = store.Add("([unclosed", models.RuleOriginManual)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.Equal(t, 0, store.Len())
}

func TestRuleStore_Remove(t *testing.T) {
	db := setupWAFTestDB(t)
	store, err := NewRuleStore(db)
	require.NoError(t, err)

	rule, _, err := store.Add("badness", models.RuleOriginManual)
	require.NoError(t, err)

	require.NoError(t, store.Remove(rule.UUID))
	assert.Equal(t, 0, store.Len())
	_, ok := store.Match("badness")
	assert.False(t, ok)

	assert.ErrorIs(t, store.Remove("missing"), ErrRuleNotFound)
}

func TestRuleStore_ReloadConverges(t *testing.T) {
	db := setupWAFTestDB(t)
	store, err := NewRuleStore(db)
	require.NoError(t, err)

	// A sibling instance sharing the database learns a rule.
	sibling, err := NewRuleStore(db)
	require.NoError(t, err)
	_, _, err = sibling.Add("(?i)union\\s+select", models.RuleOriginLearned)
	require.NoError(t, err)

	_, ok := store.Match("UNION SELECT password FROM users")
	assert.False(t, ok)

	require.NoError(t, store.Reload())
	_, ok = store.Match("UNION SELECT password FROM users")
	assert.True(t, ok)
}

func TestRuleStore_OnChange(t *testing.T) {
	db := setupWAFTestDB(t)
	store, err := NewRuleStore(db)
	require.NoError(t, err)

	fired := 0
	store.OnChange(func() { fired++ })

	_, _, err = store.Add("a", models.RuleOriginManual)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	// Idempotent insert does not fire.
	_, _, err = store.Add("a", models.RuleOriginManual)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}
