package rulefile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aridelmo/argus/internal/models"
	"github.com/aridelmo/argus/internal/waf"
)

func setupRuleStore(t *testing.T) *waf.RuleStore {
	dsn := fmt.Sprintf("file:rulefile_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Rule{}))

	store, err := waf.NewRuleStore(db)
	require.NoError(t, err)
	return store
}

func writeSeedFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	store := setupRuleStore(t)
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeSeedFile(t, path, "rules:\n  - \"drop\\\\s+table\"\n  - \"<script\"\n")

	added, err := Load(path, store)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, store.Len())

	// Loading again adds nothing.
	added, err = Load(path, store)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestLoadSkipsInvalidPatterns(t *testing.T) {
	store := setupRuleStore(t)
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeSeedFile(t, path, "rules:\n  - \"[unclosed\"\n  - \"valid\"\n  - \"\"\n")

	added, err := Load(path, store)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestLoadMissingFile(t *testing.T) {
	store := setupRuleStore(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), store)
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	store := setupRuleStore(t)
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeSeedFile(t, path, "rules: [unterminated\n")

	_, err := Load(path, store)
	assert.Error(t, err)
}

func TestWatchReloadsOnChange(t *testing.T) {
	store := setupRuleStore(t)
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeSeedFile(t, path, "rules:\n  - \"first\"\n")

	_, err := Load(path, store)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, Watch(ctx, path, store))

	writeSeedFile(t, path, "rules:\n  - \"first\"\n  - \"second\"\n")

	assert.Eventually(t, func() bool {
		return store.Len() == 2
	}, 2*time.Second, 20*time.Millisecond)
}
