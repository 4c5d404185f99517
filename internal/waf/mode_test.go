package waf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for raw, want := range map[string]Mode{
		"off":   ModeOff,
		"fast":  ModeFast,
		"full":  ModeFull,
		"FULL":  ModeFull,
		" off ": ModeOff,
	} {
		mode, err := ParseMode(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, mode)
	}

	_, err := ParseMode("block-everything")
	assert.ErrorIs(t, err, ErrInvalidMode)
	_, err = ParseMode("")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestModeController_SetBumpsVersion(t *testing.T) {
	db := setupWAFTestDB(t)
	ctrl, err := NewModeController(db, ModeFull)
	require.NoError(t, err)

	mode, version := ctrl.Snapshot()
	assert.Equal(t, ModeFull, mode)
	assert.Equal(t, uint64(0), version)

	_, err = ctrl.Set("fast")
	require.NoError(t, err)

	mode, version = ctrl.Snapshot()
	assert.Equal(t, ModeFast, mode)
	assert.Equal(t, uint64(1), version)
}

func TestModeController_InvalidModeRejected(t *testing.T) {
	db := setupWAFTestDB(t)
	ctrl, err := NewModeController(db, ModeFull)
	require.NoError(t, err)

	_, err = ctrl.Set("paranoid")
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Equal(t, ModeFull, ctrl.Current())
}

func TestModeController_PersistsAcrossRestart(t *testing.T) {
	db := setupWAFTestDB(t)
	ctrl, err := NewModeController(db, ModeFull)
	require.NoError(t, err)

	_, err = ctrl.Set("off")
	require.NoError(t, err)

	// Simulate a restart: a fresh controller over the same database.
	restarted, err := NewModeController(db, ModeFull)
	require.NoError(t, err)
	assert.Equal(t, ModeOff, restarted.Current())
}
