package service

import (
	"context"
	"testing"

	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDefaultEnabled(t *testing.T) {
	svc := NewSettingsService(store.NewMemoryStore(nil), logger.Nop())

	enabled, err := svc.Enabled(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestSetEnabledPersistsAndNotifiesListeners(t *testing.T) {
	memStore := store.NewMemoryStore(nil)
	svc := NewSettingsService(memStore, logger.Nop())

	var seen []bool
	svc.OnChange(func(enabled bool) { seen = append(seen, enabled) })

	require.NoError(t, svc.SetEnabled(context.Background(), false))
	require.NoError(t, svc.SetEnabled(context.Background(), true))

	assert.Equal(t, []bool{false, true}, seen)

	stored, err := memStore.GetEnabled(context.Background())
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestEnabledServedFromCacheAfterWrite(t *testing.T) {
	memStore := store.NewMemoryStore(nil)
	svc := NewSettingsService(memStore, logger.Nop())

	require.NoError(t, svc.SetEnabled(context.Background(), false))

	enabled, err := svc.Enabled(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)
}
