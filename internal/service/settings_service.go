package service

import (
	"context"
	"sync"
	"time"

	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/store"

	gocache "github.com/patrickmn/go-cache"
)

const settingsCacheKey = "widget_enabled"

// ISettingsService owns the widget enable switch. Reads go through a
// short-lived cache so the widget bootstrap path does not hit the store
// on every page load.
type ISettingsService interface {
	Enabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error

	// OnChange registers a callback invoked after every successful
	// SetEnabled. Callbacks run synchronously in registration order.
	OnChange(fn func(enabled bool))
}

type settingsService struct {
	settings store.SettingsStore
	cache    *gocache.Cache
	logger   logger.ILogger

	mu        sync.Mutex
	listeners []func(bool)
}

func NewSettingsService(settings store.SettingsStore, log logger.ILogger) ISettingsService {
	return &settingsService{
		settings: settings,
		cache:    gocache.New(30*time.Second, time.Minute),
		logger:   log,
	}
}

func (s *settingsService) Enabled(ctx context.Context) (bool, error) {
	if cached, ok := s.cache.Get(settingsCacheKey); ok {
		return cached.(bool), nil
	}

	enabled, err := s.settings.GetEnabled(ctx)
	if err != nil {
		// Fail open: a flaky settings read should not take the widget down.
		s.logger.Warn("SettingsService", "Settings read failed, assuming enabled", map[string]interface{}{
			"error": err.Error(),
		})
		return true, nil
	}

	s.cache.Set(settingsCacheKey, enabled, gocache.DefaultExpiration)
	return enabled, nil
}

func (s *settingsService) SetEnabled(ctx context.Context, enabled bool) error {
	if err := s.settings.SetEnabled(ctx, enabled); err != nil {
		return err
	}

	s.cache.Set(settingsCacheKey, enabled, gocache.DefaultExpiration)

	s.mu.Lock()
	listeners := make([]func(bool), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(enabled)
	}

	s.logger.Info("SettingsService", "Widget enabled flag updated", map[string]interface{}{
		"enabled": enabled,
	})
	return nil
}

func (s *settingsService) OnChange(fn func(bool)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}
