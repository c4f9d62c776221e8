package health

import (
	"context"
	"time"
)

// Pinger is anything that can confirm its backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	Store   Pinger
	Timeout time.Duration
}

// NewService constructs a health service checking store.
func NewService(store Pinger) *Service {
	return &Service{Store: store, Timeout: 2 * time.Second}
}

// Status reports whether the store answered within the timeout.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	if s == nil || s.Store == nil {
		return map[string]any{"ok": false, "store": "not configured"}, false
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		return map[string]any{"ok": false, "store": err.Error()}, false
	}
	return map[string]any{"ok": true}, true
}
