package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"applyflow/internal/config"
	"applyflow/internal/logging"
	"applyflow/internal/logging/types"
)

// HostLimiter throttles page visits per host so repeated applications to the
// same board stay polite. Limiters for hosts not seen recently are evicted.
type HostLimiter struct {
	config   *config.Config
	limiters map[string]*hostEntry
	mu       sync.Mutex
	logger   types.Logger

	cleanupTicker *time.Ticker
	stopCleanup   chan bool
}

type hostEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewHostLimiter creates a per-host rate limiter
func NewHostLimiter(cfg *config.Config) *HostLimiter {
	hl := &HostLimiter{
		config:        cfg,
		limiters:      make(map[string]*hostEntry),
		logger:        logging.GetGlobalLogger(),
		cleanupTicker: time.NewTicker(5 * time.Minute),
		stopCleanup:   make(chan bool),
	}

	go hl.cleanupRoutine()

	return hl
}

// Wait blocks until a visit to the host is allowed or the context is done
func (hl *HostLimiter) Wait(ctx context.Context, host string) error {
	hl.mu.Lock()
	entry, exists := hl.limiters[host]
	if !exists {
		// Configured as visits per minute
		rps := rate.Limit(float64(hl.config.Engine.RateLimit) / 60.0)
		entry = &hostEntry{
			limiter: rate.NewLimiter(rps, 1),
		}
		hl.limiters[host] = entry

		hl.logger.Debug("Created new host rate limiter", map[string]interface{}{
			"host": host,
			"rate": float64(rps),
		})
	}
	entry.lastSeen = time.Now()
	hl.mu.Unlock()

	return entry.limiter.Wait(ctx)
}

// cleanupRoutine periodically removes limiters for hosts not seen recently
func (hl *HostLimiter) cleanupRoutine() {
	for {
		select {
		case <-hl.cleanupTicker.C:
			hl.cleanup()
		case <-hl.stopCleanup:
			hl.cleanupTicker.Stop()
			return
		}
	}
}

func (hl *HostLimiter) cleanup() {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for host, entry := range hl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(hl.limiters, host)
		}
	}
}

// Stop stops the limiter's cleanup routine
func (hl *HostLimiter) Stop() {
	hl.stopCleanup <- true
}
