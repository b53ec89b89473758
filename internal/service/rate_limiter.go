package service

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RateLimiter limita la frecuencia de requests por clave.
type RateLimiter interface {
	Allow(key string) bool
}

const (
	defaultRateWindow = 15 * time.Minute
	defaultRateMax    = 5

	rateCleanupInterval = time.Hour
)

type rateEntry struct {
	count       int
	windowStart time.Time
}

// FixedWindowRateLimiter cuenta requests por clave dentro de una ventana
// fija en memoria. El estado no sobrevive reinicios ni se comparte entre
// instancias; para despliegues multi-instancia usar la variante Redis.
type FixedWindowRateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string]rateEntry
	logger  *zap.Logger
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

func NewFixedWindowRateLimiter(window time.Duration, max int, logger *zap.Logger) *FixedWindowRateLimiter {
	if window <= 0 {
		window = defaultRateWindow
	}
	if max <= 0 {
		max = defaultRateMax
	}
	return &FixedWindowRateLimiter{
		window:  window,
		max:     max,
		entries: make(map[string]rateEntry),
		logger:  logger,
		now:     time.Now,
		done:    make(chan struct{}),
	}
}

// Allow registra un intento para la clave y devuelve false al exceder el
// maximo dentro de la ventana. El contador no se incrementa tras el rechazo.
func (l *FixedWindowRateLimiter) Allow(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	entry, ok := l.entries[key]
	if !ok || now.Sub(entry.windowStart) > l.window {
		l.entries[key] = rateEntry{count: 1, windowStart: now}
		return true
	}
	if entry.count >= l.max {
		if l.logger != nil {
			l.logger.Warn("rate limit exceeded", zap.String("key", key))
		}
		return false
	}
	entry.count++
	l.entries[key] = entry
	return true
}

// StartCleanup purga entradas con ventana vencida en segundo plano.
func (l *FixedWindowRateLimiter) StartCleanup() {
	go func() {
		ticker := time.NewTicker(rateCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.cleanup()
			case <-l.done:
				return
			}
		}
	}()
}

// Stop detiene la limpieza periodica.
func (l *FixedWindowRateLimiter) Stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *FixedWindowRateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now().UTC()
	for key, entry := range l.entries {
		if now.Sub(entry.windowStart) > l.window {
			delete(l.entries, key)
		}
	}
}
