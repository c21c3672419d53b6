package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/dmmcquay/nogo/internal/config"
	"github.com/dmmcquay/nogo/internal/logging"
)

// Manager memoizes rendered analyses of positions. Keys come from Key so the
// same position reached through a file path or inline content shares an entry.
type Manager struct {
	cache  *LRU[timedEntry]
	logger logging.ContextLogger
	ttl    time.Duration
	now    func() time.Time
}

type timedEntry struct {
	value  string
	stored time.Time
}

// NewManager returns nil when caching is disabled. A nil *Manager misses on
// every Get and ignores Put.
func NewManager(cfg config.CacheConfig, logger logging.ContextLogger) *Manager {
	if !cfg.Enabled {
		return nil
	}
	return &Manager{
		cache:  NewLRU[timedEntry](cfg.MaxItems, cfg.MaxSizeBytes),
		logger: logger,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
		now:    time.Now,
	}
}

// Key hashes the parts that determine an analysis: the tool, the canonical
// position text and any tool arguments.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (m *Manager) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}

	e, ok := m.cache.Get(key)
	if !ok {
		return "", false
	}
	if m.ttl > 0 && m.now().Sub(e.stored) > m.ttl {
		m.cache.Delete(key)
		m.logger.Debug("Cache entry expired", "key", key)
		return "", false
	}
	return e.value, true
}

func (m *Manager) Put(key, value string) {
	if m == nil {
		return
	}
	m.cache.Put(key, timedEntry{value: value, stored: m.now()}, int64(len(value)))
	m.logger.Debug("Cached analysis", "key", key, "size", len(value))
}

func (m *Manager) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	return m.cache.Stats()
}
