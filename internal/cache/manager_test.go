package cache

import (
	"testing"
	"time"

	"github.com/dmmcquay/nogo/internal/config"
	"github.com/dmmcquay/nogo/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, Key("describePosition", "pos"), Key("describePosition", "pos"))
	assert.NotEqual(t, Key("describePosition", "pos"), Key("listLegalMoves", "pos"))
	// Part boundaries matter.
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.Len(t, Key("x"), 64)
}

func TestManagerDisabled(t *testing.T) {
	m := NewManager(config.CacheConfig{Enabled: false}, logging.NewNopLogger())
	require.Nil(t, m)

	m.Put("k", "v")
	_, ok := m.Get("k")
	assert.False(t, ok)
	assert.Equal(t, Stats{}, m.Stats())
}

func TestManagerGetPut(t *testing.T) {
	m := NewManager(config.CacheConfig{Enabled: true, MaxItems: 2}, logging.NewNopLogger())
	require.NotNil(t, m)

	m.Put("a", `{"height":3}`)
	got, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, `{"height":3}`, got)

	m.Put("b", "2")
	m.Put("c", "3")
	_, ok = m.Get("a")
	assert.False(t, ok, "item limit evicts the oldest analysis")

	st := m.Stats()
	assert.Equal(t, 2, st.Items)
	assert.Equal(t, int64(2), st.Size)
}

func TestManagerTTL(t *testing.T) {
	m := NewManager(config.CacheConfig{Enabled: true, TTLSeconds: 60}, logging.NewNopLogger())
	now := time.Now()
	m.now = func() time.Time { return now }

	m.Put("k", "v")
	now = now.Add(59 * time.Second)
	_, ok := m.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = m.Get("k")
	assert.False(t, ok, "entry older than the TTL expires")
	assert.Zero(t, m.Stats().Items)
}
