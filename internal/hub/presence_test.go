package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryOverwrite(t *testing.T) {
	registry := NewRegistry()

	registry.Set(1, 100)
	registry.Set(1, 200)

	connID, exists := registry.Get(1)
	assert.True(t, exists)
	assert.Equal(t, int64(200), connID)
}

func TestRegistryStaleDisconnectKeepsNewEntry(t *testing.T) {
	registry := NewRegistry()

	// reconnect overwrites, then the old connection's disconnect arrives late
	registry.Set(1, 100)
	registry.Set(1, 200)
	registry.RemoveByConn(100)

	connID, exists := registry.Get(1)
	assert.True(t, exists)
	assert.Equal(t, int64(200), connID)

	registry.RemoveByConn(200)

	_, exists = registry.Get(1)
	assert.False(t, exists)
}

func TestRegistryRemoveUnknownConnIsNoOp(t *testing.T) {
	registry := NewRegistry()
	registry.Set(1, 100)

	registry.RemoveByConn(999)

	connID, exists := registry.Get(1)
	assert.True(t, exists)
	assert.Equal(t, int64(100), connID)
}

func TestRegistryGetUnknownUser(t *testing.T) {
	registry := NewRegistry()

	_, exists := registry.Get(42)
	assert.False(t, exists)
}
