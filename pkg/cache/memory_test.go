package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReadYourWrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, nil)

	m.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryMiss(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, nil)

	_, ok := m.Get(ctx, "absent")
	assert.False(t, ok)
}

func TestMemoryPerEntryTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, nil)

	m.Set(ctx, "short", []byte("v"), 10*time.Millisecond)
	m.Set(ctx, "long", []byte("v"), time.Minute)

	time.Sleep(25 * time.Millisecond)

	_, ok := m.Get(ctx, "short")
	assert.False(t, ok, "entry past its own TTL must read as a miss")
	_, ok = m.Get(ctx, "long")
	assert.True(t, ok)
}

func TestMemoryZeroTTLNotStored(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, nil)

	m.Set(ctx, "k", []byte("v"), 0)
	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryDel(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, nil)

	m.Set(ctx, "k", []byte("v"), time.Minute)
	m.Del(ctx, "k")
	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryInvalidatePattern(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, nil)

	m.Set(ctx, "auth:ctx:u1:100", []byte("a"), time.Minute)
	m.Set(ctx, "auth:ctx:u1:200", []byte("b"), time.Minute)
	m.Set(ctx, "auth:ctx:u2:100", []byte("c"), time.Minute)

	m.InvalidatePattern(ctx, "auth:ctx:u1:*")

	_, ok := m.Get(ctx, "auth:ctx:u1:100")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "auth:ctx:u1:200")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "auth:ctx:u2:100")
	assert.True(t, ok, "keys outside the prefix must survive")
}
