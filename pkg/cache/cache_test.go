package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGetSetJSON(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, nil)

	SetJSON(ctx, m, "p", payload{Name: "board", Count: 3}, time.Minute)

	var got payload
	require.True(t, GetJSON(ctx, m, "p", &got))
	assert.Equal(t, payload{Name: "board", Count: 3}, got)
}

func TestGetJSONCorruptEntryDeleted(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, nil)

	m.Set(ctx, "p", []byte("{not json"), time.Minute)

	var got payload
	assert.False(t, GetJSON(ctx, m, "p", &got))
	_, ok := m.Get(ctx, "p")
	assert.False(t, ok, "corrupt entry must be purged")
}

func TestTieredWithoutRemote(t *testing.T) {
	ctx := context.Background()
	tc := NewTiered(NewMemory(0, nil), nil, nil)

	tc.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := tc.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	tc.InvalidatePattern(ctx, "k*")
	_, ok = tc.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, tc.Close())
}

func TestTieredBothBackends(t *testing.T) {
	ctx := context.Background()
	remote, _ := newTestRedis(t)
	local := NewMemory(0, nil)
	tc := NewTiered(local, remote, nil)

	tc.Set(ctx, "auth:ctx:u1:1", []byte("v"), time.Minute)

	// Both tiers hold the value.
	_, ok := local.Get(ctx, "auth:ctx:u1:1")
	assert.True(t, ok)
	_, ok = remote.Get(ctx, "auth:ctx:u1:1")
	assert.True(t, ok)

	// Invalidation reaches both.
	tc.InvalidatePattern(ctx, "auth:ctx:u1:*")
	_, ok = local.Get(ctx, "auth:ctx:u1:1")
	assert.False(t, ok)
	_, ok = remote.Get(ctx, "auth:ctx:u1:1")
	assert.False(t, ok)
}

func TestTieredFallsBackToRemote(t *testing.T) {
	ctx := context.Background()
	remote, _ := newTestRedis(t)
	local := NewMemory(0, nil)
	tc := NewTiered(local, remote, nil)

	// Value present only in the remote tier, e.g. written by another
	// instance.
	remote.Set(ctx, "k", []byte("v"), time.Minute)

	got, ok := tc.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}
