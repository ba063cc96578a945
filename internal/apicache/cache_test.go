package apicache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute)
	c.Set("k", []byte("v"))

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := New(time.Minute)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.Set("k", []byte("v"))

	base = base.Add(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok, "entry should survive within the TTL")

	base = base.Add(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should expire past the TTL")
	assert.Zero(t, c.Len(), "expired entry is removed on access")
}

func TestCache_ZeroTTLDisables(t *testing.T) {
	c := New(0)
	c.Set("k", []byte("v"))
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			for j := 0; j < 100; j++ {
				c.Set(key, []byte("v"))
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, c.Len())
}
