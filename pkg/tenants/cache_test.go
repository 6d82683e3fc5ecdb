package tenants

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_ExpiredEntryNeverServed(t *testing.T) {
	now := time.Now()
	clk := func() time.Time { return now }
	c := NewCache(5*time.Minute, clk)

	c.Put("portal.acme.org", Tenant{ID: "t1"})
	_, ok := c.Get("portal.acme.org")
	assert.True(t, ok)

	now = now.Add(5 * time.Minute) // exactly at TTL: stale
	_, ok = c.Get("portal.acme.org")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(time.Minute, nil)
	c.Put("a.example", Tenant{ID: "a"})
	c.Put("b.example", Tenant{ID: "b"})

	c.ClearHost("a.example")
	_, ok := c.Get("a.example")
	assert.False(t, ok)
	_, ok = c.Get("b.example")
	assert.True(t, ok)

	c.Clear()
	_, ok = c.Get("b.example")
	assert.False(t, ok)
}
