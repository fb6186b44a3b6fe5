package tiles

import (
	"bytes"
	"testing"
	"time"
)

func TestPutGet(t *testing.T) {
	c := New()

	tile := []byte{0x89, 0x50, 0x4e, 0x47}
	c.Put(Key(12, 2047, 1362), tile)

	got, ok := c.Get(Key(12, 2047, 1362))
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !bytes.Equal(got, tile) {
		t.Error("tile bytes differ")
	}
}

func TestGetMiss(t *testing.T) {
	c := New()
	if _, ok := c.Get(Key(1, 0, 0)); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestExpiredTileReadsAsMiss(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := New(WithTTL(time.Hour), WithClock(clock))

	c.Put(Key(5, 1, 1), []byte("tile"))

	now = now.Add(2 * time.Hour)
	if _, ok := c.Get(Key(5, 1, 1)); ok {
		t.Error("expected expired tile to miss")
	}

	// The lazy drop removed the entry.
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0 after lazy drop", c.Len())
	}
}

func TestPrune(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := New(WithTTL(time.Hour), WithClock(clock))

	c.Put(Key(5, 1, 1), []byte("old"))
	c.Put(Key(5, 1, 2), []byte("old too"))

	now = now.Add(90 * time.Minute)
	c.Put(Key(5, 1, 3), []byte("fresh"))

	if dropped := c.Prune(); dropped != 2 {
		t.Errorf("Prune dropped %d, want 2", dropped)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.Get(Key(5, 1, 3)); !ok {
		t.Error("fresh tile should survive prune")
	}
}
