package cache

import (
	"testing"
	"time"
)

func TestSnapshotGetSetClear(t *testing.T) {
	s := NewSnapshot[int](time.Minute)

	if _, ok := s.Get(); ok {
		t.Fatalf("empty snapshot reported a value")
	}

	s.Set(42)
	v, ok := s.Get()
	if !ok || v != 42 {
		t.Fatalf("got (%d, %v), want (42, true)", v, ok)
	}

	s.Clear()
	if _, ok := s.Get(); ok {
		t.Fatalf("cleared snapshot reported a value")
	}
}

func TestSnapshotExpiry(t *testing.T) {
	s := NewSnapshot[string](10 * time.Millisecond)

	s.Set("fresh")
	if _, ok := s.Get(); !ok {
		t.Fatalf("value expired before its TTL")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := s.Get(); ok {
		t.Fatalf("value survived past its TTL")
	}
}

func TestSnapshotCleanExpired(t *testing.T) {
	s := NewSnapshot[string](10 * time.Millisecond)

	if n := s.CleanExpired(); n != 0 {
		t.Fatalf("empty snapshot cleaned %d entries", n)
	}

	s.Set("fresh")
	if n := s.CleanExpired(); n != 0 {
		t.Fatalf("fresh value cleaned %d entries", n)
	}

	time.Sleep(20 * time.Millisecond)
	if n := s.CleanExpired(); n != 1 {
		t.Fatalf("expired value cleaned %d entries, want 1", n)
	}
	if n := s.CleanExpired(); n != 0 {
		t.Fatalf("second sweep cleaned %d entries, want 0", n)
	}
}

type fixedCleaner int

func (c fixedCleaner) CleanExpired() int { return int(c) }

func TestManagerSweepsRegisteredCaches(t *testing.T) {
	m := NewManager()
	m.Register(fixedCleaner(1))
	m.Register(fixedCleaner(2))

	m.StartCleanup(5 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	m.Stop()
}
