package quiz

import (
	"errors"
	"testing"
	"time"
)

func TestRegistryOwnership(t *testing.T) {
	r := NewRegistry(time.Hour)
	s, _ := NewSession("s1", "alice", "c", "t", []Question{mc("q1", "Jakarta")}, t0)
	r.Add(s)

	if got, err := r.Get("s1", "alice"); err != nil || got != s {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := r.Get("s1", "bob"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("foreign get: %v", err)
	}
	if r.Remove("s1", "bob") {
		t.Fatal("bob must not remove alice's session")
	}
	if !r.Remove("s1", "alice") || r.Len() != 0 {
		t.Fatal("remove")
	}
	if _, err := r.Get("s1", "alice"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("after remove: %v", err)
	}
}

func TestRegistrySweep(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	now := t0
	r.SetClock(func() time.Time { return now })

	old, _ := NewSession("old", "u", "c", "t", []Question{mc("q1", "Jakarta")}, t0)
	fresh, _ := NewSession("fresh", "u", "c", "t", []Question{mc("q1", "Jakarta")}, t0.Add(8*time.Minute))
	r.Add(old)
	r.Add(fresh)

	now = t0.Add(15 * time.Minute)
	if n := r.Sweep(); n != 1 {
		t.Fatalf("swept %d", n)
	}
	if _, err := r.Get("fresh", "u"); err != nil {
		t.Fatal("fresh session should survive")
	}

	if n := NewRegistry(0).Sweep(); n != 0 {
		t.Fatal("zero idle timeout disables sweeping")
	}
}
