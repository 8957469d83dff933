package server

import (
	"testing"
	"time"

	"github.com/matzehuels/treemap/pkg/pipeline"
)

func TestCleanupDoesNotBlockLookups(t *testing.T) {
	r := newRegistry(0)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	busy, _ := r.add(&pipeline.Loaded{}, now)
	idle, _ := r.add(&pipeline.Loaded{}, now)

	// A request is in flight on busy.
	busy.mu.Lock()

	done := make(chan int, 1)
	go func() { done <- r.cleanup(now.Add(2*time.Hour), time.Hour) }()

	lookup := make(chan error, 1)
	go func() {
		_, err := r.get(idle.id.String())
		if err == nil {
			_, err = r.add(&pipeline.Loaded{}, now.Add(2*time.Hour))
		}
		lookup <- err
	}()

	select {
	case err := <-lookup:
		if err != nil {
			t.Fatalf("lookup during cleanup: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("registry blocked while a session was busy")
	}

	busy.mu.Unlock()
	if n := <-done; n != 2 {
		t.Errorf("cleanup() = %d, want 2", n)
	}
	if r.len() != 1 {
		t.Errorf("len() = %d, want only the fresh session", r.len())
	}
}

func TestCleanupKeepsFreshSessions(t *testing.T) {
	r := newRegistry(0)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.add(&pipeline.Loaded{}, now)
	fresh, _ := r.add(&pipeline.Loaded{}, now.Add(50*time.Minute))

	if n := r.cleanup(now.Add(61*time.Minute), time.Hour); n != 1 {
		t.Fatalf("cleanup() = %d, want 1", n)
	}
	if _, err := r.get(fresh.id.String()); err != nil {
		t.Errorf("fresh session dropped: %v", err)
	}
}
