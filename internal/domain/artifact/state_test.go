package artifact

import (
	"testing"
	"time"
)

func TestDecideBaseMap(t *testing.T) {
	t100 := time.Unix(100, 0)
	t200 := time.Unix(200, 0)

	if got := DecideBaseMap(State{Exists: true, ModTime: t100}, State{}, time.Time{}); got != ReasonMissing {
		t.Fatalf("missing base map: got %q", got)
	}
	if got := DecideBaseMap(State{Exists: true, ModTime: t200}, State{Exists: true, ModTime: t100}, time.Time{}); got != ReasonStale {
		t.Fatalf("newer world save: got %q", got)
	}
	if got := DecideBaseMap(State{Exists: true, ModTime: t100}, State{Exists: true, ModTime: t100}, time.Time{}); got != ReasonNone {
		t.Fatalf("equal mtimes must not be stale: got %q", got)
	}
	if got := DecideBaseMap(State{Exists: true, ModTime: t100}, State{Exists: true, ModTime: t200}, time.Time{}); got != ReasonNone {
		t.Fatalf("older world save: got %q", got)
	}
}

func TestDecideBaseMap_SameChangeRendersOnce(t *testing.T) {
	world := State{Exists: true, ModTime: time.Unix(300, 0)}
	// renderer output carrying an mtime older than the world save
	base := State{Exists: true, ModTime: time.Unix(250, 0)}

	if got := DecideBaseMap(world, base, time.Unix(300, 0)); got != ReasonNone {
		t.Fatalf("already rendered change reported again: %q", got)
	}
	if got := DecideBaseMap(State{Exists: true, ModTime: time.Unix(301, 0)}, base, time.Unix(300, 0)); got != ReasonStale {
		t.Fatalf("new change not detected: %q", got)
	}
}
