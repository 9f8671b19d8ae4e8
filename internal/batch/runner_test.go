package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunnerProcessesAllUnits(t *testing.T) {
	store := testStore(t)
	runner := NewRunner(store, Config{Resume: true}, nil)

	var processed []string
	proc := ProcessorFunc(func(ctx context.Context, unit Unit) Outcome {
		processed = append(processed, unit.ID)
		return Outcome{}
	})

	stats, led := runner.Run(context.Background(), makeUnits(5), proc)

	if len(processed) != 5 {
		t.Errorf("processed %d units, want 5", len(processed))
	}
	if stats.Completed != 5 || stats.Failed != 0 || stats.Interrupted {
		t.Errorf("stats = %+v, want 5 completed", stats)
	}
	if led.CompletedCount() != 5 {
		t.Errorf("ledger completed = %d, want 5", led.CompletedCount())
	}

	// The final state must be on disk regardless of checkpoint cadence.
	if got := store.Load(); got.CompletedCount() != 5 {
		t.Errorf("persisted completed = %d, want 5", got.CompletedCount())
	}
}

func TestRunnerFailureDoesNotStopRun(t *testing.T) {
	store := testStore(t)
	runner := NewRunner(store, Config{Resume: true}, nil)

	units := makeUnits(4)
	proc := ProcessorFunc(func(ctx context.Context, unit Unit) Outcome {
		if unit.ID == units[1].ID {
			return Outcome{Err: errors.New("status 500")}
		}
		return Outcome{}
	})

	stats, led := runner.Run(context.Background(), units, proc)

	if stats.Completed != 3 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 3 completed, 1 failed", stats)
	}
	if led.IsCompleted(units[1].ID) {
		t.Error("failed unit must not be marked completed")
	}
	if len(led.Failed) != 1 || led.Failed[0].URL != units[1].ID || led.Failed[0].Error != "status 500" {
		t.Errorf("Failed = %+v", led.Failed)
	}
}

func TestRunnerResumeSkipsCompletedUnits(t *testing.T) {
	store := testStore(t)
	units := makeUnits(6)

	prior := NewLedger()
	prior.MarkCompleted(units[0].ID)
	prior.MarkCompleted(units[2].ID)
	prior.MarkCompleted(units[4].ID)
	if err := store.Save(prior); err != nil {
		t.Fatal(err)
	}

	var processed []string
	proc := ProcessorFunc(func(ctx context.Context, unit Unit) Outcome {
		processed = append(processed, unit.ID)
		return Outcome{}
	})

	runner := NewRunner(store, Config{Resume: true}, nil)
	stats, led := runner.Run(context.Background(), units, proc)

	if len(processed) != 3 {
		t.Fatalf("processed %d units, want 3", len(processed))
	}
	want := []string{units[1].ID, units[3].ID, units[5].ID}
	for i, id := range processed {
		if id != want[i] {
			t.Errorf("processed[%d] = %s, want %s", i, id, want[i])
		}
	}
	if led.CompletedCount() != 6 {
		t.Errorf("ledger completed = %d, want 6", led.CompletedCount())
	}
	if stats.Processed != 3 {
		t.Errorf("stats.Processed = %d, want 3", stats.Processed)
	}
}

func TestRunnerNoResumeStartsFresh(t *testing.T) {
	store := testStore(t)
	units := makeUnits(3)

	prior := NewLedger()
	prior.MarkCompleted(units[0].ID)
	if err := store.Save(prior); err != nil {
		t.Fatal(err)
	}

	calls := 0
	proc := ProcessorFunc(func(ctx context.Context, unit Unit) Outcome {
		calls++
		return Outcome{}
	})

	runner := NewRunner(store, Config{Resume: false}, nil)
	runner.Run(context.Background(), units, proc)

	if calls != 3 {
		t.Errorf("processed %d units, want 3 (previous progress ignored)", calls)
	}
}

func TestRunnerCheckpointCadence(t *testing.T) {
	store := testStore(t)
	runner := NewRunner(store, Config{CheckpointEvery: 10, Resume: true}, nil)

	// Observe the persisted completed count before each unit. With 25
	// units and checkpoints every 10, the file holds 0 during the first
	// ten, 10 during the next ten, 20 during the last five, and 25 after
	// the final save.
	var observed []int
	proc := ProcessorFunc(func(ctx context.Context, unit Unit) Outcome {
		observed = append(observed, store.Load().CompletedCount())
		return Outcome{}
	})

	runner.Run(context.Background(), makeUnits(25), proc)

	for i, got := range observed {
		want := (i / 10) * 10
		if got != want {
			t.Errorf("before unit %d: persisted completed = %d, want %d", i+1, got, want)
		}
	}
	if got := store.Load().CompletedCount(); got != 25 {
		t.Errorf("final persisted completed = %d, want 25", got)
	}
}

func TestRunnerMaxUnitsCapsNominalList(t *testing.T) {
	store := testStore(t)
	units := makeUnits(20)

	prior := NewLedger()
	prior.MarkCompleted(units[0].ID)
	prior.MarkCompleted(units[2].ID)
	if err := store.Save(prior); err != nil {
		t.Fatal(err)
	}

	calls := 0
	proc := ProcessorFunc(func(ctx context.Context, unit Unit) Outcome {
		calls++
		return Outcome{}
	})

	runner := NewRunner(store, Config{MaxUnits: 5, Resume: true}, nil)
	stats, _ := runner.Run(context.Background(), units, proc)

	if calls != 3 {
		t.Errorf("processed %d units, want 3 (cap applies before the resume filter)", calls)
	}
	if stats.Total != 5 {
		t.Errorf("stats.Total = %d, want 5", stats.Total)
	}
}

func TestRunnerInterruptionLeavesInFlightUnitUnrecorded(t *testing.T) {
	store := testStore(t)
	units := makeUnits(5)

	ctx, cancel := context.WithCancel(context.Background())
	proc := ProcessorFunc(func(c context.Context, unit Unit) Outcome {
		if unit.ID == units[2].ID {
			cancel()
			return Outcome{Err: c.Err()}
		}
		return Outcome{}
	})

	runner := NewRunner(store, Config{Resume: true}, nil)
	stats, led := runner.Run(ctx, units, proc)

	if !stats.Interrupted {
		t.Error("stats.Interrupted = false, want true")
	}
	if led.CompletedCount() != 2 {
		t.Errorf("completed = %d, want 2 (interrupted unit stays unrecorded)", led.CompletedCount())
	}
	if led.IsCompleted(units[2].ID) {
		t.Error("in-flight unit must not be completed")
	}
	if len(led.Failed) != 0 {
		t.Errorf("Failed = %+v, want empty (interruption is not a failure)", led.Failed)
	}

	// The interrupted state must be on disk, and a fresh run picks up
	// exactly where it stopped.
	var resumed []string
	resumeProc := ProcessorFunc(func(c context.Context, unit Unit) Outcome {
		resumed = append(resumed, unit.ID)
		return Outcome{}
	})
	runner2 := NewRunner(store, Config{Resume: true}, nil)
	runner2.Run(context.Background(), units, resumeProc)

	want := []string{units[2].ID, units[3].ID, units[4].ID}
	if len(resumed) != len(want) {
		t.Fatalf("resumed %d units, want %d", len(resumed), len(want))
	}
	for i, id := range resumed {
		if id != want[i] {
			t.Errorf("resumed[%d] = %s, want %s", i, id, want[i])
		}
	}
}

func TestRunnerDiscoveredUnitsExtendQueue(t *testing.T) {
	store := testStore(t)

	seed := Unit{ID: "http://example.com/start"}
	proc := ProcessorFunc(func(ctx context.Context, unit Unit) Outcome {
		if unit.ID == seed.ID {
			return Outcome{Discovered: []Unit{
				{ID: "http://example.com/a"},
				{ID: "http://example.com/b"},
				{ID: seed.ID}, // already seen
			}}
		}
		return Outcome{}
	})

	runner := NewRunner(store, Config{Resume: true}, nil)
	stats, led := runner.Run(context.Background(), []Unit{seed}, proc)

	if stats.Processed != 3 {
		t.Errorf("stats.Processed = %d, want 3", stats.Processed)
	}
	if led.Total != 3 {
		t.Errorf("led.Total = %d, want 3", led.Total)
	}
	for _, id := range []string{seed.ID, "http://example.com/a", "http://example.com/b"} {
		if !led.IsCompleted(id) {
			t.Errorf("unit %s not completed", id)
		}
	}
}

func TestRunnerDiscoveredUnitsRespectCap(t *testing.T) {
	store := testStore(t)

	seed := Unit{ID: "http://example.com/start"}
	proc := ProcessorFunc(func(ctx context.Context, unit Unit) Outcome {
		if unit.ID == seed.ID {
			discovered := make([]Unit, 5)
			for i := range discovered {
				discovered[i] = Unit{ID: fmt.Sprintf("http://example.com/d%d", i)}
			}
			return Outcome{Discovered: discovered}
		}
		return Outcome{}
	})

	runner := NewRunner(store, Config{MaxUnits: 3, Resume: true}, nil)
	stats, led := runner.Run(context.Background(), []Unit{seed}, proc)

	if led.Total != 3 {
		t.Errorf("led.Total = %d, want 3 (discovery counts against the cap)", led.Total)
	}
	if stats.Processed != 3 {
		t.Errorf("stats.Processed = %d, want 3", stats.Processed)
	}
}

func TestRunnerRecoversFromPanic(t *testing.T) {
	store := testStore(t)
	units := makeUnits(3)

	proc := ProcessorFunc(func(ctx context.Context, unit Unit) Outcome {
		if unit.ID == units[1].ID {
			panic("nil dereference somewhere deep")
		}
		return Outcome{}
	})

	runner := NewRunner(store, Config{Resume: true}, nil)
	stats, led := runner.Run(context.Background(), units, proc)

	if stats.Completed != 2 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 2 completed, 1 failed", stats)
	}
	if len(led.Failed) != 1 || !strings.Contains(led.Failed[0].Error, "panic") {
		t.Errorf("Failed = %+v, want one panic failure", led.Failed)
	}
}

func TestRunnerRerunAfterCompletionProcessesNothing(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "progress.json"), nil)
	units := makeUnits(4)

	proc := ProcessorFunc(func(ctx context.Context, unit Unit) Outcome {
		return Outcome{}
	})
	NewRunner(store, Config{Resume: true}, nil).Run(context.Background(), units, proc)

	calls := 0
	counting := ProcessorFunc(func(ctx context.Context, unit Unit) Outcome {
		calls++
		return Outcome{}
	})
	NewRunner(store, Config{Resume: true}, nil).Run(context.Background(), units, counting)

	if calls != 0 {
		t.Errorf("second run processed %d units, want 0", calls)
	}
}
