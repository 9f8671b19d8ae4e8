package batch

import (
	"fmt"
	"testing"
)

func makeUnits(n int) []Unit {
	units := make([]Unit, n)
	for i := range units {
		units[i] = Unit{ID: fmt.Sprintf("http://example.com/page-%02d", i+1)}
	}
	return units
}

func TestRemainingCapAppliesBeforeFilter(t *testing.T) {
	units := makeUnits(20)

	// Two of the first five are already done. The cap bounds the nominal
	// job to the first five, so only the other three remain, never pages
	// six and seven.
	led := NewLedger()
	led.MarkCompleted(units[0].ID)
	led.MarkCompleted(units[2].ID)

	got := Remaining(units, led, 5)
	if len(got) != 3 {
		t.Fatalf("len(Remaining) = %d, want 3", len(got))
	}
	want := []string{units[1].ID, units[3].ID, units[4].ID}
	for i, u := range got {
		if u.ID != want[i] {
			t.Errorf("Remaining[%d] = %s, want %s", i, u.ID, want[i])
		}
	}
}

func TestRemainingNoCap(t *testing.T) {
	units := makeUnits(4)
	led := NewLedger()
	led.MarkCompleted(units[1].ID)

	got := Remaining(units, led, 0)
	if len(got) != 3 {
		t.Fatalf("len(Remaining) = %d, want 3", len(got))
	}
	// Relative order is preserved.
	if got[0].ID != units[0].ID || got[1].ID != units[2].ID || got[2].ID != units[3].ID {
		t.Errorf("Remaining order = %v", got)
	}
}

func TestRemainingAllCompleted(t *testing.T) {
	units := makeUnits(3)
	led := NewLedger()
	for _, u := range units {
		led.MarkCompleted(u.ID)
	}

	if got := Remaining(units, led, 0); len(got) != 0 {
		t.Errorf("len(Remaining) = %d, want 0", len(got))
	}
}

func TestRemainingCapLargerThanInput(t *testing.T) {
	units := makeUnits(3)
	if got := Remaining(units, NewLedger(), 10); len(got) != 3 {
		t.Errorf("len(Remaining) = %d, want 3", len(got))
	}
}
