package filter

import (
	"testing"
	"time"
)

func TestAgeLimit_Active(t *testing.T) {
	if (AgeLimit{Days: 0}).Active() {
		t.Error("Expected age limit 0 to be inactive (no filter)")
	}
	if !(AgeLimit{Days: 14}).Active() {
		t.Error("Expected age limit 14 to be active")
	}
}

func TestAgeLimit_CutoffBoundary(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	cutoff := AgeLimit{Days: 14}.Cutoff(now)

	want := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if !cutoff.Equal(want) {
		t.Fatalf("Cutoff() = %v, want %v", cutoff, want)
	}

	// An item created exactly 14 days ago sits on the boundary and is
	// still eligible; one created 13 days ago is not.
	onBoundary := now.AddDate(0, 0, -14)
	if onBoundary.After(cutoff) {
		t.Error("Expected item created exactly on the cutoff to be eligible")
	}
	tooYoung := now.AddDate(0, 0, -13)
	if !tooYoung.After(cutoff) {
		t.Error("Expected item created 13 days ago to be excluded")
	}
}
