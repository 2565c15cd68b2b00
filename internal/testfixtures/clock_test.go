package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
	if ReferenceTime().Weekday() != time.Monday {
		t.Fatalf("reference time must be a Monday, got %v", ReferenceTime().Weekday())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	if got := clock.Advance(90 * time.Minute); !got.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", got)
	}

	clock.Set(start.Add(48 * time.Hour))
	if got := clock.Now(); !got.Equal(start.Add(48 * time.Hour)) {
		t.Fatalf("expected %v after Set, got %v", start.Add(48*time.Hour), got)
	}
}

func TestClockNowFuncTracksClock(t *testing.T) {
	clock := NewClock(time.Time{})
	nowFn := clock.NowFunc()

	before := nowFn()
	clock.Advance(time.Minute)
	after := nowFn()
	if !after.Equal(before.Add(time.Minute)) {
		t.Fatalf("NowFunc returned %v, want %v", after, before.Add(time.Minute))
	}

	var absent *Clock
	if absent.NowFunc() == nil {
		t.Fatal("nil clock must still yield a usable time source")
	}
}
