package realtime

import (
	"testing"
	"time"
)

func TestDeadlines_NextWake_Empty(t *testing.T) {
	d := NewDeadlines[int]()
	next, ok := d.NextWake(time.Now().UTC())
	if ok {
		t.Error("NextWake should return false when nothing is pending")
	}
	if !next.IsZero() {
		t.Error("next should be zero")
	}
}

func TestDeadlines_NextWake_Earliest(t *testing.T) {
	now := time.Now().UTC()
	d := NewDeadlines[int]()
	d.Arm(1, now.Add(300*time.Millisecond))
	d.Arm(2, now.Add(100*time.Millisecond))
	next, ok := d.NextWake(now)
	if !ok {
		t.Fatal("NextWake should return true when pending")
	}
	if !next.Equal(now.Add(100 * time.Millisecond)) {
		t.Errorf("next %v, want %v", next, now.Add(100*time.Millisecond))
	}
}

func TestDeadlines_NextWake_OverdueIsNow(t *testing.T) {
	now := time.Now().UTC()
	d := NewDeadlines[string]()
	d.Arm("a", now.Add(-time.Second))
	next, ok := d.NextWake(now)
	if !ok || !next.Equal(now) {
		t.Errorf("next %v ok=%v, want now", next, ok)
	}
}

func TestDeadlines_Expire_Independent(t *testing.T) {
	now := time.Now().UTC()
	d := NewDeadlines[int]()
	d.Arm(1, now.Add(50*time.Millisecond))
	d.Arm(2, now.Add(80*time.Millisecond))

	// Before either expiry: nothing
	if got := d.Expire(now.Add(10 * time.Millisecond)); len(got) != 0 {
		t.Errorf("expired %v, want none", got)
	}
	// First only
	got := d.Expire(now.Add(60 * time.Millisecond))
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("expired %v, want [1]", got)
	}
	if !d.Pending(2) {
		t.Error("key 2 should still be pending")
	}
	// Second
	got = d.Expire(now.Add(80 * time.Millisecond))
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("expired %v, want [2]", got)
	}
	if d.Len() != 0 {
		t.Errorf("Len %d, want 0", d.Len())
	}
}

func TestDeadlines_Expire_OrderedByTime(t *testing.T) {
	now := time.Now().UTC()
	d := NewDeadlines[int]()
	d.Arm(3, now.Add(30*time.Millisecond))
	d.Arm(1, now.Add(10*time.Millisecond))
	d.Arm(2, now.Add(20*time.Millisecond))
	got := d.Expire(now.Add(time.Second))
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expired %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expired %v, want %v", got, want)
			break
		}
	}
}

func TestDeadlines_Clear(t *testing.T) {
	d := NewDeadlines[int]()
	d.Arm(1, time.Now().Add(time.Minute))
	d.Clear()
	if d.Pending(1) {
		t.Error("Clear should drop pending keys")
	}
}
