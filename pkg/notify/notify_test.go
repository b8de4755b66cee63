package notify

import (
	"testing"
	"time"
)

func fixedClock(c *Center, t time.Time) { c.now = func() time.Time { return t } }

func TestActiveExpires(t *testing.T) {
	c := New(0)
	if c.TTL() != DefaultTTL {
		t.Fatalf("TTL() = %v, want %v", c.TTL(), DefaultTTL)
	}
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	fixedClock(c, start)
	c.Push(Error, "could not load relatives")
	fixedClock(c, start.Add(time.Second))
	c.Push(Info, "saved")

	tests := []struct {
		at   time.Duration
		want int
	}{
		{2 * time.Second, 2},
		{4 * time.Second, 1},
		{5 * time.Second, 0},
	}
	for _, tt := range tests {
		if got := c.Active(start.Add(tt.at)); len(got) != tt.want {
			t.Errorf("Active(+%v) = %d notices, want %d", tt.at, len(got), tt.want)
		}
	}
}

func TestDismiss(t *testing.T) {
	c := New(time.Minute)
	n := c.Push(Success, "added")
	if !c.Dismiss(n.ID) {
		t.Error("Dismiss() = false for existing notice")
	}
	if c.Dismiss(n.ID) {
		t.Error("Dismiss() = true for removed notice")
	}
	if got := c.Active(time.Now()); len(got) != 0 {
		t.Errorf("Active() = %v after dismiss", got)
	}
}

func TestSubscribe(t *testing.T) {
	c := New(time.Minute)
	ch, cancel := c.Subscribe()
	c.Push(Error, "boom")

	select {
	case n := <-ch:
		if n.Message != "boom" || n.Level != Error {
			t.Errorf("notice = %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("notice not delivered")
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel not closed after cancel")
	}
	c.Push(Info, "after cancel")
}
