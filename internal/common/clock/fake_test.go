package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 14, 0, 0, 0, time.UTC)

func TestFakeAfterFuncFiresAtDeadline(t *testing.T) {
	c := Fake(epoch)
	var firedAt time.Time
	c.AfterFunc(300*time.Millisecond, func() { firedAt = c.Now() })

	c.Advance(299 * time.Millisecond)
	if !firedAt.IsZero() {
		t.Fatal("fired too early")
	}
	c.Advance(time.Millisecond)
	if !firedAt.Equal(epoch.Add(300 * time.Millisecond)) {
		t.Fatalf("expected fire at deadline, got %v", firedAt)
	}
	if c.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", c.Pending())
	}
}

func TestFakeTimerStop(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Fatal("expected stop to cancel the timer")
	}
	if timer.Stop() {
		t.Fatal("second stop should report false")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Fatal("stopped timer fired")
	}
}

func TestFakeCallbacksRunInDeadlineOrder(t *testing.T) {
	c := Fake(epoch)
	var order []int
	c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	c.AfterFunc(2*time.Second, func() { order = append(order, 2) })
	c.Advance(5 * time.Second)
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("unexpected order %v", order)
	}
	if !c.Now().Equal(epoch.Add(5 * time.Second)) {
		t.Fatalf("expected clock at +5s, got %v", c.Now())
	}
}

func TestFakeTicker(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(time.Second)
	defer tk.Stop()

	c.Advance(time.Second)
	select {
	case at := <-tk.C:
		if !at.Equal(epoch.Add(time.Second)) {
			t.Fatalf("unexpected tick time %v", at)
		}
	default:
		t.Fatal("expected a tick")
	}

	// buffer of one: three intervals leave a single tick queued
	c.Advance(3 * time.Second)
	<-tk.C
	select {
	case <-tk.C:
		t.Fatal("expected overflow ticks to be dropped")
	default:
	}
}

func TestWaitForTimers(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})
	go func() {
		c.WaitForTimers(1)
		close(done)
	}()
	c.AfterFunc(time.Second, func() {})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitForTimers did not return")
	}
}
