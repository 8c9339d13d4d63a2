package keepalive

import (
	"testing"
	"time"
)

func TestControllerStartsDisabled(t *testing.T) {
	c := New(time.Minute)
	if c.Enabled() {
		t.Fatal("new controller is enabled")
	}
	if c.Running() {
		t.Fatal("new controller has a pending timer")
	}
}

func TestControllerEnableDisableReportChanges(t *testing.T) {
	c := New(time.Minute)
	c.OnFire(func() {})

	if !c.Enable() {
		t.Fatal("first enable reported no change")
	}
	if c.Enable() {
		t.Fatal("second enable reported a change")
	}
	if !c.Running() {
		t.Fatal("enable did not arm the timer")
	}

	if !c.Disable() {
		t.Fatal("first disable reported no change")
	}
	if c.Disable() {
		t.Fatal("second disable reported a change")
	}
	if c.Running() {
		t.Fatal("disable left a pending timer")
	}
}

func TestControllerFiresAndRearms(t *testing.T) {
	fired := make(chan struct{}, 4)
	c := New(20 * time.Millisecond)
	c.OnFire(func() { fired <- struct{}{} })
	c.Enable()
	defer c.Disable()

	for i := 0; i < 2; i++ {
		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatalf("fire %d never happened", i+1)
		}
	}
	if !c.Running() {
		t.Fatal("timer not re-armed after firing")
	}
}

func TestControllerKickDefersFire(t *testing.T) {
	fired := make(chan struct{}, 1)
	c := New(60 * time.Millisecond)
	c.OnFire(func() { fired <- struct{}{} })
	c.Enable()
	defer c.Disable()

	// Keep kicking for longer than one interval; the timer must not
	// fire while activity keeps arriving.
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		c.Kick()
		time.Sleep(10 * time.Millisecond)
	}
	select {
	case <-fired:
		t.Fatal("timer fired despite continuous activity")
	default:
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired after activity stopped")
	}
}

func TestControllerDisableSuppressesPendingFire(t *testing.T) {
	fired := make(chan struct{}, 1)
	c := New(30 * time.Millisecond)
	c.OnFire(func() { fired <- struct{}{} })
	c.Enable()
	c.Disable()

	select {
	case <-fired:
		t.Fatal("fired after disable")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestControllerKickWhileDisabledIsNoOp(t *testing.T) {
	c := New(time.Minute)
	c.Kick()
	if c.Running() {
		t.Fatal("kick armed a disabled controller")
	}
}

func TestNewClampsNonPositiveInterval(t *testing.T) {
	c := New(0)
	if c.interval != DefaultInterval {
		t.Fatalf("interval = %v, want %v", c.interval, DefaultInterval)
	}
}
