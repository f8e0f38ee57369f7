package stepgen

import (
	"testing"

	"gostepper/core"
)

// testClock is a manually advanced microsecond clock
type testClock struct {
	now uint32
}

func (c *testClock) micros() uint32 {
	return c.now
}

func newTestStepper(maxSpeed, accel float64) (*Stepper, *testClock) {
	clock := &testClock{}
	s := NewStepper("test", nil)
	s.SetClock(clock.micros)
	s.SetMaxSpeed(maxSpeed)
	s.SetAcceleration(accel)
	return s, clock
}

// runUntilIdle calls Run every dt microseconds until the stepper stops or
// limit iterations pass, failing if the position ever moves backwards
// relative to the direction of travel
func runUntilIdle(t *testing.T, s *Stepper, clock *testClock, dt uint32, limit int) {
	t.Helper()

	forward := s.DistanceToGo() > 0
	prev := s.CurrentPosition()
	for i := 0; i < limit; i++ {
		clock.now += dt
		running := s.Run()

		pos := s.CurrentPosition()
		if (forward && pos < prev) || (!forward && pos > prev) {
			t.Fatalf("Position reversed from %d to %d", prev, pos)
		}
		prev = pos

		if !running {
			return
		}
	}
	t.Fatalf("Stepper still running after %d iterations at position %d", limit, s.CurrentPosition())
}

func TestMoveToReachesTarget(t *testing.T) {
	tests := []struct {
		maxSpeed float64
		accel    float64
		goal     int64
	}{
		{600, 1600, 500},
		{600, 1200, 500},
		{100, 200, 500},
		{1000, 2000, 500},
		{600, 1200, -300},
	}

	for _, tt := range tests {
		s, clock := newTestStepper(tt.maxSpeed, tt.accel)
		s.MoveTo(tt.goal)

		runUntilIdle(t, s, clock, 100, 200000)

		if s.CurrentPosition() != tt.goal {
			t.Errorf("Expected position %d, got %d (speed=%v accel=%v)",
				tt.goal, s.CurrentPosition(), tt.maxSpeed, tt.accel)
		}
		if s.Speed() != 0 {
			t.Errorf("Expected speed 0 at target, got %v", s.Speed())
		}
		if s.IsRunning() {
			t.Error("Stepper should not be running at target")
		}
	}
}

func TestSpeedNeverExceedsMax(t *testing.T) {
	s, clock := newTestStepper(300, 3000)
	s.MoveTo(2000)

	for i := 0; i < 100000 && s.Run(); i++ {
		clock.now += 50
		if s.Speed() > 300.0001 {
			t.Fatalf("Speed %v exceeds max 300", s.Speed())
		}
	}
}

func TestStopDecelerates(t *testing.T) {
	s, clock := newTestStepper(600, 1200)
	s.MoveTo(5000)

	for i := 0; i < 100000 && s.Speed() < 400; i++ {
		clock.now += 100
		s.Run()
	}

	stoppedAt := s.CurrentPosition()
	s.Stop()

	if s.TargetPosition() <= stoppedAt || s.TargetPosition() >= 5000 {
		t.Fatalf("Expected stop target between %d and 5000, got %d", stoppedAt, s.TargetPosition())
	}

	runUntilIdle(t, s, clock, 100, 200000)

	if s.CurrentPosition() != s.TargetPosition() {
		t.Errorf("Expected to halt at %d, got %d", s.TargetPosition(), s.CurrentPosition())
	}
}

func TestStopWhenIdle(t *testing.T) {
	s, _ := newTestStepper(600, 1200)
	s.Stop()

	if s.TargetPosition() != 0 || s.DistanceToGo() != 0 {
		t.Errorf("Stop on an idle stepper should not set a target, got %d", s.TargetPosition())
	}
}

func TestSetCurrentPosition(t *testing.T) {
	s, clock := newTestStepper(600, 1200)
	s.MoveTo(1000)
	for i := 0; i < 500; i++ {
		clock.now += 100
		s.Run()
	}

	s.SetCurrentPosition(0)

	if s.CurrentPosition() != 0 || s.TargetPosition() != 0 {
		t.Errorf("Expected position and target 0, got %d/%d", s.CurrentPosition(), s.TargetPosition())
	}
	if s.Speed() != 0 || s.IsRunning() {
		t.Error("Stepper should be stationary after SetCurrentPosition")
	}

	clock.now += 100000
	if s.Run() {
		t.Error("Run should report idle after SetCurrentPosition")
	}
}

func TestZeroAccelerationIgnored(t *testing.T) {
	s, _ := newTestStepper(600, 1200)
	s.SetAcceleration(0)

	if s.Acceleration() != 1200 {
		t.Errorf("Expected acceleration to stay 1200, got %v", s.Acceleration())
	}

	s.SetAcceleration(-800)
	if s.Acceleration() != 800 {
		t.Errorf("Expected sign dropped, got %v", s.Acceleration())
	}
}

func TestZeroMaxSpeedNeverMoves(t *testing.T) {
	s, clock := newTestStepper(0, 1200)
	s.MoveTo(100)

	for i := 0; i < 1000; i++ {
		clock.now += 1000
		s.Run()
	}

	if s.CurrentPosition() != 0 {
		t.Errorf("Expected no motion at max speed 0, got position %d", s.CurrentPosition())
	}
	if s.DistanceToGo() != 100 {
		t.Errorf("Expected distance 100 to remain, got %d", s.DistanceToGo())
	}
}

func TestRunSpeedWaitsForInterval(t *testing.T) {
	s, clock := newTestStepper(600, 1200)
	clock.now = 1000000
	s.MoveTo(10)

	if !s.RunSpeed() {
		t.Fatal("First step should be due immediately")
	}
	if s.RunSpeed() {
		t.Error("Second step should wait for the step interval")
	}
}

func TestCoreClockDefault(t *testing.T) {
	s := NewStepper("core", nil)
	s.SetMaxSpeed(1000)
	s.SetAcceleration(100000)
	s.MoveTo(3)

	core.SetTime(0)
	for i := 0; i < 1000 && s.Run(); i++ {
		core.AdvanceTime(100)
	}

	if s.CurrentPosition() != 3 {
		t.Errorf("Expected position 3 driven by core clock, got %d", s.CurrentPosition())
	}
}
