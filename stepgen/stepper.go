// Package stepgen is the motion-control side of the firmware: a
// constant-acceleration step timer per motor, stepping through a
// core.StepperBackend.
package stepgen

import (
	"math"

	"gostepper/core"
)

// Direction of travel
const (
	DirCCW = false // position decreasing
	DirCW  = true  // position increasing
)

// Stepper tracks one motor's motion profile. Step times follow the
// recurrence from D. Austin, "Generate stepper-motor speed profiles in real
// time": c0 from the acceleration, cn = cn-1 - 2cn-1/(4n+1), clamped to the
// interval of the maximum speed.
type Stepper struct {
	name    string
	backend core.StepperBackend
	clock   func() uint32

	// Position state (steps)
	currentPos int64
	targetPos  int64

	// Profile parameters
	speed        float64 // steps/s, negative is CCW
	maxSpeed     float64 // steps/s
	acceleration float64 // steps/s^2

	// Step timing
	stepInterval uint32 // us between steps, 0 = not stepping
	lastStepTime uint32
	n            int64   // step counter within the ramp
	c0           float64 // initial step interval (us)
	cn           float64 // last step interval (us)
	cmin         float64 // interval at max speed (us)
	direction    bool
}

// NewStepper creates a stepper with the given backend. A nil backend gives a
// virtual motor that only tracks position.
func NewStepper(name string, backend core.StepperBackend) *Stepper {
	s := &Stepper{
		name:      name,
		backend:   backend,
		clock:     core.Micros,
		direction: DirCCW,
	}
	s.SetMaxSpeed(1)
	s.SetAcceleration(1)
	return s
}

// Name returns the stepper's name
func (s *Stepper) Name() string {
	return s.name
}

// SetClock replaces the microsecond time source
func (s *Stepper) SetClock(clock func() uint32) {
	s.clock = clock
}

// MoveTo sets an absolute target. Motion happens in Run.
func (s *Stepper) MoveTo(absolute int64) {
	if s.targetPos != absolute {
		s.targetPos = absolute
		s.computeNewSpeed()
	}
}

// Move sets a target relative to the current position
func (s *Stepper) Move(relative int64) {
	s.MoveTo(s.currentPos + relative)
}

// DistanceToGo returns target minus current position
func (s *Stepper) DistanceToGo() int64 {
	return s.targetPos - s.currentPos
}

// TargetPosition returns the most recent target
func (s *Stepper) TargetPosition() int64 {
	return s.targetPos
}

// CurrentPosition returns the current position in steps
func (s *Stepper) CurrentPosition() int64 {
	return s.currentPos
}

// SetCurrentPosition redefines the current position, also making it the
// target. The motor is left stationary.
func (s *Stepper) SetCurrentPosition(position int64) {
	s.targetPos = position
	s.currentPos = position
	s.n = 0
	s.stepInterval = 0
	s.speed = 0
}

// SetMaxSpeed sets the speed ceiling in steps/s; the sign is ignored
func (s *Stepper) SetMaxSpeed(speed float64) {
	if speed < 0 {
		speed = -speed
	}
	if s.maxSpeed == speed {
		return
	}

	s.maxSpeed = speed
	if speed > 0 {
		s.cmin = 1000000.0 / speed
	} else {
		s.cmin = math.Inf(1)
	}

	// Already ramping: restart the ramp from the new limit
	if s.n > 0 && s.acceleration > 0 {
		s.n = int64((s.speed * s.speed) / (2.0 * s.acceleration))
		s.computeNewSpeed()
	}
}

// MaxSpeed returns the speed ceiling in steps/s
func (s *Stepper) MaxSpeed() float64 {
	return s.maxSpeed
}

// SetAcceleration sets acceleration in steps/s^2. Zero is ignored and the
// sign is dropped.
func (s *Stepper) SetAcceleration(acceleration float64) {
	if acceleration == 0 {
		return
	}
	if acceleration < 0 {
		acceleration = -acceleration
	}
	if s.acceleration == acceleration {
		return
	}

	if s.acceleration > 0 {
		s.n = int64(float64(s.n) * (s.acceleration / acceleration))
	}
	s.c0 = 0.676 * math.Sqrt(2.0/acceleration) * 1000000.0
	s.acceleration = acceleration
	s.computeNewSpeed()
}

// Acceleration returns the acceleration in steps/s^2
func (s *Stepper) Acceleration() float64 {
	return s.acceleration
}

// Speed returns the current signed speed in steps/s
func (s *Stepper) Speed() float64 {
	return s.speed
}

// Stop sets a new target at the shortest distance the motor can decelerate
// to a halt from its current speed. Run must keep being called to get there.
func (s *Stepper) Stop() {
	if s.speed == 0 || s.acceleration == 0 {
		return
	}

	stepsToStop := int64((s.speed*s.speed)/(2.0*s.acceleration)) + 1
	if s.speed > 0 {
		s.Move(stepsToStop)
	} else {
		s.Move(-stepsToStop)
	}
}

// IsRunning reports whether the motor is moving or has distance to go
func (s *Stepper) IsRunning() bool {
	return !(s.speed == 0 && s.targetPos == s.currentPos)
}

// Run steps the motor if a step is due, then updates the speed profile.
// It never waits and must be called at least once per step interval.
// Returns true while the motor is still moving toward its target.
func (s *Stepper) Run() bool {
	if s.RunSpeed() {
		s.computeNewSpeed()
	}
	return s.speed != 0 || s.DistanceToGo() != 0
}

// RunSpeed takes one step if the current step interval has elapsed
func (s *Stepper) RunSpeed() bool {
	if s.stepInterval == 0 {
		return false
	}

	now := s.clock()
	if now-s.lastStepTime < s.stepInterval {
		return false
	}

	if s.direction == DirCW {
		s.currentPos++
	} else {
		s.currentPos--
	}
	if s.backend != nil {
		s.backend.Step(s.currentPos)
	}
	s.lastStepTime = now
	return true
}

// Release de-energizes the coils of the backend, if any
func (s *Stepper) Release() {
	if s.backend != nil {
		s.backend.Release()
	}
}

// computeNewSpeed works out the next step interval from the distance left
// and the current position in the ramp
func (s *Stepper) computeNewSpeed() {
	distanceTo := s.DistanceToGo()

	if s.acceleration == 0 || s.maxSpeed == 0 {
		// Motion parameters never set: nothing can move
		s.halt()
		return
	}

	stepsToStop := int64((s.speed * s.speed) / (2.0 * s.acceleration))

	if distanceTo == 0 && stepsToStop <= 1 {
		// At target and slow enough to stop
		s.halt()
		return
	}

	if distanceTo > 0 {
		// Target is ahead (CW)
		if s.n > 0 {
			// Accelerating: start decelerating if we would overshoot or
			// are heading the wrong way
			if stepsToStop >= distanceTo || s.direction == DirCCW {
				s.n = -stepsToStop
			}
		} else if s.n < 0 {
			// Decelerating: accelerate again if there is room and we are
			// heading the right way
			if stepsToStop < distanceTo && s.direction == DirCW {
				s.n = -s.n
			}
		}
	} else if distanceTo < 0 {
		// Target is behind (CCW)
		if s.n > 0 {
			if stepsToStop >= -distanceTo || s.direction == DirCW {
				s.n = -stepsToStop
			}
		} else if s.n < 0 {
			if stepsToStop < -distanceTo && s.direction == DirCCW {
				s.n = -s.n
			}
		}
	}

	if s.n == 0 {
		// First step from stopped
		s.cn = s.c0
		s.direction = distanceTo > 0
	} else {
		s.cn = s.cn - ((2.0 * s.cn) / float64(4*s.n+1))
		if s.cn < s.cmin {
			s.cn = s.cmin
		}
	}
	s.n++

	s.stepInterval = uint32(s.cn)
	if s.stepInterval == 0 {
		s.stepInterval = 1
	}
	s.speed = 1000000.0 / s.cn
	if s.direction == DirCCW {
		s.speed = -s.speed
	}
}

func (s *Stepper) halt() {
	s.stepInterval = 0
	s.speed = 0
	s.n = 0
}
