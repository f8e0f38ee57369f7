// Package control owns the motor state table and runs the firmware's
// control cycle: step running motors, retire arrived ones, dispatch one
// command line.
package control

import (
	"errors"

	"gostepper/command"
	"gostepper/core"
)

// Motor is the motion-control collaborator driving one physical motor.
// Positions are in steps, speeds in steps/s, acceleration in steps/s^2.
type Motor interface {
	SetMaxSpeed(speed float64)
	SetAcceleration(acceleration float64)
	MoveTo(absolute int64)
	Stop()
	Run() bool
	DistanceToGo() int64
	CurrentPosition() int64
	SetCurrentPosition(position int64)
	TargetPosition() int64
	MaxSpeed() float64
	Acceleration() float64
	Release() // de-energize the coils; the next step energizes them again
}

// Slot is the runtime state of one motor
type Slot struct {
	ID      command.MotorID
	Motor   Motor
	Running bool // Run is called every cycle while set
}

// Table holds the slots of all configured motors, indexed by id-1
type Table struct {
	slots [command.MaxMotors]Slot
	count int
}

// NewTable creates a table with motors 1..len(motors)
func NewTable(motors ...Motor) (*Table, error) {
	if len(motors) == 0 {
		return nil, errors.New("control: no motors")
	}
	if len(motors) > command.MaxMotors {
		return nil, errors.New("control: too many motors: " + core.Itoa(int64(len(motors))))
	}

	t := &Table{count: len(motors)}
	for i, m := range motors {
		if m == nil {
			return nil, errors.New("control: motor " + core.Itoa(int64(i+1)) + " is nil")
		}
		t.slots[i] = Slot{ID: command.MotorID(i + 1), Motor: m}
	}
	return t, nil
}

// Len returns the number of configured motors
func (t *Table) Len() int {
	return t.count
}

// All returns the selector holding every configured motor
func (t *Table) All() command.Selector {
	return command.SelectAll(t.count)
}

// Slot returns the slot of motor id, or nil if it is not configured
func (t *Table) Slot(id command.MotorID) *Slot {
	if id < 1 || int(id) > t.count {
		return nil
	}
	return &t.slots[id-1]
}

// each calls fn for every configured motor in sel, in ascending id order
func (t *Table) each(sel command.Selector, fn func(s *Slot)) {
	for i := 0; i < t.count; i++ {
		if sel.Contains(t.slots[i].ID) {
			fn(&t.slots[i])
		}
	}
}

// Service advances every running motor by at most one step, then clears
// the running flag of every motor that has reached its target and releases
// its coils
func (t *Table) Service() {
	for i := 0; i < t.count; i++ {
		if t.slots[i].Running {
			t.slots[i].Motor.Run()
		}
	}

	for i := 0; i < t.count; i++ {
		s := &t.slots[i]
		if s.Motor.DistanceToGo() == 0 && s.Running {
			s.Running = false
			s.Motor.Release()
			core.RecordEvent(core.EvtArrive, uint8(s.ID), s.Motor.CurrentPosition())
		}
	}
}

// AnyRunning reports whether any motor is flagged running
func (t *Table) AnyRunning() bool {
	for i := 0; i < t.count; i++ {
		if t.slots[i].Running {
			return true
		}
	}
	return false
}
