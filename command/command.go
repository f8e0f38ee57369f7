// Package command defines the text command model of the stepper link and
// converts between protocol lines and Commands.
package command

// MaxMotors is the number of motor slots the firmware is built for
const MaxMotors = 5

// MotorID identifies one physical motor slot, 1..MaxMotors
type MotorID uint8

// Selector is the set of motors a command applies to; bit i-1 is motor i
type Selector uint8

// SelectAll returns a selector holding motors 1..n
func SelectAll(n int) Selector {
	if n > MaxMotors {
		n = MaxMotors
	}
	if n <= 0 {
		return 0
	}
	return Selector(1<<uint(n) - 1)
}

// SelectMotor returns a selector holding only id
func SelectMotor(id MotorID) Selector {
	if id < 1 || id > MaxMotors {
		return 0
	}
	return Selector(1 << (id - 1))
}

// Contains reports whether id is selected
func (s Selector) Contains(id MotorID) bool {
	return id >= 1 && id <= MaxMotors && s&SelectMotor(id) != 0
}

// Count returns the number of selected motors
func (s Selector) Count() int {
	n := 0
	for id := MotorID(1); id <= MaxMotors; id++ {
		if s.Contains(id) {
			n++
		}
	}
	return n
}

// Single returns the motor id when exactly one motor is selected
func (s Selector) Single() (MotorID, bool) {
	if s.Count() != 1 {
		return 0, false
	}
	for id := MotorID(1); id <= MaxMotors; id++ {
		if s.Contains(id) {
			return id, true
		}
	}
	return 0, false
}

// Op is the operation kind of a command
type Op uint8

const (
	OpUnknown     Op = iota // unrecognized keyword, dispatched as a no-op
	OpSetSpeed              // SPEED
	OpSetGoal               // GOAL
	OpSetRunState           // STATE
	OpZero                  // ZERO
	OpQuery                 // GET
)

// Operation keywords on the wire
const (
	KeywordSpeed = "SPEED"
	KeywordGoal  = "GOAL"
	KeywordState = "STATE"
	KeywordZero  = "ZERO"
	KeywordGet   = "GET"
)

// String returns the wire keyword of the operation
func (o Op) String() string {
	switch o {
	case OpSetSpeed:
		return KeywordSpeed
	case OpSetGoal:
		return KeywordGoal
	case OpSetRunState:
		return KeywordState
	case OpZero:
		return KeywordZero
	case OpQuery:
		return KeywordGet
	default:
		return "UNKNOWN"
	}
}

// RunState is the payload of a STATE command
type RunState uint8

const (
	RunInvalid RunState = iota // payload was neither MOVE nor STOP
	RunMove
	RunStop
)

// String returns the wire literal of the run state
func (r RunState) String() string {
	switch r {
	case RunMove:
		return "MOVE"
	case RunStop:
		return "STOP"
	default:
		return ""
	}
}

// Field is the payload of a GET command
type Field uint8

const (
	FieldInvalid Field = iota // payload matched no queryable field
	FieldSpeed
	FieldGoal
	FieldState
	FieldPos
)

// String returns the wire literal of the field
func (f Field) String() string {
	switch f {
	case FieldSpeed:
		return "SPEED"
	case FieldGoal:
		return "GOAL"
	case FieldState:
		return "STATE"
	case FieldPos:
		return "POS"
	default:
		return ""
	}
}

// Command is one parsed protocol line. Only the value matching Op is
// meaningful; Payload keeps the raw text after the key/value separator.
type Command struct {
	Selector Selector
	Op       Op
	Speed    float64  // OpSetSpeed
	Goal     int64    // OpSetGoal
	Run      RunState // OpSetRunState
	Query    Field    // OpQuery
	Payload  string
}

// SetSpeed builds a SPEED command
func SetSpeed(sel Selector, speed float64) Command {
	return Command{Selector: sel, Op: OpSetSpeed, Speed: speed}
}

// SetGoal builds a GOAL command
func SetGoal(sel Selector, goal int64) Command {
	return Command{Selector: sel, Op: OpSetGoal, Goal: goal}
}

// SetRunState builds a STATE command
func SetRunState(sel Selector, run RunState) Command {
	return Command{Selector: sel, Op: OpSetRunState, Run: run}
}

// Zero builds a ZERO command; it always applies to every motor
func Zero() Command {
	return Command{Op: OpZero}
}

// Query builds a GET command
func Query(sel Selector, field Field) Command {
	return Command{Selector: sel, Op: OpQuery, Query: field}
}
