package command

import (
	"errors"
	"strconv"
	"strings"
)

// Status line labels, "S<id> <Label>: <value>"
const (
	LabelSpeed   = "Speed"
	LabelGoal    = "Goal"
	LabelRunning = "Running"
	LabelPos     = "Pos"
)

// Status is one parsed status line
type Status struct {
	Motor MotorID
	Label string
	Value string
}

// Int returns the value as an integer (Goal, Pos)
func (s Status) Int() (int64, error) {
	return strconv.ParseInt(s.Value, 10, 64)
}

// Float returns the value as a float (Speed)
func (s Status) Float() (float64, error) {
	return strconv.ParseFloat(s.Value, 64)
}

// Bool returns the value as a bool (Running)
func (s Status) Bool() (bool, error) {
	return strconv.ParseBool(s.Value)
}

// ErrNotStatus is returned for lines that are not status lines
var ErrNotStatus = errors.New("not a status line")

// ParseStatus parses "S<id> <Label>: <value>"
func ParseStatus(line string) (Status, error) {
	line = strings.TrimRight(line, "\r\n ")
	if len(line) < 2 || line[0] != 'S' {
		return Status{}, ErrNotStatus
	}

	space := strings.IndexByte(line, ' ')
	colon := strings.Index(line, ": ")
	if space < 2 || colon < space {
		return Status{}, ErrNotStatus
	}

	id, err := strconv.Atoi(line[1:space])
	if err != nil || id < 1 || id > MaxMotors {
		return Status{}, ErrNotStatus
	}

	return Status{
		Motor: MotorID(id),
		Label: line[space+1 : colon],
		Value: line[colon+2:],
	}, nil
}
