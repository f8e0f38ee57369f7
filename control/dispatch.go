package control

import (
	"gostepper/command"
	"gostepper/core"
)

// AccelerationFactor couples acceleration to max speed on SPEED commands
const AccelerationFactor = 2

// Dispatch applies cmd to the selected motors of t in ascending id order
// and returns one status line per affected motor. Unknown operations and
// unrecognized STATE/GET payloads change nothing and return no lines.
func Dispatch(cmd command.Command, t *Table) []string {
	var lines []string
	emit := func(s *Slot, label, value string) {
		lines = append(lines, statusLine(s.ID, label, value))
	}

	switch cmd.Op {
	case command.OpSetSpeed:
		t.each(cmd.Selector, func(s *Slot) {
			s.Motor.SetMaxSpeed(cmd.Speed)
			s.Motor.SetAcceleration(cmd.Speed * AccelerationFactor)
			core.RecordEvent(core.EvtSpeed, uint8(s.ID), int64(cmd.Speed))
			emit(s, command.LabelSpeed, core.FormatFloat2(s.Motor.MaxSpeed()))
		})

	case command.OpSetGoal:
		t.each(cmd.Selector, func(s *Slot) {
			s.Motor.MoveTo(cmd.Goal)
			core.RecordEvent(core.EvtGoal, uint8(s.ID), cmd.Goal)
			emit(s, command.LabelGoal, core.Itoa(s.Motor.TargetPosition()))
		})

	case command.OpSetRunState:
		switch cmd.Run {
		case command.RunMove:
			t.each(cmd.Selector, func(s *Slot) {
				s.Running = true
				core.RecordEvent(core.EvtRun, uint8(s.ID), s.Motor.TargetPosition())
				emit(s, command.LabelRunning, core.FormatBool(s.Running))
			})
		case command.RunStop:
			t.each(cmd.Selector, func(s *Slot) {
				s.Motor.Stop()
				s.Motor.Release()
				s.Running = false
				core.RecordEvent(core.EvtStop, uint8(s.ID), s.Motor.CurrentPosition())
				emit(s, command.LabelRunning, core.FormatBool(s.Running))
			})
		}

	case command.OpZero:
		// Always every motor, whatever the selector says
		all := t.All()
		t.each(all, func(s *Slot) {
			s.Motor.Stop()
		})
		t.each(all, func(s *Slot) {
			s.Motor.SetCurrentPosition(0)
			s.Motor.Release()
			s.Running = false
			core.RecordEvent(core.EvtZero, uint8(s.ID), 0)
			emit(s, command.LabelPos, core.Itoa(s.Motor.CurrentPosition()))
		})

	case command.OpQuery:
		t.each(cmd.Selector, func(s *Slot) {
			switch cmd.Query {
			case command.FieldSpeed:
				emit(s, command.LabelSpeed, core.FormatFloat2(s.Motor.MaxSpeed()))
			case command.FieldGoal:
				emit(s, command.LabelGoal, core.Itoa(s.Motor.TargetPosition()))
			case command.FieldState:
				emit(s, command.LabelRunning, core.FormatBool(s.Running))
			case command.FieldPos:
				emit(s, command.LabelPos, core.Itoa(s.Motor.CurrentPosition()))
			}
		})
	}

	return lines
}

// statusLine formats "S<id> <label>: <value>"
func statusLine(id command.MotorID, label, value string) string {
	return "S" + core.Itoa(int64(id)) + " " + label + ": " + value
}
