package command

import "strconv"

// Format encodes a command as a protocol line without terminator. The
// selector prefix is omitted when the command targets more than one motor,
// which the firmware reads as "all motors"; callers wanting a subset send
// one line per motor.
func Format(cmd Command) string {
	prefix := ""
	if id, ok := cmd.Selector.Single(); ok && cmd.Op != OpZero {
		prefix = strconv.Itoa(int(id)) + string(SelectorSeparator)
	}

	switch cmd.Op {
	case OpSetSpeed:
		return prefix + KeywordSpeed + ": " + strconv.FormatFloat(cmd.Speed, 'f', -1, 64)
	case OpSetGoal:
		return prefix + KeywordGoal + ": " + strconv.FormatInt(cmd.Goal, 10)
	case OpSetRunState:
		return prefix + KeywordState + ": " + cmd.Run.String()
	case OpZero:
		return KeywordZero + ":"
	case OpQuery:
		return prefix + KeywordGet + ": " + cmd.Query.String()
	default:
		return prefix + cmd.Payload
	}
}

// Split expands a command into one command per selected motor, in ascending
// id order. ZERO and single-motor commands are returned as is.
func Split(cmd Command) []Command {
	if cmd.Op == OpZero || cmd.Selector.Count() <= 1 {
		return []Command{cmd}
	}

	cmds := make([]Command, 0, cmd.Selector.Count())
	for id := MotorID(1); id <= MaxMotors; id++ {
		if cmd.Selector.Contains(id) {
			c := cmd
			c.Selector = SelectMotor(id)
			cmds = append(cmds, c)
		}
	}
	return cmds
}
