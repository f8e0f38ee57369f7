package command

import (
	"testing"
)

func TestParseSelectorSingleDigit(t *testing.T) {
	parser := NewParser(MaxMotors)

	for id := MotorID(1); id <= MaxMotors; id++ {
		line := string(rune('0'+id)) + "|SPEED:100"
		cmd := parser.ParseLine(line)

		if cmd.Selector != SelectMotor(id) {
			t.Errorf("Expected only motor %d selected for %q, got %05b", id, line, cmd.Selector)
		}
		for other := MotorID(1); other <= MaxMotors; other++ {
			if other != id && cmd.Selector.Contains(other) {
				t.Errorf("Motor %d should not be selected for %q", other, line)
			}
		}
	}
}

func TestParseSelectorFallsBackToAll(t *testing.T) {
	parser := NewParser(MaxMotors)
	all := SelectAll(MaxMotors)

	tests := []string{
		"|SPEED:100",   // empty
		"12|SPEED:100", // multi digit
		"a|SPEED:100",  // letter
		"0|SPEED:100",  // below range
		"6|SPEED:100",  // above configured range
		"9|SPEED:100",
		" 1|SPEED:100", // padded
		"SPEED:100",    // no selector
	}

	for _, line := range tests {
		cmd := parser.ParseLine(line)
		if cmd.Selector != all {
			t.Errorf("Expected all motors for %q, got %05b", line, cmd.Selector)
		}
		if cmd.Op != OpSetSpeed || cmd.Speed != 100 {
			t.Errorf("Expected SPEED 100 for %q, got %v %v", line, cmd.Op, cmd.Speed)
		}
	}
}

func TestParseSelectorRespectsMotorCount(t *testing.T) {
	parser := NewParser(2)

	cmd := parser.ParseLine("3|GOAL: 10")
	if cmd.Selector != SelectAll(2) {
		t.Errorf("Expected motors 1-2 for out-of-range selector, got %05b", cmd.Selector)
	}

	cmd = parser.ParseLine("2|GOAL: 10")
	if cmd.Selector != SelectMotor(2) {
		t.Errorf("Expected motor 2, got %05b", cmd.Selector)
	}
}

func TestParseOperations(t *testing.T) {
	parser := NewParser(MaxMotors)

	tests := []struct {
		input string
		op    Op
		speed float64
		goal  int64
		run   RunState
		query Field
	}{
		{input: "1|SPEED: 600", op: OpSetSpeed, speed: 600},
		{input: "1|SPEED: 12.5", op: OpSetSpeed, speed: 12.5},
		{input: "SPEED: 1e3", op: OpSetSpeed, speed: 1000},
		{input: "2|GOAL: 5000", op: OpSetGoal, goal: 5000},
		{input: "2|GOAL:100", op: OpSetGoal, goal: 100},
		{input: "GOAL: -250", op: OpSetGoal, goal: -250},
		{input: "GOAL: 12.7", op: OpSetGoal, goal: 12},
		{input: "STATE: MOVE", op: OpSetRunState, run: RunMove},
		{input: "3|STATE: STOP", op: OpSetRunState, run: RunStop},
		{input: "STATE: move", op: OpSetRunState, run: RunInvalid},
		{input: "ZERO:", op: OpZero},
		{input: "ZERO", op: OpZero},
		{input: "GET: SPEED", op: OpQuery, query: FieldSpeed},
		{input: "GET: GOAL", op: OpQuery, query: FieldGoal},
		{input: "4|GET: STATE", op: OpQuery, query: FieldState},
		{input: "GET: POS", op: OpQuery, query: FieldPos},
		{input: "GET: TEMP", op: OpQuery, query: FieldInvalid},
	}

	for _, tt := range tests {
		cmd := parser.ParseLine(tt.input)

		if cmd.Op != tt.op {
			t.Errorf("Expected op %v, got %v for %q", tt.op, cmd.Op, tt.input)
			continue
		}
		if cmd.Speed != tt.speed {
			t.Errorf("Expected speed %v, got %v for %q", tt.speed, cmd.Speed, tt.input)
		}
		if cmd.Goal != tt.goal {
			t.Errorf("Expected goal %d, got %d for %q", tt.goal, cmd.Goal, tt.input)
		}
		if cmd.Run != tt.run {
			t.Errorf("Expected run state %v, got %v for %q", tt.run, cmd.Run, tt.input)
		}
		if cmd.Query != tt.query {
			t.Errorf("Expected field %v, got %v for %q", tt.query, cmd.Query, tt.input)
		}
	}
}

func TestParseUnknownOperation(t *testing.T) {
	parser := NewParser(MaxMotors)

	tests := []string{
		"",
		"speed: 100",
		"1|JUMP: 5",
		"1: GOAL: 5000", // selector written with a colon
		"hello",
	}

	for _, line := range tests {
		if cmd := parser.ParseLine(line); cmd.Op != OpUnknown {
			t.Errorf("Expected OpUnknown for %q, got %v", line, cmd.Op)
		}
	}
}

func TestParsePermissiveNumbers(t *testing.T) {
	parser := NewParser(MaxMotors)

	tests := []struct {
		input string
		speed float64
	}{
		{"SPEED: abc", 0},
		{"SPEED: ", 0},
		{"SPEED:", 0},
		{"SPEED: 42rpm", 42},
		{"SPEED:   7", 7},
		{"SPEED: -.5", -0.5},
		{"SPEED: 3e", 3},
	}

	for _, tt := range tests {
		cmd := parser.ParseLine(tt.input)
		if cmd.Speed != tt.speed {
			t.Errorf("Expected speed %v, got %v for %q", tt.speed, cmd.Speed, tt.input)
		}
	}

	if cmd := parser.ParseLine("GOAL: x"); cmd.Goal != 0 {
		t.Errorf("Expected goal 0 for non-numeric payload, got %d", cmd.Goal)
	}
	if cmd := parser.ParseLine("GOAL: 99999999999999999999"); cmd.Goal != 9223372036854775807 {
		t.Errorf("Expected saturated goal, got %d", cmd.Goal)
	}
}

func TestParsePayloadSeparator(t *testing.T) {
	parser := NewParser(MaxMotors)

	// Exactly one space after the colon is skipped
	cmd := parser.ParseLine("STATE:  MOVE")
	if cmd.Payload != " MOVE" || cmd.Run != RunInvalid {
		t.Errorf("Expected payload \" MOVE\" and invalid run state, got %q %v", cmd.Payload, cmd.Run)
	}

	cmd = parser.ParseLine("STATE:STOP")
	if cmd.Payload != "STOP" || cmd.Run != RunStop {
		t.Errorf("Expected payload \"STOP\", got %q", cmd.Payload)
	}

	// Only the first colon separates
	cmd = parser.ParseLine("GET: POS:1")
	if cmd.Payload != "POS:1" || cmd.Query != FieldInvalid {
		t.Errorf("Expected payload \"POS:1\", got %q", cmd.Payload)
	}
}

func TestParseSelectorAfterColonIgnored(t *testing.T) {
	parser := NewParser(MaxMotors)

	cmd := parser.ParseLine("GOAL: 1|2")
	if cmd.Selector != SelectAll(MaxMotors) {
		t.Errorf("A bar in the payload must not select motors, got %05b", cmd.Selector)
	}
	if cmd.Goal != 1 {
		t.Errorf("Expected goal 1, got %d", cmd.Goal)
	}
}

func TestNewParserClamps(t *testing.T) {
	if NewParser(0).Motors() != 1 {
		t.Error("Expected motor count clamped to 1")
	}
	if NewParser(12).Motors() != MaxMotors {
		t.Errorf("Expected motor count clamped to %d", MaxMotors)
	}
}
