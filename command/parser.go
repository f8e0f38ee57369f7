package command

import (
	"strconv"
	"strings"
)

// Separators of the line format "<selector>|<OP>: <payload>"
const (
	SelectorSeparator = '|'
	ValueSeparator    = ':'
)

// Parser turns protocol lines into Commands for a fixed number of motors
type Parser struct {
	motors int
}

// NewParser creates a parser for motors 1..motors, clamped to 1..MaxMotors
func NewParser(motors int) *Parser {
	if motors < 1 {
		motors = 1
	}
	if motors > MaxMotors {
		motors = MaxMotors
	}
	return &Parser{motors: motors}
}

// Motors returns the number of configured motors
func (p *Parser) Motors() int {
	return p.motors
}

// ParseLine parses a single command line. It never fails: a malformed
// selector selects every motor, an unknown keyword yields OpUnknown and a
// malformed number parses as 0.
func (p *Parser) ParseLine(line string) Command {
	head := line
	payload := ""
	if colon := strings.IndexByte(line, ValueSeparator); colon >= 0 {
		head = line[:colon]
		payload = line[colon+1:]
		// ": " convention, one separator character
		if len(payload) > 0 && payload[0] == ' ' {
			payload = payload[1:]
		}
	}

	cmd := Command{
		Selector: SelectAll(p.motors),
		Payload:  payload,
	}

	keyword := head
	if bar := strings.IndexByte(head, SelectorSeparator); bar >= 0 {
		cmd.Selector = p.parseSelector(head[:bar])
		keyword = head[bar+1:]
	}

	switch keyword {
	case KeywordSpeed:
		cmd.Op = OpSetSpeed
		cmd.Speed = parseFloat(payload)
	case KeywordGoal:
		cmd.Op = OpSetGoal
		cmd.Goal = parseInt(payload)
	case KeywordState:
		cmd.Op = OpSetRunState
		cmd.Run = parseRunState(payload)
	case KeywordZero:
		cmd.Op = OpZero
	case KeywordGet:
		cmd.Op = OpQuery
		cmd.Query = parseField(payload)
	default:
		cmd.Op = OpUnknown
	}

	return cmd
}

// parseSelector maps a single digit 1..motors to that motor and anything
// else to every configured motor
func (p *Parser) parseSelector(token string) Selector {
	if len(token) == 1 && token[0] >= '1' && token[0] <= '9' {
		id := int(token[0] - '0')
		if id <= p.motors {
			return SelectMotor(MotorID(id))
		}
	}
	return SelectAll(p.motors)
}

func parseRunState(payload string) RunState {
	switch payload {
	case "MOVE":
		return RunMove
	case "STOP":
		return RunStop
	default:
		return RunInvalid
	}
}

func parseField(payload string) Field {
	switch payload {
	case "SPEED":
		return FieldSpeed
	case "GOAL":
		return FieldGoal
	case "STATE":
		return FieldState
	case "POS":
		return FieldPos
	default:
		return FieldInvalid
	}
}

// parseInt parses the longest integer prefix after leading blanks, 0 if none.
// Out of range values saturate.
func parseInt(s string) int64 {
	prefix := numericPrefix(s, false)
	if prefix == "" {
		return 0
	}
	// ParseInt returns the saturated value together with ErrRange
	v, _ := strconv.ParseInt(prefix, 10, 64)
	return v
}

// parseFloat parses the longest decimal prefix (with optional exponent)
// after leading blanks, 0 if none
func parseFloat(s string) float64 {
	prefix := numericPrefix(s, true)
	if prefix == "" {
		return 0
	}
	// Only range errors are possible here and v is then ±Inf or ±0
	v, _ := strconv.ParseFloat(prefix, 64)
	return v
}

// numericPrefix returns the leading number of s, or "" when s does not start
// with one
func numericPrefix(s string, fractional bool) string {
	pos := 0
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
		pos++
	}
	start := pos

	if pos < len(s) && (s[pos] == '-' || s[pos] == '+') {
		pos++
	}

	digits := 0
	for pos < len(s) && isDigit(s[pos]) {
		pos++
		digits++
	}

	if fractional && pos < len(s) && s[pos] == '.' {
		pos++
		for pos < len(s) && isDigit(s[pos]) {
			pos++
			digits++
		}
	}

	if digits == 0 {
		return ""
	}

	if fractional && pos < len(s) && (s[pos] == 'e' || s[pos] == 'E') {
		exp := pos + 1
		if exp < len(s) && (s[exp] == '-' || s[exp] == '+') {
			exp++
		}
		if exp < len(s) && isDigit(s[exp]) {
			for exp < len(s) && isDigit(s[exp]) {
				exp++
			}
			pos = exp
		}
	}

	return s[start:pos]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
