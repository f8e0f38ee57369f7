package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// MotorEvent captures a motor state change for post-mortem analysis
type MotorEvent struct {
	EventType uint8  // Event type code
	Motor     uint8  // Motor id (1-based)
	Clock     uint32 // System time at event (us)
	Value     int64  // Context-dependent value
}

// Event type codes
const (
	EvtSpeed  = 1 // max speed changed, Value = whole steps/s
	EvtGoal   = 2 // target set, Value = target
	EvtRun    = 3 // running flag set
	EvtStop   = 4 // stop requested, Value = position
	EvtZero   = 5 // position reset
	EvtArrive = 6 // running flag cleared at target, Value = position
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active.
	// Off by default: debug text on the command link would be read by the
	// host as status lines.
	debugEnabled bool = false

	eventRing     [EventRingSize]MotorEvent
	eventRingHead uint8
	eventCount    uint32
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures a motor event in the ring buffer.
// Always non-blocking; the oldest event is overwritten.
func RecordEvent(eventType, motor uint8, value int64) {
	idx := eventRingHead
	eventRing[idx] = MotorEvent{
		EventType: eventType,
		Motor:     motor,
		Clock:     GetTime(),
		Value:     value,
	}
	eventRingHead = (idx + 1) % EventRingSize
	eventCount++
}

// Events returns the recorded events, oldest first
func Events() []MotorEvent {
	events := make([]MotorEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// EventName returns the printable name of an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtSpeed:
		return "SPEED"
	case EvtGoal:
		return "GOAL"
	case EvtRun:
		return "RUN"
	case EvtStop:
		return "STOP"
	case EvtZero:
		return "ZERO"
	case EvtArrive:
		return "ARRIVE"
	default:
		return "UNKNOWN"
	}
}

// DumpEventRing writes the event ring through the debug writer, bypassing
// the enabled flag (call on shutdown or from a bench tool)
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENT] === Event Ring Dump ===")
	debugPrintln("[EVENT] Total events recorded: " + Utoa(eventCount))

	for _, evt := range Events() {
		debugPrintln("[EVENT] " + EventName(evt.EventType) +
			" motor=" + Itoa(int64(evt.Motor)) +
			" clock=" + Utoa(evt.Clock) +
			" value=" + Itoa(evt.Value))
	}
	debugPrintln("[EVENT] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = MotorEvent{}
	}
	eventRingHead = 0
	eventCount = 0
}
