package core

// The core clock counts microseconds. It wraps every ~71 minutes; all
// consumers compare times by unsigned subtraction.
const (
	ClockFreq = 1000000 // 1MHz
)

var (
	systemTicks uint32
	bootTime    uint32
)

// GetTime returns the current system time in microseconds
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time.
// Board code calls this from the main loop with the hardware timer value;
// tests use it to drive motion deterministically.
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// AdvanceTime moves the system time forward by us microseconds
func AdvanceTime(us uint32) {
	setSystemTicks(getSystemTicks() + us)
}

// Micros returns the current time in microseconds
func Micros() uint32 {
	return GetTime()
}

// GetUptime returns microseconds elapsed since TimerInit
func GetUptime() uint32 {
	return GetTime() - bootTime
}

// TimerInit records the boot time for uptime calculation
func TimerInit() {
	bootTime = GetTime()
}
