package core

// Itoa converts an integer to a string without using the fmt package.
// Status lines are built on the hot path of the control cycle, so the
// firmware formats numbers by hand.
func Itoa(n int64) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	pos := len(buf)

	// Work on the negative value so the minimum int64 does not overflow
	negative := n < 0
	if !negative {
		n = -n
	}

	for n < 0 {
		pos--
		buf[pos] = byte('0' - n%10)
		n /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}

// Utoa converts an unsigned integer to a string
func Utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)

	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[pos:])
}

// FormatFloat2 formats a float with exactly two decimals, rounding half away
// from zero ("600.00", "-0.50"). Values beyond the int64 range are clamped.
func FormatFloat2(v float64) string {
	if v != v {
		return "nan"
	}

	negative := v < 0
	if negative {
		v = -v
	}

	scaled := v*100 + 0.5
	if scaled >= 9.2e18 {
		scaled = 9.2e18
	}
	cents := int64(scaled)

	s := Itoa(cents/100) + "." + twoDigits(cents%100)
	if negative && cents != 0 {
		s = "-" + s
	}
	return s
}

// FormatBool returns "true" or "false"
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func twoDigits(n int64) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
