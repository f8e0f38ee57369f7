package protocol

// ScratchOutput accumulates status lines until the board loop flushes them
type ScratchOutput struct {
	buf     [MessageMax]byte
	pos     int
	dropped int
}

// NewScratchOutput creates a new ScratchOutput
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{pos: 0}
}

// WriteLine appends a line and its terminator. A line that does not fit
// whole is dropped rather than truncated.
func (s *ScratchOutput) WriteLine(line string) {
	if s.pos+len(line)+1 > len(s.buf) {
		s.dropped += len(line) + 1
		return
	}
	s.pos += copy(s.buf[s.pos:], line)
	s.buf[s.pos] = LineFeed
	s.pos++
}

// Dropped returns the number of bytes discarded since the last Reset
func (s *ScratchOutput) Dropped() int {
	return s.dropped
}

// Result returns the accumulated output data
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

// Reset clears the buffer
func (s *ScratchOutput) Reset() {
	s.pos = 0
	s.dropped = 0
}

// FifoBuffer is a circular buffer for serial I/O. It holds size-1 bytes.
//
// The buffer tracks the line still being received. A line that cannot be
// stored whole is dropped up to and including its terminator, so no
// fragment of it is ever returned by ReadLine.
type FifoBuffer struct {
	buf       []byte
	read      int
	write     int
	size      int
	partial   int  // bytes of the unterminated line at the tail
	dropping  bool // skipping input until the next terminator
	discarded int
}

// NewFifoBuffer creates a new FifoBuffer with the specified capacity
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Write appends data to the FIFO buffer and returns the number of bytes
// consumed. Bytes of a line that overflows the whole buffer are consumed
// and discarded. Write stops early only when the buffer is full and still
// holds complete lines for ReadLine.
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		if f.dropping {
			f.discard(b)
			written++
			continue
		}

		nextWrite := (f.write + 1) % f.size
		if nextWrite == f.read {
			if f.partial < f.Available() {
				// Buffer full
				break
			}
			// The line fills the buffer and can never be framed
			f.DropLine()
			f.discard(b)
			written++
			continue
		}

		f.buf[f.write] = b
		f.write = nextWrite
		written++
		if isTerminator(b) {
			f.partial = 0
		} else {
			f.partial++
		}
	}
	return written
}

// DropLine discards the unterminated line at the tail of the buffer along
// with the rest of it as it arrives, up to and including its terminator.
// Complete lines already buffered are kept.
func (f *FifoBuffer) DropLine() {
	f.write = (f.write - f.partial + f.size) % f.size
	f.discarded += f.partial
	f.partial = 0
	f.dropping = true
}

func (f *FifoBuffer) discard(b byte) {
	f.discarded++
	if isTerminator(b) {
		f.dropping = false
	}
}

// Read reads up to len(data) bytes from the FIFO buffer
func (f *FifoBuffer) Read(data []byte) int {
	read := 0
	for i := range data {
		if f.read == f.write {
			// Buffer empty
			break
		}
		data[i] = f.buf[f.read]
		f.read = (f.read + 1) % f.size
		read++
	}
	f.clampPartial()
	return read
}

// ReadLine removes one complete line from the buffer without waiting for
// more input. The terminator is consumed and trailing blanks are trimmed;
// ok is false when no complete line is buffered.
//
// If the buffer is full and holds no terminator the bytes can never form a
// line, so the line is dropped through its terminator and counted in
// Discarded.
func (f *FifoBuffer) ReadLine() (line string, ok bool) {
	n := 0
	for i := f.read; i != f.write; i = (i + 1) % f.size {
		if isTerminator(f.buf[i]) {
			out := make([]byte, n)
			f.Read(out)
			f.Pop(1) // terminator
			return trimRight(out), true
		}
		n++
	}

	if f.Free() == 0 {
		f.DropLine()
	}
	return "", false
}

// Available returns the number of bytes available for reading
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Free returns the number of bytes available for writing
func (f *FifoBuffer) Free() int {
	return f.size - f.Available() - 1
}

// Discarded returns the number of bytes dropped as overlong or damaged lines
func (f *FifoBuffer) Discarded() int {
	return f.discarded
}

// Dropping reports whether input is being skipped up to the next terminator
func (f *FifoBuffer) Dropping() bool {
	return f.dropping
}

// Pop removes n bytes from the front
func (f *FifoBuffer) Pop(n int) {
	for i := 0; i < n && f.read != f.write; i++ {
		f.read = (f.read + 1) % f.size
	}
	f.clampPartial()
}

// IsEmpty returns true if the buffer is empty
func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

// Reset clears the buffer
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
	f.partial = 0
	f.dropping = false
}

// clampPartial keeps the tail line inside the buffered bytes after a raw
// Read or Pop consumed part of it
func (f *FifoBuffer) clampPartial() {
	if avail := f.Available(); f.partial > avail {
		f.partial = avail
	}
}

func isTerminator(c byte) bool {
	return c == LineFeed || c == CarriageReturn
}

func trimRight(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == ' ' || b[end-1] == '\t') {
		end--
	}
	return string(b[:end])
}
