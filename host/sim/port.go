package sim

import (
	"context"
	"io"
)

// Port connects a host client to a board running in the background. It
// implements serial.Port.
type Port struct {
	toBoard   *io.PipeWriter
	fromBoard *io.PipeReader
	cancel    context.CancelFunc
	done      chan error
}

// Start runs b in the background and returns the host end of its link
func Start(b *Board) *Port {
	boardIn, toBoard := io.Pipe()
	fromBoard, boardOut := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	p := &Port{
		toBoard:   toBoard,
		fromBoard: fromBoard,
		cancel:    cancel,
		done:      make(chan error, 1),
	}

	go func() {
		err := b.Run(ctx, boardIn, boardOut)
		boardOut.CloseWithError(io.EOF)
		p.done <- err
	}()

	return p
}

// Read reads status lines from the board
func (p *Port) Read(b []byte) (int, error) {
	return p.fromBoard.Read(b)
}

// Write sends command bytes to the board
func (p *Port) Write(b []byte) (int, error) {
	return p.toBoard.Write(b)
}

// Flush is a no-op, the pipe holds no stale input
func (p *Port) Flush() error {
	return nil
}

// Close stops the board and closes the link
func (p *Port) Close() error {
	p.cancel()
	p.toBoard.Close()
	p.fromBoard.Close()
	<-p.done
	return nil
}
