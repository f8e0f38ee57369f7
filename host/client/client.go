// Package client talks to the stepper controller over its line protocol.
// Commands are written as text lines; the status lines the controller
// answers with are collected by a background reader.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"gostepper/command"
	"gostepper/host/serial"
	"gostepper/protocol"
)

// ErrTimeout is returned when the controller does not answer in time
var ErrTimeout = errors.New("controller response timeout")

// ErrClosed is returned after Close
var ErrClosed = errors.New("client closed")

// DefaultTimeout bounds the wait for the status lines of one command
const DefaultTimeout = time.Second

// LineHandler receives lines that are not status lines (banners, debug text)
type LineHandler func(line string)

// Client is a connection to one controller board
type Client struct {
	port   io.ReadWriteCloser
	motors int

	input      *protocol.FifoBuffer
	statusChan chan command.Status

	timeout     time.Duration
	lineHandler LineHandler

	writeMutex sync.Mutex
	execMutex  sync.Mutex

	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once
}

// New wraps an open port to a controller driving the given number of motors
// and starts the background reader
func New(port io.ReadWriteCloser, motors int) *Client {
	if motors < 1 {
		motors = 1
	}
	if motors > command.MaxMotors {
		motors = command.MaxMotors
	}

	c := &Client{
		port:       port,
		motors:     motors,
		input:      protocol.NewFifoBuffer(protocol.MessageMax),
		statusChan: make(chan command.Status, 64),
		timeout:    DefaultTimeout,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}

	go c.readLoop()

	return c
}

// Dial opens the serial device described by cfg and connects to it
func Dial(cfg *serial.Config, motors int) (*Client, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}

	// Opening the port resets an ESP32; give it time to boot, then drop
	// the boot log
	time.Sleep(1500 * time.Millisecond)
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to flush %s: %w", cfg.Device, err)
	}

	return New(port, motors), nil
}

// Motors returns the number of motors the client addresses
func (c *Client) Motors() int {
	return c.motors
}

// SetTimeout sets how long Exec waits for status lines
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// SetLineHandler sets the callback for non-status lines. It must be set
// before any traffic and is called from the reader goroutine.
func (c *Client) SetLineHandler(handler LineHandler) {
	c.lineHandler = handler
}

// Send writes one raw protocol line without waiting for an answer
func (c *Client) Send(line string) error {
	select {
	case <-c.stopChan:
		return ErrClosed
	default:
	}

	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	if _, err := c.port.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("failed to write %q: %w", line, err)
	}
	return nil
}

// Exec sends cmd and collects the status lines it produces, one per
// affected motor. A selector that is neither a single motor nor every
// motor is sent as one line per motor.
func (c *Client) Exec(ctx context.Context, cmd command.Command) ([]command.Status, error) {
	c.execMutex.Lock()
	defer c.execMutex.Unlock()

	if cmd.Op != command.OpZero && cmd.Selector&command.SelectAll(c.motors) == 0 {
		return nil, fmt.Errorf("%s: no motor selected", cmd.Op)
	}

	c.drain()

	cmds := []command.Command{cmd}
	if cmd.Selector != command.SelectAll(c.motors) {
		cmds = command.Split(cmd)
	}

	expected := 0
	for _, sub := range cmds {
		if err := c.Send(command.Format(sub)); err != nil {
			return nil, err
		}
		expected += c.expectedLines(sub)
	}

	return c.collect(ctx, expected)
}

// expectedLines returns how many status lines the controller answers cmd with
func (c *Client) expectedLines(cmd command.Command) int {
	switch cmd.Op {
	case command.OpZero:
		return c.motors
	case command.OpSetRunState:
		if cmd.Run == command.RunInvalid {
			return 0
		}
	case command.OpQuery:
		if cmd.Query == command.FieldInvalid {
			return 0
		}
	case command.OpUnknown:
		return 0
	}
	return (cmd.Selector & command.SelectAll(c.motors)).Count()
}

// collect waits for n status lines
func (c *Client) collect(ctx context.Context, n int) ([]command.Status, error) {
	statuses := make([]command.Status, 0, n)
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for len(statuses) < n {
		select {
		case st := <-c.statusChan:
			statuses = append(statuses, st)

		case <-timer.C:
			return statuses, fmt.Errorf("got %d of %d status lines: %w", len(statuses), n, ErrTimeout)

		case <-ctx.Done():
			return statuses, ctx.Err()

		case <-c.stopChan:
			return statuses, ErrClosed
		}
	}

	return statuses, nil
}

// drain drops status lines nobody waited for
func (c *Client) drain() {
	for {
		select {
		case <-c.statusChan:
		default:
			return
		}
	}
}

// readLoop continuously reads from the port and splits the input into lines
func (c *Client) readLoop() {
	defer close(c.doneChan)

	buffer := make([]byte, 256)

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		n, err := c.port.Read(buffer)
		if n > 0 {
			c.input.Write(buffer[:n])
			c.processLines()
		}
		if err != nil {
			if err == io.EOF {
				return
			}
			select {
			case <-c.stopChan:
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
}

// processLines dispatches every complete line in the input buffer
func (c *Client) processLines() {
	for {
		line, ok := c.input.ReadLine()
		if !ok {
			return
		}
		if line == "" {
			continue
		}

		st, err := command.ParseStatus(line)
		if err != nil {
			if c.lineHandler != nil {
				c.lineHandler(line)
			}
			continue
		}

		select {
		case c.statusChan <- st:
		default:
			// Channel full, drop oldest
			select {
			case <-c.statusChan:
			default:
			}
			c.statusChan <- st
		}
	}
}

// Close stops the reader and closes the port
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopChan)
		err = c.port.Close()
		<-c.doneChan
	})
	return err
}
