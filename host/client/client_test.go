package client

import (
	"context"
	"errors"
	"io"
	"reflect"
	"sync"
	"testing"
	"time"

	"gostepper/command"
	"gostepper/config"
	"gostepper/control"
	"gostepper/core"
)

// simPort runs a controller with virtual motors behind an in-memory port.
// Every write feeds the controller and advances the simulated clock.
type simPort struct {
	ctl *control.Controller
	r   *io.PipeReader
	w   *io.PipeWriter

	mu      sync.Mutex
	written []string
	ticks   int // control cycles per write
}

func newSimPort(t *testing.T, motors int) *simPort {
	t.Helper()
	core.SetTime(0)

	cfg := config.Default()
	cfg.Motors = cfg.Motors[:motors]
	for i := range cfg.Motors {
		cfg.Motors[i].Pins = [core.CoilCount]uint8{}
	}

	ctl, _, err := control.NewFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	r, w := io.Pipe()
	return &simPort{ctl: ctl, r: r, w: w, ticks: 500}
}

func (p *simPort) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *simPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	p.written = append(p.written, string(b))
	p.mu.Unlock()

	p.ctl.Feed(b)
	for i := 0; i < p.ticks; i++ {
		core.AdvanceTime(100)
		p.ctl.Tick()
	}
	if out := p.ctl.Output(); out != nil {
		if _, err := p.w.Write(out); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

func (p *simPort) Close() error {
	p.w.Close()
	return p.r.Close()
}

func (p *simPort) lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.written...)
}

func newSimClient(t *testing.T, motors int) (*Client, *simPort) {
	t.Helper()
	port := newSimPort(t, motors)
	c := New(port, motors)
	c.SetTimeout(2 * time.Second)
	t.Cleanup(func() { c.Close() })
	return c, port
}

func TestExecSingleMotor(t *testing.T) {
	c, _ := newSimClient(t, 5)

	statuses, err := c.Exec(context.Background(), command.SetGoal(command.SelectMotor(2), 100))
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}

	want := []command.Status{{Motor: 2, Label: command.LabelGoal, Value: "100"}}
	if !reflect.DeepEqual(statuses, want) {
		t.Errorf("Expected %+v, got %+v", want, statuses)
	}
}

func TestExecBroadcastSendsOneLine(t *testing.T) {
	c, port := newSimClient(t, 4)

	statuses, err := c.Exec(context.Background(), command.SetSpeed(command.SelectAll(4), 300))
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if len(statuses) != 4 {
		t.Fatalf("Expected 4 status lines, got %d", len(statuses))
	}
	for i, st := range statuses {
		if st.Motor != command.MotorID(i+1) || st.Value != "300.00" {
			t.Errorf("Unexpected status %+v", st)
		}
	}

	if lines := port.lines(); !reflect.DeepEqual(lines, []string{"SPEED: 300\n"}) {
		t.Errorf("Expected one broadcast line, got %q", lines)
	}
}

func TestExecSplitsPartialSelection(t *testing.T) {
	c, port := newSimClient(t, 4)
	sel := command.SelectMotor(3) | command.SelectMotor(4)

	statuses, err := c.Exec(context.Background(), command.SetGoal(sel, 2000))
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("Expected 2 status lines, got %+v", statuses)
	}

	want := []string{"3|GOAL: 2000\n", "4|GOAL: 2000\n"}
	if lines := port.lines(); !reflect.DeepEqual(lines, want) {
		t.Errorf("Expected %q, got %q", want, lines)
	}
}

func TestExecRejectsEmptySelection(t *testing.T) {
	c, port := newSimClient(t, 2)

	if _, err := c.Exec(context.Background(), command.SetGoal(0, 5)); err == nil {
		t.Error("Expected error for empty selection")
	}
	if len(port.lines()) != 0 {
		t.Error("Expected nothing written")
	}
}

func TestZeroExpectsEveryMotor(t *testing.T) {
	c, _ := newSimClient(t, 3)

	statuses, err := c.Exec(context.Background(), command.Zero())
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if len(statuses) != 3 {
		t.Errorf("Expected 3 position lines, got %+v", statuses)
	}
}

func TestMoveAndWaitIdle(t *testing.T) {
	c, _ := newSimClient(t, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.SetGoal(ctx, command.SelectMotor(1), 100); err != nil {
		t.Fatalf("SetGoal failed: %v", err)
	}
	if err := c.Move(ctx, command.SelectMotor(1)); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if err := c.WaitIdle(ctx, command.SelectAll(2), time.Millisecond); err != nil {
		t.Fatalf("WaitIdle failed: %v", err)
	}

	positions, err := c.Positions(ctx, command.SelectAll(2))
	if err != nil {
		t.Fatalf("Positions failed: %v", err)
	}
	want := map[command.MotorID]int64{1: 100, 2: 0}
	if !reflect.DeepEqual(positions, want) {
		t.Errorf("Expected %v, got %v", want, positions)
	}
}

func TestWaitIdleHonorsContext(t *testing.T) {
	c, port := newSimClient(t, 1)
	port.ticks = 1 // barely any motion per poll

	ctx := context.Background()
	if err := c.SetGoal(ctx, command.SelectMotor(1), 100000); err != nil {
		t.Fatalf("SetGoal failed: %v", err)
	}
	if err := c.Move(ctx, command.SelectMotor(1)); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := c.WaitIdle(ctx, command.SelectMotor(1), 5*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

// silentPort accepts writes and never answers
type silentPort struct {
	closed chan struct{}
	once   sync.Once
}

func (p *silentPort) Read(b []byte) (int, error) {
	<-p.closed
	return 0, io.EOF
}

func (p *silentPort) Write(b []byte) (int, error) { return len(b), nil }

func (p *silentPort) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func TestExecTimeout(t *testing.T) {
	c := New(&silentPort{closed: make(chan struct{})}, 2)
	defer c.Close()
	c.SetTimeout(20 * time.Millisecond)

	_, err := c.Query(context.Background(), command.SelectAll(2), command.FieldPos)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
}

func TestSendAfterClose(t *testing.T) {
	c := New(&silentPort{closed: make(chan struct{})}, 1)
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Send("GET: POS"); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	// Second close is a no-op
	if err := c.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}

// scriptPort plays back fixed bytes and records writes
type scriptPort struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *scriptPort) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *scriptPort) Write(b []byte) (int, error) { return len(b), nil }
func (p *scriptPort) Close() error {
	p.w.Close()
	return p.r.Close()
}

func TestNonStatusLinesGoToHandler(t *testing.T) {
	r, w := io.Pipe()
	c := New(&scriptPort{r: r, w: w}, 1)
	defer c.Close()

	got := make(chan string, 4)
	c.SetLineHandler(func(line string) { got <- line })

	go w.Write([]byte("gostepper 0.3.0 ready\r\nS1 Pos: 7\n"))

	select {
	case line := <-got:
		if line != "gostepper 0.3.0 ready" {
			t.Errorf("Unexpected line %q", line)
		}
	case <-time.After(time.Second):
		t.Fatal("Handler not called")
	}

	statuses, err := c.collect(context.Background(), 1)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if statuses[0].Motor != 1 || statuses[0].Value != "7" {
		t.Errorf("Unexpected status %+v", statuses[0])
	}
}
