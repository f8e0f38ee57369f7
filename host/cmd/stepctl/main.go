// Command stepctl controls a gostepper board from the host: it sends raw
// protocol lines, plays hand gestures, reads finger state, charts motor
// positions and offers an interactive shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gostepper/command"
	"gostepper/config"
	"gostepper/host/client"
	"gostepper/host/hand"
	"gostepper/host/monitor"
	"gostepper/host/serial"
	"gostepper/host/sim"
)

var (
	device     = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud       = flag.Int("baud", 0, "Baud rate (default: from config)")
	configPath = flag.String("config", "", "JSON board configuration (default: reference ESP32 board)")
	simulate   = flag.Bool("sim", false, "Talk to an in-process simulated board instead of a device")
	timeout    = flag.Duration("timeout", client.DefaultTimeout, "Time to wait for status lines")
	hz         = flag.Int("hz", 20, "Poll rate of watch")
	verbose    = flag.Bool("verbose", false, "Print non-status lines from the board")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <command> [args]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  send <line>                              Send one protocol line, print the status lines")
	fmt.Fprintln(os.Stderr, "  gesture <rock|paper|scissors|recalibrate>  Play a hand gesture")
	fmt.Fprintln(os.Stderr, "  read <finger>                            Print position, speed and goal of a finger")
	fmt.Fprintln(os.Stderr, "  watch                                    Chart motor positions live")
	fmt.Fprintln(os.Stderr, "  shell                                    Interactive shell")
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	c, err := connect(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := flag.Args()
	switch args[0] {
	case "send":
		err = runLine(ctx, c, strings.Join(args[1:], " "))
	case "gesture":
		err = runGesture(ctx, c, args[1:])
	case "read":
		err = runRead(ctx, c, args[1:])
	case "watch":
		err = runWatch(ctx, c, cfg)
	case "shell":
		err = runShell(ctx, c, os.Stdin)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return config.LoadConfig(data)
}

// connect opens the configured link: a serial device or a simulated board
func connect(cfg *config.Config) (*client.Client, error) {
	var c *client.Client

	if *simulate {
		board, err := sim.NewBoard(cfg)
		if err != nil {
			return nil, err
		}
		c = client.New(sim.Start(board), len(cfg.Motors))
	} else {
		serialCfg := serial.DefaultConfig(*device)
		serialCfg.Baud = cfg.Baud
		if *baud > 0 {
			serialCfg.Baud = *baud
		}

		fmt.Fprintf(os.Stderr, "Connecting to %s at %d baud...\n", serialCfg.Device, serialCfg.Baud)
		var err error
		c, err = client.Dial(serialCfg, len(cfg.Motors))
		if err != nil {
			return nil, err
		}
	}

	c.SetTimeout(*timeout)
	if *verbose {
		c.SetLineHandler(func(line string) {
			fmt.Fprintf(os.Stderr, "< %s\n", line)
		})
	}
	return c, nil
}

// runLine parses a protocol line, sends it and prints the answer
func runLine(ctx context.Context, c *client.Client, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return fmt.Errorf("empty line")
	}

	cmd := command.NewParser(c.Motors()).ParseLine(line)
	if cmd.Op == command.OpUnknown {
		// The board ignores it; send it anyway for firmware debugging
		return c.Send(line)
	}

	statuses, err := c.Exec(ctx, cmd)
	for _, st := range statuses {
		fmt.Printf("S%d %s: %s\n", st.Motor, st.Label, st.Value)
	}
	return err
}

func runGesture(ctx context.Context, c *client.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("gesture: expected one of %v", hand.Gestures)
	}
	return hand.New(c).Perform(ctx, hand.Gesture(args[0]))
}

func runRead(ctx context.Context, c *client.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("read: expected a finger number")
	}
	finger, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("read: invalid finger %q: %w", args[0], err)
	}

	r, err := hand.New(c).Read(ctx, finger)
	if err != nil {
		return err
	}
	fmt.Printf("Finger %d: pos %d, speed %.2f, goal %d\n", r.Finger, r.Pos, r.Speed, r.Goal)
	return nil
}

func runWatch(ctx context.Context, c *client.Client, cfg *config.Config) error {
	poller := monitor.NewPoller(c, command.SelectAll(len(cfg.Motors)), *hz)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := poller.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Poller error: %v", err)
		}
	}()

	p := tea.NewProgram(monitor.NewModel(poller, -hand.Overtravel/10, hand.Overtravel), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running monitor: %w", err)
	}
	return nil
}

// waitIdle waits for every motor to stop, at most limit
func waitIdle(ctx context.Context, c *client.Client, limit time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()
	return c.WaitIdle(ctx, command.SelectAll(c.Motors()), hand.IdlePoll)
}
