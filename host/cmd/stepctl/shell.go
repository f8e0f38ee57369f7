package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"

	"gostepper/host/client"
)

const defaultWait = 30 * time.Second

var shellBuiltins = map[string]bool{
	"quit": true, "exit": true, "q": true,
	"help": true, "?": true,
	"gesture": true, "read": true, "wait": true, "sleep": true,
}

// runShell reads commands from in until EOF or quit. Built-ins are split
// like shell words; anything else is sent verbatim as a protocol line.
func runShell(ctx context.Context, c *client.Client, in io.Reader) error {
	fmt.Println("Enter protocol lines or commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(in)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		quit, err := runShellLine(ctx, c, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if quit {
			fmt.Println("Goodbye!")
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

// runShellLine executes one shell line; quit is true when the shell should end
func runShellLine(ctx context.Context, c *client.Client, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	if !shellBuiltins[fields[0]] {
		return false, runLine(ctx, c, line)
	}

	words, err := shlex.Split(line)
	if err != nil {
		return false, fmt.Errorf("parse %q: %w", line, err)
	}

	switch words[0] {
	case "quit", "exit", "q":
		return true, nil

	case "help", "?":
		printShellHelp()

	case "gesture":
		return false, runGesture(ctx, c, words[1:])

	case "read":
		return false, runRead(ctx, c, words[1:])

	case "wait":
		limit := defaultWait
		if len(words) > 1 {
			if limit, err = time.ParseDuration(words[1]); err != nil {
				return false, fmt.Errorf("wait: %w", err)
			}
		}
		return false, waitIdle(ctx, c, limit)

	case "sleep":
		if len(words) != 2 {
			return false, fmt.Errorf("sleep: expected a duration")
		}
		d, err := time.ParseDuration(words[1])
		if err != nil {
			return false, fmt.Errorf("sleep: %w", err)
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(d):
		}
	}

	return false, nil
}

func printShellHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  <sel>|<OP>: <payload>  - Send a protocol line, e.g. 2|GOAL: 100 or GET: POS")
	fmt.Println("  gesture <name>         - Play rock, paper, scissors or recalibrate")
	fmt.Println("  read <finger>          - Print position, speed and goal of a finger")
	fmt.Println("  wait [timeout]         - Wait until no motor runs (default 30s)")
	fmt.Println("  sleep <duration>       - Pause, e.g. sleep 500ms")
	fmt.Println("  quit/exit/q            - Exit the shell")
	fmt.Println()
}
