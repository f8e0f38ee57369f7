// Command stepsim runs the controller firmware on the host with virtual
// motors. Commands are read from stdin and status lines written to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"gostepper/config"
	"gostepper/core"
	"gostepper/host/sim"
)

var (
	configPath = flag.String("config", "", "JSON board configuration (default: reference ESP32 board)")
	verbose    = flag.Bool("verbose", false, "Write debug output to stderr")
	dump       = flag.Bool("dump", false, "Dump the motor event ring to stderr on exit")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to read config: %v", err)
		}
		cfg, err = config.LoadConfig(data)
		if err != nil {
			log.Fatalf("Invalid config %s: %v", *configPath, err)
		}
	}

	core.SetDebugWriter(func(s string) {
		fmt.Fprintln(os.Stderr, s)
	})
	core.SetDebugEnabled(*verbose)

	board, err := sim.NewBoard(cfg)
	if err != nil {
		log.Fatalf("Failed to create board: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = board.Run(ctx, os.Stdin, os.Stdout)

	if *dump {
		core.DumpEventRing()
	}
	if err != nil && err != context.Canceled {
		log.Fatalf("Simulator error: %v", err)
	}
}
