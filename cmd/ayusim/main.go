// ayusim runs an AYU program file to completion and prints its final
// register state, modeled on oisee-z80-optimizer/cmd/z80opt/main.go's
// single-binary cobra command shape.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmchacon/ayusim/engine"
	"github.com/jmchacon/ayusim/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		file       string
		logLevel   string
		logFile    string
		breakpoint uint64
		dumpToFile bool
	)

	cmd := &cobra.Command{
		Use:   "ayusim",
		Short: "Simulate an AYU program to completion and report its final state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var breakpointPtr *uint64
			if breakpoint > 0 {
				breakpointPtr = &breakpoint
			}

			log, closeLog, err := setupLogger(logLevel, logFile)
			if err != nil {
				return err
			}
			defer closeLog()

			log.Info("starting ayusim", "file", file, "breakpoint", breakpoint, "dump_to_file", dumpToFile)

			eng, err := engine.NewFromFile(file, breakpointPtr, dumpToFile, log)
			if err != nil {
				return fmt.Errorf("loading %s: %w", file, err)
			}

			snapshot, err := eng.Run(context.Background())
			if err != nil {
				return fmt.Errorf("running %s: %w", file, err)
			}

			fmt.Printf("Stopped after %d clocks: %s\n", snapshot.Clock, snapshot.Reason)
			for i, r := range snapshot.Registers {
				fmt.Printf("R%02X: %04X\n", i, r)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&file, "file", "example_bytecode/basic_addition.ayu", "AYU program file to run")
	flags.StringVar(&logLevel, "log", "info", "terminal log level: trace, debug, info, warn, error")
	flags.StringVar(&logFile, "log-file", "ayusim.trace.log", "path to a file that always receives trace-level logs")
	flags.Uint64Var(&breakpoint, "breakpoint", 0, "stop after this many clocks (0 means never)")
	flags.BoolVar(&dumpToFile, "dump", false, "write core.dump on termination")

	return cmd
}

// setupLogger builds the two-sink logger described in SPEC_FULL.md
// §6: the terminal at the user-requested level, and logFile always
// at Trace, regardless of --log. Grounded on
// original_source/simulator/src/main.rs's CombinedLogger of a
// TermLogger plus an always-Trace WriteLogger.
func setupLogger(level, logFile string) (*slog.Logger, func(), error) {
	term := logger.NewHandler(os.Stderr, logger.ParseLevel(level))

	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", logFile, err)
	}
	file := logger.NewHandler(f, logger.LevelTrace)

	log := logger.New(logger.NewFanout(term, file))
	closeFn := func() {
		_ = f.Close()
	}
	return log, closeFn, nil
}
