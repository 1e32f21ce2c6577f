// Package dump formats the engine's final register/memory state into
// the human-readable core.dump file, and carries the immutable
// snapshot external callers receive at termination (spec.md §6,
// §9 "Global mutable state": callers only ever see these snapshots,
// never the live register file/memory). Grounded on
// original_source/simulator/src/processor.rs's coredump method.
package dump

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmchacon/ayusim/memory"
)

// Reason classifies why the engine stopped running.
type Reason int

const (
	ReasonHalt Reason = iota
	ReasonInvalidOpcode
	ReasonSpecialUnimplemented
	ReasonBreakpoint
)

// String implements fmt.Stringer for log/dump output.
func (r Reason) String() string {
	switch r {
	case ReasonHalt:
		return "halt"
	case ReasonInvalidOpcode:
		return "invalid-opcode"
	case ReasonSpecialUnimplemented:
		return "special-unimplemented"
	case ReasonBreakpoint:
		return "breakpoint"
	default:
		return "unknown"
	}
}

// Snapshot is the immutable final state of a terminated engine run.
type Snapshot struct {
	Registers [16]uint16
	Memory    [memory.Size]uint16
	Clock     uint64
	Reason    Reason
}

// WriteFile writes the human-readable core dump to path: a timestamp,
// the clock count, and every register and memory entry. at is passed
// in rather than computed internally so tests can supply a fixed
// instant (SPEC_FULL.md §8 Open Question 4).
func WriteFile(path string, s Snapshot, at time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Core dump at time: %s\n", at.Format(time.RFC3339))
	fmt.Fprintf(&b, "Stop reason: %s\n", s.Reason)
	fmt.Fprintf(&b, "Clock cycle: %d\n\n", s.Clock)
	b.WriteString("Registers:\n")
	for i, r := range s.Registers {
		fmt.Fprintf(&b, "R%02X: %04X\n", i, r)
	}
	b.WriteString("\nMemory:\n")
	for i, m := range s.Memory {
		fmt.Fprintf(&b, "M%04X: %04X\n", i, m)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
