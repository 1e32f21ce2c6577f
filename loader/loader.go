// Package loader parses an AYU program text file into a memory image.
// The format and stripping rules are specified in spec.md §6 and
// grounded on original_source/simulator/src/instructions.rs's
// parse_instruction, re-expressed with Go's standard strings/strconv
// rather than transliterated line for line.
package loader

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jmchacon/ayusim/memory"
)

// LoadError reports a fatal problem loading a program file: the file
// is missing/unreadable, or a line failed to parse as a 1-4 digit hex
// instruction word. Per spec.md §7 this is fatal at construction time,
// unlike DecodeError/SpecialUnimplemented which are runtime FSM
// outcomes, not process errors.
type LoadError struct {
	Path string
	Line int // 1-indexed; 0 if the error isn't line-specific.
	Text string
	Err  error
}

// Error implements the error interface.
func (e LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %q: line %d %q: %v", e.Path, e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("load %q: %v", e.Path, e.Err)
}

// Unwrap allows errors.Is/As to see the underlying cause.
func (e LoadError) Unwrap() error {
	return e.Err
}

// ParseLine strips an AYU program line down to its instruction word.
// It first strips all whitespace, then drops everything from '#' to
// end of line as a comment. A line that is empty after stripping
// (blank or comment-only) returns ok=false with no error. Otherwise
// the remaining token is parsed as a 1-4 digit hexadecimal number.
func ParseLine(line string) (word uint16, ok bool, err error) {
	stripped := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\r' {
			return -1
		}
		return r
	}, line)
	if i := strings.IndexByte(stripped, '#'); i >= 0 {
		stripped = stripped[:i]
	}
	if stripped == "" {
		return 0, false, nil
	}
	if len(stripped) > 4 {
		return 0, false, fmt.Errorf("instruction %q exceeds 4 hex digits", stripped)
	}
	v, err := strconv.ParseUint(stripped, 16, 16)
	if err != nil {
		return 0, false, fmt.Errorf("invalid hex instruction %q: %w", stripped, err)
	}
	return uint16(v), true, nil
}

// Load reads path and returns a memory image with the parsed
// instructions placed contiguously starting at address 0. Unused
// memory is zero.
func Load(path string) (memory.Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadError{Path: path, Err: err}
	}
	defer f.Close()

	var image [memory.Size]uint16
	addr := 0
	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		word, ok, err := ParseLine(line)
		if err != nil {
			return nil, LoadError{Path: path, Line: lineNo, Text: line, Err: err}
		}
		if !ok {
			continue
		}
		if addr >= memory.Size {
			return nil, LoadError{Path: path, Line: lineNo, Text: line, Err: fmt.Errorf("program exceeds %d words of memory", memory.Size)}
		}
		image[addr] = word
		addr++
	}
	if err := scanner.Err(); err != nil {
		return nil, LoadError{Path: path, Err: err}
	}
	return memory.NewFromImage(image[:]), nil
}
