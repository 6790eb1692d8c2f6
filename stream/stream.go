// Package stream reads the sequence of logical addresses to translate.
package stream

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// A ParseError reports a line of the address stream that is not a
// non-negative integer.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid address %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Read parses one address per line, in order. Blank lines are skipped. The
// whole stream is parsed before returning, so a bad line fails the read
// before any address is used.
func Read(r io.Reader) ([]uint64, error) {
	addrs := make([]uint64, 0)
	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		addr, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return nil, &ParseError{Line: line, Text: text, Err: err}
		}

		addrs = append(addrs, addr)
	}

	err := scanner.Err()
	if err != nil {
		return nil, err
	}

	return addrs, nil
}

// ReadFile reads the addresses stored in a file.
func ReadFile(path string) ([]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	addrs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return addrs, nil
}
