// Package prompt asks the user which publisher to report on.
package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotInteger is returned when the input is not a single integer.
	ErrNotInteger = errors.New("not an integer")

	// ErrOutOfRange is returned when the integer is outside [1, max].
	ErrOutOfRange = errors.New("out of range")
)

// ParseOrdinal parses a 1-based publisher ordinal. The input must hold one
// integer token and nothing else apart from surrounding whitespace.
func ParseOrdinal(input string, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotInteger, input)
	}
	if n < 1 || n > max {
		return 0, fmt.Errorf("%w: %d not in [1, %d]", ErrOutOfRange, n, max)
	}
	return n, nil
}

// Message returns the text shown to the user for a ParseOrdinal error.
func Message(err error, max int) string {
	if errors.Is(err, ErrOutOfRange) {
		return fmt.Sprintf("Publisher ID must be between 1 and %d", max)
	}
	return "Incorrect input. Try again..."
}
