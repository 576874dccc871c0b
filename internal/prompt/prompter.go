package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNoInput is returned when the reader ends before a valid ordinal is read.
var ErrNoInput = errors.New("no publisher selected")

// Prompter reads publisher ordinals line by line, re-asking until the input
// is valid.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter returns a line-based prompter on in and out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Ordinal asks for a publisher ordinal in [1, max]. Invalid input is reported
// and asked again; only end of input or a cancelled ctx stop the loop.
func (p *Prompter) Ordinal(ctx context.Context, max int) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if _, err := fmt.Fprint(p.out, "Input publisher ID: "); err != nil {
			return 0, err
		}

		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return 0, err
			}
			return 0, ErrNoInput
		}

		n, err := ParseOrdinal(p.in.Text(), max)
		if err == nil {
			return n, nil
		}
		if _, err := fmt.Fprintln(p.out, Message(err, max)); err != nil {
			return 0, err
		}
	}
}
