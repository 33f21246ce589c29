// Package prompt provides synchronous operator prompts.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ErrNoInput is returned when the input stream ends before an answer is read.
var ErrNoInput = errors.New("no input available")

// Prompter asks the operator questions. An empty answer accepts the shown default.
type Prompter interface {
	// Ask returns the answer to question, or def when the answer is empty.
	Ask(ctx context.Context, question, def string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string, defaultYes bool) (bool, error)

	// Acknowledge shows message and blocks until the operator confirms.
	Acknowledge(ctx context.Context, message string) error
}

// New returns a terminal prompter when in is a TTY and a line prompter otherwise.
func New(in *os.File, out *os.File) Prompter {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return NewTerminal(in, out)
	}
	return NewLine(in, out)
}

// Line reads newline-terminated answers from a plain stream.
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine creates a line prompter.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Ask implements Prompter.
func (p *Line) Ask(ctx context.Context, question, def string) (string, error) {
	if def != "" {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		_, _ = fmt.Fprintf(p.out, "%s: ", question)
	}

	answer, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm implements Prompter. Unrecognised answers are asked again.
func (p *Line) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	for {
		_, _ = fmt.Fprintf(p.out, "%s %s: ", question, yesNoHint(defaultYes))

		answer, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}

		if value, ok := parseYesNo(answer, defaultYes); ok {
			return value, nil
		}
		_, _ = fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

// Acknowledge implements Prompter.
func (p *Line) Acknowledge(ctx context.Context, message string) error {
	_, _ = fmt.Fprintf(p.out, "%s\nPress Enter to continue...", message)
	_, err := p.readLine(ctx)
	_, _ = fmt.Fprintln(p.out)
	return err
}

// readLine blocks until a line is read or ctx is done. On cancellation the
// reader goroutine stays blocked on p.in, so a Line must not be reused after
// a cancelled read.
func (p *Line) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			if !errors.Is(r.err, io.EOF) {
				return "", fmt.Errorf("read input: %w", r.err)
			}
			if r.line == "" {
				return "", ErrNoInput
			}
		}
		return strings.TrimSpace(r.line), nil
	}
}

func yesNoHint(defaultYes bool) string {
	if defaultYes {
		return "[Y/n]"
	}
	return "[y/N]"
}

func parseYesNo(answer string, defaultYes bool) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return defaultYes, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}
