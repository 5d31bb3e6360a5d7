// Package prompt reads free text and confirmations from the terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloudpick/internal/domain"
)

// Terminal prompts on out and reads answers line by line from in.
type Terminal struct {
	in      *bufio.Reader
	out     io.Writer
	pending chan lineResult
}

var _ domain.Prompter = (*Terminal)(nil)

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// PromptLine returns one line of input without the trailing newline. Input
// closed before any text is io.EOF.
func (t *Terminal) PromptLine(ctx context.Context, message string) (string, error) {
	if _, err := fmt.Fprintf(t.out, "%s: ", message); err != nil {
		return "", err
	}
	return t.readLine(ctx)
}

// Confirm asks a yes/no question. An empty answer takes defaultYes.
func (t *Terminal) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	for {
		if _, err := fmt.Fprintf(t.out, "%s %s ", message, hint); err != nil {
			return false, err
		}
		answer, err := t.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(t.out, "please answer y or n")
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine waits for the next line. A read abandoned by a cancelled context
// stays pending and is handed to the next caller, so the reader is never
// used by two goroutines at once.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	if t.pending == nil {
		ch := make(chan lineResult, 1)
		t.pending = ch
		go func() {
			line, err := t.in.ReadString('\n')
			if err == io.EOF && line != "" {
				err = nil
			}
			ch <- lineResult{strings.TrimRight(line, "\r\n"), err}
		}()
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-t.pending:
		t.pending = nil
		return r.line, r.err
	}
}
