package selection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"cloudpick/internal/domain"
)

// Exit statuses fzf uses for "no match" and "aborted by the user".
const (
	exitNoMatch     = 1
	exitInterrupted = 130
)

// Runner runs the finder with candidates on stdin and returns its stdout.
type Runner func(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, error)

// FZF is a domain.Selector backed by the fzf binary (or a compatible finder).
type FZF struct {
	binary string
	height string
	run    Runner
}

var _ domain.Selector = (*FZF)(nil)

// NewFZF builds a selector. height is passed to --height ("40%", "20").
func NewFZF(binary, height string) *FZF {
	return &FZF{binary: binary, height: height, run: execRunner}
}

// WithRunner replaces the process runner (tests).
func (f *FZF) WithRunner(r Runner) *FZF {
	f.run = r
	return f
}

// Select shows candidates and returns the chosen lines as emitted by the finder.
func (f *FZF) Select(ctx context.Context, candidates []string, multiple bool, prompt string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	args := []string{"--layout", "reverse", "--prompt", prompt + "> "}
	if f.height != "" {
		args = append(args, "--height", f.height)
	}
	if multiple {
		args = append(args, "--multi")
	}

	stdin := strings.NewReader(strings.Join(candidates, "\n") + "\n")
	out, err := f.run(ctx, f.binary, args, stdin)
	if err != nil {
		var coded interface{ ExitCode() int }
		if errors.As(err, &coded) {
			switch coded.ExitCode() {
			case exitNoMatch, exitInterrupted:
				return nil, nil
			}
		}
		return nil, fmt.Errorf("selector %s: %w", f.binary, err)
	}
	return splitLines(out), nil
}

func splitLines(out []byte) []string {
	text := strings.TrimSuffix(string(out), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func execRunner(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	return stdout.Bytes(), err
}
