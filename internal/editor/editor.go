// Package editor opens an external text editor on a scratch file.
package editor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"cloudpick/internal/domain"
)

// Runner starts the editor on path and waits for it to exit.
type Runner func(ctx context.Context, argv []string) error

// External is a domain.Editor that runs a user-configured command.
type External struct {
	command string
	tempDir string
	run     Runner
}

var _ domain.Editor = (*External)(nil)

// New returns an editor running command, falling back to $VISUAL, $EDITOR
// and vi when command is empty.
func New(command string) *External {
	return &External{command: command, run: execRunner}
}

// WithRunner replaces the process runner (tests).
func (e *External) WithRunner(r Runner) *External {
	e.run = r
	return e
}

// WithTempDir places scratch files in dir instead of os.TempDir.
func (e *External) WithTempDir(dir string) *External {
	e.tempDir = dir
	return e
}

// EditText writes initial to a fresh temp file, runs the editor on it and
// returns the saved content. The file is removed on every exit path.
func (e *External) EditText(ctx context.Context, initial, ext string) (string, error) {
	argv, err := e.argv()
	if err != nil {
		return "", err
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f, err := os.CreateTemp(e.tempDir, "cloudpick-*"+ext)
	if err != nil {
		return "", fmt.Errorf("editor: create scratch file: %w", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()

	if _, err := f.WriteString(initial); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("editor: write scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("editor: close scratch file: %w", err)
	}

	if err := e.run(ctx, append(argv, path)); err != nil {
		return "", fmt.Errorf("editor %s: %w", argv[0], err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("editor: read back: %w", err)
	}
	return string(b), nil
}

func (e *External) argv() ([]string, error) {
	command := e.command
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if command != "" {
			break
		}
		command = os.Getenv(env)
	}
	if command == "" {
		command = "vi"
	}
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("editor command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("editor command %q is empty", command)
	}
	return argv, nil
}

func execRunner(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
