package env

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

var _ Executor = LocalExecutor{}

// Executor runs external commands: resolving them on PATH and handing
// them the terminal. Callers hold an Executor so tests can substitute
// a fake for the real binary.
type Executor interface {
	LookPath(name string) (string, error)
	RunInteractive(ctx context.Context, name string, args ...string) error
}

// LocalExecutor runs commands on the local machine.
type LocalExecutor struct{}

func (LocalExecutor) LookPath(name string) (string, error) {
	return LookPath(name)
}

func (LocalExecutor) RunInteractive(ctx context.Context, name string, args ...string) error {
	return RunInteractive(ctx, name, args...)
}

// LookPath resolves name on PATH.
func LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("looking up '%s': %w", name, err)
	}
	return path, nil
}

// RunInteractive hands the terminal to the named command until it
// exits. The command inherits this process's stdin, stdout, and
// stderr. A non-zero exit comes back as an *exec.ExitError.
func RunInteractive(ctx context.Context, name string, args ...string) error {
	// Ctrl+C belongs to the child while it owns the terminal.
	signal.Ignore(syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Reset(syscall.SIGINT, syscall.SIGQUIT)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
