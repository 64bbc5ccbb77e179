// Package bootstrap performs the one-time environment setup: it
// verifies the database client is installed, creates the data
// directory and an empty database file, and hands the user an
// interactive session against it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/sidestacker/sidestacker/config"
	"github.com/sidestacker/sidestacker/env"
)

// Bootstrap runs the setup sequence. Steps are strictly sequential
// and fail fast: nothing is retried, cleaned up, or rolled back.
type Bootstrap struct {
	// Client is the database client binary, resolved on PATH.
	Client string
	// Dir is the data directory. It must not already exist.
	Dir string
	// File is the database file name inside Dir.
	File string

	// Exec resolves and runs the client; tests substitute a fake.
	Exec env.Executor

	Stderr io.Writer
}

func New(conf *config.Config) *Bootstrap {
	return &Bootstrap{
		Client: conf.Bootstrap.Client,
		Dir:    conf.Bootstrap.Dir,
		File:   conf.Bootstrap.File,
		Exec:   env.LocalExecutor{},
		Stderr: os.Stderr,
	}
}

// Go runs the four setup steps in order. The returned error is the
// first step's failure; the interactive session's exit error is
// passed through unwrapped so callers can propagate its exit code.
func (b *Bootstrap) Go(ctx context.Context) error {
	client, err := b.Exec.LookPath(b.Client)
	if err != nil {
		return fmt.Errorf("'%s' is required but was not found on PATH: %w", b.Client, err)
	}

	if err := os.Mkdir(b.Dir, 0o755); err != nil {
		return fmt.Errorf("creating '%s': %w", b.Dir, err)
	}

	path := filepath.Join(b.Dir, b.File)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating '%s': %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing '%s': %w", path, err)
		}
	} else if err != nil {
		return fmt.Errorf("checking '%s': %w", path, err)
	}

	if err := b.Exec.RunInteractive(ctx, client, path); err != nil {
		return err
	}

	size := uint64(0)
	if fi, err := os.Stat(path); err == nil {
		size = uint64(fi.Size())
	}
	fmt.Fprintf(b.Stderr, "sidestacker environment ready: %s (%s)\n", path, humanize.Bytes(size))

	return nil
}
