// sidestacker-init bootstraps a fresh environment: it verifies the
// database client is installed, creates the data directory and an
// empty database file, and opens an interactive session against it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"

	"github.com/joho/godotenv"

	"github.com/sidestacker/sidestacker/bootstrap"
	"github.com/sidestacker/sidestacker/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// A failing interactive session propagates its own exit code.
		var ee *exec.ExitError
		if errors.As(err, &ee) && ee.ExitCode() > 0 {
			os.Exit(ee.ExitCode())
		}
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	conf, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	clientArg := flag.String("client", "", "database client binary; overrides config")
	dirArg := flag.String("dir", "", "data directory; overrides config")
	fileArg := flag.String("file", "", "database file name; overrides config")
	flag.Parse()

	if *clientArg != "" {
		conf.Bootstrap.Client = *clientArg
	}
	if *dirArg != "" {
		conf.Bootstrap.Dir = *dirArg
	}
	if *fileArg != "" {
		conf.Bootstrap.File = *fileArg
	}

	return bootstrap.New(conf).Go(context.Background())
}
