// sidestacker-client connects a player to a game server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sidestacker/sidestacker/client"
	"github.com/sidestacker/sidestacker/config"
	"github.com/sidestacker/sidestacker/env"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	conf, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addrArg := flag.String("addr", "", "server address; overrides config")
	flag.Parse()

	if *addrArg != "" {
		conf.Client.Addr = *addrArg
	}

	ctx := env.NewSigctx()

	session, err := client.Dial(ctx, conf.Client.Addr)
	if err != nil {
		return err
	}

	return session.Play(ctx)
}
