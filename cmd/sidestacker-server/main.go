// sidestacker-server hosts remote games of SideStacker.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sidestacker/sidestacker/config"
	"github.com/sidestacker/sidestacker/db"
	"github.com/sidestacker/sidestacker/env"
	"github.com/sidestacker/sidestacker/server"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, flag.ErrHelp) {
		panic(err)
	}
}

func run() error {
	godotenv.Load()

	conf, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addrArg := flag.String("addr", "", "listen address; overrides config")
	statusArg := flag.String("status", "", "status page address; overrides config")
	dbArg := flag.String("db", "", "database file; overrides config")
	flag.Parse()

	if *addrArg != "" {
		conf.Server.Addr = *addrArg
	}
	if *statusArg != "" {
		conf.Server.StatusAddr = *statusArg
	}
	if *dbArg != "" {
		conf.Server.Database = *dbArg
	}

	if conf.Server.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   conf.Server.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}))
	}

	ctx := env.NewSigctx()

	database, err := db.Open(conf.Server.Database)
	if err != nil {
		return fmt.Errorf("opening game db: %w", err)
	}
	defer database.Close()

	return server.New(conf, database).Go(ctx)
}
