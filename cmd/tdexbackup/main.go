package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-backup/internal/config"
	"github.com/urfave/cli/v2"
)

// nolint
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := cli.NewApp()

	app.Version = formatVersion()
	app.Name = "tdexbackup"
	app.Usage = "Command line interface to manage and back up wallet accounts"
	app.Before = func(*cli.Context) error {
		return config.InitConfig()
	}
	app.Commands = append(
		app.Commands,
		&createhd,
		&importkey,
		&importseed,
		&watch,
		&list,
		&backupwallet,
		&history,
		&status,
	)

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		fatal(err)
	}
}

func formatVersion() string {
	return fmt.Sprintf(
		"\nVersion: %s\nCommit: %s\nDate: %s",
		version, commit, date,
	)
}

func printJSON(resp interface{}) {
	buf, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(string(buf))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		log.Debugf("%+v", err)
		_, _ = fmt.Fprintf(os.Stderr, "[tdexbackup] %v\n", err)
	}
	os.Exit(1)
}
