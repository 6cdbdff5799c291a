package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/flashbots/fee-manager/config"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

// Main starts the fee-manager cli
func Main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewCommand().Run(ctx, os.Args); err != nil {
		logrus.WithError(err).Fatal("fee-manager failed")
	}
}

// NewCommand returns the root command. Without a subcommand it serves the API.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "fee-manager",
		Usage: "Serve validator fee and relay configs to Vouch and Commit-Boost",
		Flags: globalFlags(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the execution-config, mux and admin APIs",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "apply the database migrations",
				Action: runMigrate,
			},
			newSeedCommand(),
			newExecutionConfigCommand(),
			newMuxKeysCommand(),
			{
				Name:      "token-hash",
				Usage:     "print the hash of an admin token for the auth config, the token is read from stdin if not given",
				ArgsUsage: "[token]",
				Action:    runTokenHash,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool(flagVersion) {
				fmt.Fprintf(stdout(cmd), "fee-manager %s\n", config.Version)
				return nil
			}

			return runServe(ctx, cmd)
		},
	}
}

func stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}

	return os.Stdin
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

// commandLog loads the config of cmd and sets up its logging.
func commandLog(cmd *cli.Command) (*Config, *logrus.Entry, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	log, err := setupLogging(cfg.Log, stdout(cmd))
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}
