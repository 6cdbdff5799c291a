package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/flashbots/fee-manager/audit"
	"github.com/flashbots/fee-manager/config/pattern"
	"github.com/flashbots/fee-manager/config/rcp"
	"github.com/flashbots/fee-manager/server"
	"github.com/flashbots/fee-manager/storage/sqlstore"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

var errMissingToken = errors.New("missing token")

const (
	flagFile    = "file"
	flagURL     = "url"
	flagName    = "name"
	flagTags    = "tags"
	flagKey     = "key"
	flagTimeout = "timeout"
)

func newSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "import default configs, proposers, patterns and mux configs from a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagFile,
				Usage:    "path to the JSON seed file",
				Required: true,
			},
		},
		Action: runSeed,
	}
}

// clientFlags are the flags of the commands querying a running fee-manager.
func clientFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  flagURL,
			Usage: "base url of a running fee-manager",
			Value: "http://localhost:8080",
		},
		&cli.StringFlag{
			Name:     flagName,
			Usage:    "default config or mux config name",
			Required: true,
		},
		&cli.DurationFlag{
			Name:  flagTimeout,
			Usage: "request timeout",
			Value: 10 * time.Second,
		},
	}
}

func newExecutionConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "execution-config",
		Usage: "fetch an execution config from a running fee-manager",
		Flags: append(clientFlags(),
			&cli.StringFlag{
				Name:  flagTags,
				Usage: "comma-separated tags selecting proposer patterns",
			},
			&cli.StringSliceFlag{
				Name:  flagKey,
				Usage: "validator public key, can be specified multiple times",
			},
		),
		Action: runExecutionConfig,
	}
}

func newMuxKeysCommand() *cli.Command {
	return &cli.Command{
		Name:   "mux-keys",
		Usage:  "fetch the keys of a mux config from a running fee-manager",
		Flags:  clientFlags(),
		Action: runMuxKeys,
	}
}

func openStore(ctx context.Context, log *logrus.Entry, cfg DatabaseConfig) (*sqlstore.Store, error) {
	driver, dsn, err := cfg.DataSource()
	if err != nil {
		return nil, err
	}

	return sqlstore.Open(ctx, log, driver, dsn)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := commandLog(cmd)
	if err != nil {
		return err
	}

	log.Info("starting fee-manager")
	log.Debug("debug logging enabled")

	store, err := openStore(ctx, log, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	var auditLog *audit.Logger
	if cfg.Audit.Enabled {
		if auditLog, err = audit.New(cfg.Audit.Output); err != nil {
			return err
		}
		defer auditLog.Close()
	}

	if !cfg.Auth.Enabled {
		log.Warn("admin authentication is disabled")
	}

	service, err := server.NewService(server.ServiceOpts{
		Log:                   log,
		ListenAddr:            cfg.ListenAddr,
		Store:                 store,
		Audit:                 auditLog,
		AuthEnabled:           cfg.Auth.Enabled,
		AuthTokens:            cfg.Auth.Tokens,
		RateLimit:             cfg.RateLimit.RequestsPerSecond,
		RateBurst:             cfg.RateLimit.Burst,
		MetricsEnabled:        cfg.Metrics.Enabled,
		InventorySyncInterval: cfg.Metrics.SyncInterval,
		Timeouts:              server.NewDefaultHTTPServerTimeouts(),
	})
	if err != nil {
		return fmt.Errorf("failed creating the server: %w", err)
	}

	log.Println("listening on", cfg.ListenAddr)
	return service.StartHTTPServer(ctx)
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := commandLog(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, log, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	log.Info("database migrated")
	return nil
}

func runSeed(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := commandLog(cmd)
	if err != nil {
		return err
	}

	seed, err := rcp.NewFile(cmd.String(flagFile)).FetchSeed()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, log, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	res, err := rcp.Import(ctx, log, store, seed)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"defaultConfigs":   res.DefaultConfigs,
		"proposers":        res.Proposers,
		"proposerPatterns": res.ProposerPatterns,
		"muxConfigs":       res.MuxConfigs,
	}).Info("seed imported")

	return nil
}

func runExecutionConfig(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithTimeout(ctx, cmd.Duration(flagTimeout))
	defer cancel()

	api := rcp.NewJSONAPI(http.DefaultClient, cmd.String(flagURL))
	cfg, err := api.ExecutionConfig(ctx,
		cmd.String(flagName),
		cmd.StringSlice(flagKey),
		pattern.ParseTags(cmd.String(flagTags)),
	)
	if err != nil {
		return err
	}

	return writeJSON(cmd, cfg)
}

func runMuxKeys(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithTimeout(ctx, cmd.Duration(flagTimeout))
	defer cancel()

	api := rcp.NewJSONAPI(http.DefaultClient, cmd.String(flagURL))
	keys, err := api.MuxKeys(ctx, cmd.String(flagName))
	if err != nil {
		return err
	}

	return writeJSON(cmd, keys)
}

func runTokenHash(_ context.Context, cmd *cli.Command) error {
	token := cmd.Args().First()
	if token == "" {
		scanner := bufio.NewScanner(stdin(cmd))
		if scanner.Scan() {
			token = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			return err
		}
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errMissingToken
	}

	_, err := fmt.Fprintln(stdout(cmd), server.HashToken(token))
	return err
}

func writeJSON(cmd *cli.Command, v any) error {
	enc := json.NewEncoder(stdout(cmd))
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
