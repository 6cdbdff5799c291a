package cli

import "github.com/urfave/cli/v3"

const (
	LoggingCategory  = "LOGGING AND DEBUGGING"
	DatabaseCategory = "DATABASE"
	ServerCategory   = "SERVER"
	GeneralCategory  = "GENERAL"
)

const (
	flagConfig              = "config"
	flagVersion             = "version"
	flagJSON                = "json"
	flagDebug               = "debug"
	flagLogLevel            = "loglevel"
	flagLogService          = "log-service"
	flagLogNoVersion        = "log-no-version"
	flagDBDriver            = "db-driver"
	flagDBDSN               = "db-dsn"
	flagDBHost              = "db-host"
	flagDBPort              = "db-port"
	flagDBUser              = "db-user"
	flagDBPassword          = "db-password"
	flagDBName              = "db-name"
	flagDBSSLMode           = "db-sslmode"
	flagAddr                = "addr"
	flagMigrate             = "migrate"
	flagAudit               = "audit"
	flagAuditOutput         = "audit-output"
	flagAuth                = "auth"
	flagAuthToken           = "auth-token"
	flagRateLimit           = "rate-limit"
	flagRateBurst           = "rate-burst"
	flagMetrics             = "metrics"
	flagMetricsSyncInterval = "metrics-sync-interval"
)

// globalFlags returns new root flags. urfave/cli flags keep parse state, so every command gets its own.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		// general
		&cli.StringFlag{
			Name:     flagConfig,
			Sources:  cli.EnvVars("FEE_MANAGER_CONFIG"),
			Usage:    "path to a YAML config file, flags and environment take precedence over it",
			Category: GeneralCategory,
		},
		&cli.BoolFlag{
			Name:     flagVersion,
			Usage:    "print version",
			Category: GeneralCategory,
		},
		// logging
		&cli.BoolFlag{
			Name:     flagJSON,
			Sources:  cli.EnvVars("LOG_JSON"),
			Usage:    "log in JSON format instead of text",
			Category: LoggingCategory,
		},
		&cli.BoolFlag{
			Name:     flagDebug,
			Sources:  cli.EnvVars("DEBUG"),
			Usage:    "shorthand for '--loglevel debug'",
			Category: LoggingCategory,
		},
		&cli.StringFlag{
			Name:     flagLogLevel,
			Sources:  cli.EnvVars("LOG_LEVEL"),
			Usage:    "minimum loglevel: trace, debug, info, warn/warning, error, fatal, panic (default: info)",
			Category: LoggingCategory,
		},
		&cli.StringFlag{
			Name:     flagLogService,
			Sources:  cli.EnvVars("LOG_SERVICE_TAG"),
			Usage:    "add a 'service=...' tag to all log messages",
			Category: LoggingCategory,
		},
		&cli.BoolFlag{
			Name:     flagLogNoVersion,
			Sources:  cli.EnvVars("DISABLE_LOG_VERSION"),
			Usage:    "disables adding the version to every log entry",
			Category: LoggingCategory,
		},
		// database
		&cli.StringFlag{
			Name:     flagDBDriver,
			Sources:  cli.EnvVars("FEE_MANAGER_DATABASE_DRIVER"),
			Usage:    "database driver: postgres or sqlite3 (default: postgres)",
			Category: DatabaseCategory,
		},
		&cli.StringFlag{
			Name:     flagDBDSN,
			Sources:  cli.EnvVars("FEE_MANAGER_DATABASE_DSN", "DATABASE_URL"),
			Usage:    "database connection string, replaces the host/port/user/password/name flags",
			Category: DatabaseCategory,
		},
		&cli.StringFlag{
			Name:     flagDBHost,
			Sources:  cli.EnvVars("FEE_MANAGER_DATABASE_HOST"),
			Usage:    "postgres host (default: localhost)",
			Category: DatabaseCategory,
		},
		&cli.IntFlag{
			Name:     flagDBPort,
			Sources:  cli.EnvVars("FEE_MANAGER_DATABASE_PORT"),
			Usage:    "postgres port (default: 5432)",
			Category: DatabaseCategory,
		},
		&cli.StringFlag{
			Name:     flagDBUser,
			Sources:  cli.EnvVars("FEE_MANAGER_DATABASE_USERNAME"),
			Usage:    "postgres user",
			Category: DatabaseCategory,
		},
		&cli.StringFlag{
			Name:     flagDBPassword,
			Sources:  cli.EnvVars("FEE_MANAGER_DATABASE_PASSWORD"),
			Usage:    "postgres password",
			Category: DatabaseCategory,
		},
		&cli.StringFlag{
			Name:     flagDBName,
			Sources:  cli.EnvVars("FEE_MANAGER_DATABASE_DBNAME"),
			Usage:    "postgres database name (default: fee_manager)",
			Category: DatabaseCategory,
		},
		&cli.StringFlag{
			Name:     flagDBSSLMode,
			Sources:  cli.EnvVars("FEE_MANAGER_DATABASE_SSLMODE"),
			Usage:    "postgres sslmode (default: disable)",
			Category: DatabaseCategory,
		},
		// server
		&cli.StringFlag{
			Name:     flagAddr,
			Sources:  cli.EnvVars("FEE_MANAGER_LISTEN_ADDR"),
			Usage:    "listen-address for the fee-manager server (default: localhost:8080)",
			Category: ServerCategory,
		},
		&cli.BoolFlag{
			Name:     flagMigrate,
			Sources:  cli.EnvVars("FEE_MANAGER_AUTO_MIGRATE"),
			Usage:    "apply database migrations before serving",
			Category: ServerCategory,
		},
		&cli.BoolFlag{
			Name:     flagAudit,
			Sources:  cli.EnvVars("FEE_MANAGER_AUDIT_ENABLED"),
			Usage:    "write an audit event for every admin write (default: true)",
			Category: ServerCategory,
		},
		&cli.StringFlag{
			Name:     flagAuditOutput,
			Sources:  cli.EnvVars("FEE_MANAGER_AUDIT_OUTPUT"),
			Usage:    "audit destination: stdout, stderr or a file path (default: stderr)",
			Category: ServerCategory,
		},
		&cli.BoolFlag{
			Name:     flagAuth,
			Sources:  cli.EnvVars("FEE_MANAGER_AUTH_ENABLED"),
			Usage:    "require a bearer token on admin routes (default: true)",
			Category: ServerCategory,
		},
		&cli.StringSliceFlag{
			Name:     flagAuthToken,
			Sources:  cli.EnvVars("FEE_MANAGER_AUTH_TOKENS"),
			Usage:    "admin token as name:sha256-hex - single entry or comma-separated list, replaces the tokens of the config file",
			Category: ServerCategory,
		},
		&cli.FloatFlag{
			Name:     flagRateLimit,
			Sources:  cli.EnvVars("FEE_MANAGER_RATE_LIMIT"),
			Usage:    "public requests allowed per second, 0 disables the limit",
			Category: ServerCategory,
		},
		&cli.IntFlag{
			Name:     flagRateBurst,
			Sources:  cli.EnvVars("FEE_MANAGER_RATE_BURST"),
			Usage:    "public requests allowed in a burst",
			Category: ServerCategory,
		},
		&cli.BoolFlag{
			Name:     flagMetrics,
			Sources:  cli.EnvVars("FEE_MANAGER_METRICS_ENABLED"),
			Usage:    "serve prometheus metrics on /metrics (default: true)",
			Category: ServerCategory,
		},
		&cli.DurationFlag{
			Name:     flagMetricsSyncInterval,
			Sources:  cli.EnvVars("FEE_MANAGER_METRICS_SYNC_INTERVAL"),
			Usage:    "refresh interval of the stored records metrics (default: 3m12s)",
			Category: ServerCategory,
		},
	}
}
