package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/flashbots/fee-manager/audit"
	"github.com/flashbots/fee-manager/config/rcm"
	"github.com/flashbots/fee-manager/server"
	"github.com/flashbots/fee-manager/storage/sqlstore"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

var (
	errInvalidConfig    = errors.New("invalid config")
	errMissingDSN       = errors.New("missing database dsn")
	errMalformedToken   = errors.New("malformed auth token, expected name:hash")
	errNegativeRateLimit = errors.New("rate limit and burst must not be negative")
)

// Config is the configuration of the fee-manager commands.
// It is read from an optional YAML file and then overridden by flags and environment variables.
type Config struct {
	ListenAddr string          `yaml:"listen_addr"`
	Database   DatabaseConfig  `yaml:"database"`
	Log        LogConfig       `yaml:"log"`
	Audit      AuditConfig     `yaml:"audit"`
	Auth       AuthConfig      `yaml:"auth"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
	Metrics    MetricsConfig   `yaml:"metrics"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	// DSN is used as is when set, otherwise a postgres URL is built from the other fields.
	DSN         string `yaml:"dsn"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	DBName      string `yaml:"dbname"`
	SSLMode     string `yaml:"sslmode"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	JSON      bool   `yaml:"json"`
	Service   string `yaml:"service"`
	NoVersion bool   `yaml:"no_version"`
}

type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Output  string `yaml:"output"`
}

type AuthConfig struct {
	Enabled bool               `yaml:"enabled"`
	Tokens  []server.AuthToken `yaml:"tokens"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type MetricsConfig struct {
	Enabled      bool          `yaml:"enabled"`
	SyncInterval time.Duration `yaml:"sync_interval"`
}

func defaultConfig() *Config {
	return &Config{
		ListenAddr: "localhost:8080",
		Database: DatabaseConfig{
			Driver:  sqlstore.DriverPostgres,
			Host:    "localhost",
			Port:    5432,
			DBName:  "fee_manager",
			SSLMode: "disable",
		},
		Log: LogConfig{
			Level: "info",
		},
		Audit: AuditConfig{
			Enabled: true,
			Output:  audit.OutputStderr,
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		Metrics: MetricsConfig{
			Enabled:      true,
			SyncInterval: rcm.DefaultSyncTime,
		},
	}
}

// loadConfig builds the config of cmd: defaults, then the YAML file of --config, then flags and environment.
func loadConfig(cmd *cli.Command) (*Config, error) {
	cfg := defaultConfig()

	if path := cmd.String(flagConfig); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyFlags(cmd); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readFile decodes the YAML file at path over c. Keys absent from the file keep their value.
func (c *Config) readFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %w", errInvalidConfig, path, err)
	}

	return nil
}

func (c *Config) applyFlags(cmd *cli.Command) error {
	setString(cmd, flagAddr, &c.ListenAddr)

	setString(cmd, flagDBDriver, &c.Database.Driver)
	setString(cmd, flagDBDSN, &c.Database.DSN)
	setString(cmd, flagDBHost, &c.Database.Host)
	setInt(cmd, flagDBPort, &c.Database.Port)
	setString(cmd, flagDBUser, &c.Database.Username)
	setString(cmd, flagDBPassword, &c.Database.Password)
	setString(cmd, flagDBName, &c.Database.DBName)
	setString(cmd, flagDBSSLMode, &c.Database.SSLMode)
	setBool(cmd, flagMigrate, &c.Database.AutoMigrate)

	setString(cmd, flagLogLevel, &c.Log.Level)
	setBool(cmd, flagJSON, &c.Log.JSON)
	setString(cmd, flagLogService, &c.Log.Service)
	setBool(cmd, flagLogNoVersion, &c.Log.NoVersion)
	if cmd.Bool(flagDebug) {
		c.Log.Level = "debug"
	}

	setBool(cmd, flagAudit, &c.Audit.Enabled)
	setString(cmd, flagAuditOutput, &c.Audit.Output)

	setBool(cmd, flagAuth, &c.Auth.Enabled)
	if cmd.IsSet(flagAuthToken) {
		tokens, err := parseAuthTokens(cmd.StringSlice(flagAuthToken))
		if err != nil {
			return err
		}
		c.Auth.Tokens = tokens
	}

	if cmd.IsSet(flagRateLimit) {
		c.RateLimit.RequestsPerSecond = cmd.Float(flagRateLimit)
	}
	setInt(cmd, flagRateBurst, &c.RateLimit.Burst)

	setBool(cmd, flagMetrics, &c.Metrics.Enabled)
	if cmd.IsSet(flagMetricsSyncInterval) {
		c.Metrics.SyncInterval = cmd.Duration(flagMetricsSyncInterval)
	}

	return nil
}

func (c *Config) validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}

	if _, _, err := c.Database.DataSource(); err != nil {
		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}

	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("%w: %w", errInvalidConfig, errNegativeRateLimit)
	}

	if c.Audit.Enabled && c.Audit.Output == "" {
		c.Audit.Output = audit.OutputStderr
	}

	return nil
}

// DataSource returns the driver and connection string of the database.
func (c DatabaseConfig) DataSource() (string, string, error) {
	switch c.Driver {
	case sqlstore.DriverSQLite:
		if c.DSN == "" {
			return "", "", errMissingDSN
		}
		return c.Driver, c.DSN, nil
	case sqlstore.DriverPostgres:
		if c.DSN != "" {
			return c.Driver, c.DSN, nil
		}
	default:
		return "", "", fmt.Errorf("%w: %s", sqlstore.ErrUnsupportedDriver, c.Driver)
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.DBName,
	}
	switch {
	case c.Password != "":
		u.User = url.UserPassword(c.Username, c.Password)
	case c.Username != "":
		u.User = url.User(c.Username)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}

	return c.Driver, u.String(), nil
}

// parseAuthTokens parses name:hash entries.
func parseAuthTokens(entries []string) ([]server.AuthToken, error) {
	tokens := make([]server.AuthToken, 0, len(entries))
	for _, entry := range entries {
		name, hash, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("%w: %q", errMalformedToken, entry)
		}
		tokens = append(tokens, server.AuthToken{Name: name, Hash: strings.ToLower(hash)})
	}

	return tokens, nil
}

func setString(cmd *cli.Command, name string, dst *string) {
	if cmd.IsSet(name) {
		*dst = cmd.String(name)
	}
}

func setBool(cmd *cli.Command, name string, dst *bool) {
	if cmd.IsSet(name) {
		*dst = cmd.Bool(name)
	}
}

func setInt(cmd *cli.Command, name string, dst *int) {
	if cmd.IsSet(name) {
		*dst = int(cmd.Int(name))
	}
}
