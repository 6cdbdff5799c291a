package cli

import (
	"io"

	"github.com/flashbots/fee-manager/config"
	"github.com/sirupsen/logrus"
)

// setupLogging returns the root log entry writing to w.
func setupLogging(cfg LogConfig, w io.Writer) (*logrus.Entry, error) {
	logger := logrus.New()
	logger.SetOutput(w)

	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(lvl)

	log := logrus.NewEntry(logger)
	if cfg.Service != "" {
		log = log.WithField("service", cfg.Service)
	}

	// Add version to logs
	if !cfg.NoVersion {
		log = log.WithField("version", config.Version)
	}

	return log, nil
}
