package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const appID = "storefront"

type Config struct {
	ServerURL    string        `envconfig:"server_url" default:"http://localhost:8080"`
	CatalogURL   string        `envconfig:"catalog_url" default:"https://fake-coffee-api.vercel.app/api"`
	Timeout      time.Duration `envconfig:"timeout" default:"10s"`
	PopularLimit int           `envconfig:"popular_limit" default:"3"`
	LogLevel     string        `envconfig:"log_level" default:"info"`
	LogFormat    string        `envconfig:"log_format" default:"json"`
}

// Load reads STOREFRONT_* variables.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process(appID, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse env")
	}
	if c.PopularLimit < 1 {
		return nil, errors.Errorf("popular limit must be positive, got %d", c.PopularLimit)
	}
	return c, nil
}

// ConfigureLogging applies LogLevel and LogFormat to the standard logrus logger.
func (c *Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	switch c.LogFormat {
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json", "":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return errors.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
