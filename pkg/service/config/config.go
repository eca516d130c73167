package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/Azure/appengine-prune/pkg/common/logger"
	"github.com/Azure/appengine-prune/pkg/domain/errors"
)

// Config holds ambient settings. Projects, the keep count and the
// force/dry-run choice always come from the command line.
type Config struct {
	GcloudPath  string `env:"APPENGINE_PRUNE_GCLOUD"`
	LogLevel    string `env:"APPENGINE_PRUNE_LOG_LEVEL"`
	Output      string `env:"APPENGINE_PRUNE_OUTPUT"`
	Parallelism int    `env:"APPENGINE_PRUNE_PARALLELISM"`
}

func DefaultConfig() *Config {
	return &Config{
		GcloudPath:  "gcloud",
		LogLevel:    "info",
		Output:      "table",
		Parallelism: 0,
	}
}

// Load reads envFile (if given and present) into the process environment and
// then applies the environment on top of the defaults. The result is not
// validated so that command-line flags can still override it; call Validate
// once they have been applied.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigurationInvalid, "config", fmt.Sprintf("failed to load env file %s", envFile), err)
		}
	}

	cfg := DefaultConfig()
	if err := env.Load(cfg, nil); err != nil {
		return nil, errors.New(errors.CodeConfigurationInvalid, "config", "failed to load environment variables", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GcloudPath == "" {
		return errors.New(errors.CodeConfigurationInvalid, "config", "gcloud path must not be empty", nil)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return errors.New(errors.CodeConfigurationInvalid, "config", "invalid log level", err)
	}
	if c.Parallelism < 0 {
		return errors.New(errors.CodeConfigurationInvalid, "config", "parallelism must not be negative", nil)
	}
	return nil
}
