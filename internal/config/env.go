package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read by LoadDotEnv unless WIDGETS_ENV_FILE names another.
const DefaultEnvFile = ".env"

// LoadDotEnv loads environment variables from the dotenv file. A missing file
// is fine; a malformed one is an error. Variables already set in the process
// environment are not overridden.
func LoadDotEnv() error {
	path := DefaultEnvFile
	if p, ok := os.LookupEnv(EnvPrefix + "ENV_FILE"); ok {
		path = p
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Path returns the config file to read: WIDGETS_CONFIG, or widgets.toml in
// the working directory.
func Path() string {
	if p, ok := os.LookupEnv(EnvPrefix + "CONFIG"); ok {
		return p
	}
	return "widgets.toml"
}
