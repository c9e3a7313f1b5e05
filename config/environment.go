package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Mode selects which credential profile is active.
type Mode string

const (
	ModeProd Mode = "PROD"
	ModeDev  Mode = "DEV"
)

const (
	modeEnvVar = "SETTINGS_MODE"

	prodPrefix = "COINBASE_PROD_"
	devPrefix  = "COINBASE_DEV_"
)

// profiles maps every accepted mode to its environment variable prefix.
var profiles = map[Mode]string{
	ModeProd: prodPrefix,
	ModeDev:  devPrefix,
}

// normalizeMode trims and upper-cases a raw selector value. It does not
// validate it; ResolveCredentials does.
func normalizeMode(raw string) Mode {
	return Mode(strings.ToUpper(strings.TrimSpace(raw)))
}

// ModeFromEnv reads the selector from SETTINGS_MODE. The returned value may
// be empty or unknown.
func ModeFromEnv() Mode {
	return normalizeMode(os.Getenv(modeEnvVar))
}

// LoadDotEnv loads variables from the given files (default .env) without
// overriding values already present in the process environment. Missing
// files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return &ConfigurationError{Reason: "failed to load " + f, Err: err}
		}
	}
	return nil
}
