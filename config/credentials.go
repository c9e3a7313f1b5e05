package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Credentials holds everything needed to sign and scope account requests.
type Credentials struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	Passphrase string
	AccountID  string
	Mode       Mode
}

const (
	varAPIKey      = "API_KEY"
	varAPISecret   = "API_SECRET"
	varPassphrase  = "PASSPHRASE"
	varBaseURL     = "BASE_URL"
	varPortfolioID = "PORTFOLIO_ID"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadCredentials resolves credentials from the process environment. A
// non-empty override takes precedence over SETTINGS_MODE.
func LoadCredentials(override string) (Credentials, error) {
	mode := ModeFromEnv()
	if strings.TrimSpace(override) != "" {
		mode = normalizeMode(override)
	}
	return ResolveCredentials(mode, os.LookupEnv)
}

// ResolveCredentials picks the profile for mode and reads its five
// variables through lookup. Unknown modes and missing variables both
// produce a *ConfigurationError.
func ResolveCredentials(mode Mode, lookup LookupFunc) (Credentials, error) {
	mode = normalizeMode(string(mode))
	prefix, ok := profiles[mode]
	if !ok {
		return Credentials{}, &ConfigurationError{
			Reason: fmt.Sprintf("invalid settings mode %q (%s must be one of %s)", string(mode), modeEnvVar, validModes()),
		}
	}

	var missing []string
	get := func(name string) string {
		key := prefix + name
		v, found := lookup(key)
		v = strings.TrimSpace(v)
		if !found || v == "" {
			missing = append(missing, key)
		}
		return v
	}

	creds := Credentials{
		APIKey:     get(varAPIKey),
		APISecret:  get(varAPISecret),
		Passphrase: get(varPassphrase),
		BaseURL:    strings.TrimRight(get(varBaseURL), "/"),
		AccountID:  get(varPortfolioID),
		Mode:       mode,
	}

	if len(missing) > 0 {
		return Credentials{}, &ConfigurationError{
			Reason: fmt.Sprintf("missing required variables for %s profile: %s", mode, strings.Join(missing, ", ")),
		}
	}

	return creds, nil
}

func validModes() string {
	modes := make([]string, 0, len(profiles))
	for m := range profiles {
		modes = append(modes, string(m))
	}
	sort.Strings(modes)
	return strings.Join(modes, ", ")
}
