package logcfg

import (
	"os"

	logs "github.com/danmuck/smplog"
)

const envConfigPath = "SMPLOG_CONFIG"

// Candidates are tried in order after the environment override.
var Candidates = []string{
	"./smplog.config.toml",
	"./local/smplog.config.toml",
	"./ledger.smplog.toml",
}

// Load returns file-backed logging configuration when available, otherwise defaults.
func Load() logs.Config {
	return LoadFrom(os.Getenv(envConfigPath), Candidates...)
}

// LoadFrom tries explicit first, then each candidate path, and falls back to
// smplog defaults when none can be read.
func LoadFrom(explicit string, candidates ...string) logs.Config {
	if explicit != "" {
		if cfg, err := logs.ConfigFromFile(explicit); err == nil {
			return cfg
		}
	}

	for _, path := range candidates {
		if cfg, err := logs.ConfigFromFile(path); err == nil {
			return cfg
		}
	}

	return logs.DefaultConfig()
}
