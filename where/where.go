// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/vodrip/vodrip/constant"
	"github.com/vodrip/vodrip/filesystem"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "VODRIP_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// The path can be overridden with the VODRIP_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache resolves the absolute path to the application's persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs resolves the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History resolves the file that records finished downloads.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Manifests resolves the file holding cached platform manifests.
func Manifests() string {
	return filepath.Join(Cache(), "manifests.json")
}

// Recent resolves the file listing page URLs used before.
func Recent() string {
	return filepath.Join(Cache(), "recent.json")
}

// Temp resolves the root under which download jobs stage their segments.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
