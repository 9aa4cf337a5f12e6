// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/vodrip/vodrip/constant"
	"github.com/vodrip/vodrip/filesystem"
	"github.com/vodrip/vodrip/key"
	"github.com/vodrip/vodrip/where"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// OutputDir returns the configured download directory, falling back to the working directory.
func OutputDir() string {
	if dir := viper.GetString(key.DownloaderOutputDir); dir != "" {
		return dir
	}

	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// RetryDelay is the fixed pause between attempts after a connection reset.
func RetryDelay() time.Duration {
	return time.Duration(viper.GetInt(key.DownloaderRetryDelay)) * time.Second
}

// ManifestLifetime is how long a resolved manifest stays in the cache. Zero disables caching.
func ManifestLifetime() time.Duration {
	return time.Duration(viper.GetInt(key.ManifestCacheLifetime)) * time.Minute
}

// NetworkTimeout is the overall request timeout; zero means no limit.
func NetworkTimeout() time.Duration {
	return time.Duration(viper.GetInt(key.NetworkTimeout)) * time.Second
}

// ErrUnknownKey is returned for a key that is not registered in Default.
var ErrUnknownKey = errors.New("unknown config key")

// File is the path of the TOML config file.
func File() string {
	return filepath.Join(where.Config(), constant.App+".toml")
}

// Parse converts raw command line values to the type of the key's default.
func Parse(name string, raw []string) (any, error) {
	field, ok := Default[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, name)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("no value given for %s", name)
	}

	switch field.Value.(type) {
	case string:
		return raw[0], nil
	case int:
		v, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("invalid integer value for %s: %s", name, raw[0])
		}
		return v, nil
	case bool:
		v, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value for %s: %s", name, raw[0])
		}
		return v, nil
	case []string:
		return raw, nil
	default:
		return nil, fmt.Errorf("%s has unsupported type %T", name, field.Value)
	}
}

// Write persists the current settings, creating the file when needed.
func Write() error {
	err := viper.WriteConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return viper.SafeWriteConfig()
	}
	return err
}
