// Package config resolves process configuration. TIMELEDGER_* environment
// variables win over an optional YAML file, which wins over defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	// LogFormatAuto picks text on a terminal and JSON otherwise.
	LogFormatAuto LogFormat = "auto"
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

const envPrefix = "TIMELEDGER"

// Config keys, shared by the YAML file and (upper-cased, prefixed) the
// environment.
const (
	keyDB              = "db"
	keyAddr            = "addr"
	keyLogLevel        = "log_level"
	keyLogFormat       = "log_format"
	keyLogUseCases     = "log_use_cases"
	keyUser            = "user"
	keyShutdownTimeout = "shutdown_timeout"
)

type Config struct {
	DBPath          string
	Addr            string
	LogLevel        slog.Level
	LogFormat       LogFormat
	LogUseCases     bool
	User            string
	ShutdownTimeout time.Duration

	// File is the config file that was read, empty when none was.
	File string
}

// Default returns the configuration used when nothing is set. The
// database lives under the user's home directory.
func Default() Config {
	dbPath := "timeledger.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".timeledger", "timeledger.db")
	}
	return Config{
		DBPath:          dbPath,
		Addr:            ":8080",
		LogLevel:        slog.LevelInfo,
		LogFormat:       LogFormatAuto,
		ShutdownTimeout: 10 * time.Second,
	}
}

// DefaultFile is $XDG_CONFIG_HOME/timeledger/timeledger.yml, falling back
// to ~/.config.
func DefaultFile() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "timeledger", "timeledger.yml")
}

// Load reads the file named by TIMELEDGER_CONFIG, or DefaultFile when that
// is unset, and layers the environment on top. A missing default file is
// not an error; a missing explicit one is. Malformed values are reported
// together in one error.
func Load() (Config, error) {
	path, explicit := strings.TrimSpace(os.Getenv(envPrefix+"_CONFIG")), true
	if path == "" {
		path, explicit = DefaultFile(), false
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	def := Default()
	v.SetDefault(keyDB, def.DBPath)
	v.SetDefault(keyAddr, def.Addr)
	v.SetDefault(keyLogLevel, def.LogLevel.String())
	v.SetDefault(keyLogFormat, string(def.LogFormat))
	v.SetDefault(keyLogUseCases, "false")
	v.SetDefault(keyUser, "")
	v.SetDefault(keyShutdownTimeout, def.ShutdownTimeout.String())

	cfg := def
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		switch err := v.ReadInConfig(); {
		case err == nil:
			cfg.File = path
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return decode(v, cfg)
}

func decode(v *viper.Viper, cfg Config) (Config, error) {
	var invalid []string
	bad := func(key string) {
		invalid = append(invalid, fmt.Sprintf("%s (%s_%s)", key, envPrefix, strings.ToUpper(key)))
	}
	get := func(key string) string { return strings.TrimSpace(v.GetString(key)) }

	cfg.DBPath = get(keyDB)
	cfg.Addr = get(keyAddr)
	cfg.User = get(keyUser)
	if err := cfg.LogLevel.UnmarshalText([]byte(get(keyLogLevel))); err != nil {
		bad(keyLogLevel)
	}
	switch f := LogFormat(strings.ToLower(get(keyLogFormat))); f {
	case LogFormatAuto, LogFormatText, LogFormatJSON:
		cfg.LogFormat = f
	default:
		bad(keyLogFormat)
	}
	if b, err := strconv.ParseBool(get(keyLogUseCases)); err != nil {
		bad(keyLogUseCases)
	} else {
		cfg.LogUseCases = b
	}
	if d, err := time.ParseDuration(get(keyShutdownTimeout)); err != nil || d <= 0 {
		bad(keyShutdownTimeout)
	} else {
		cfg.ShutdownTimeout = d
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}
