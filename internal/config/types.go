// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// LogLevelDebug logs discovery and registration details.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs diagnostics and hash mismatches only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs failures only.
	LogLevelError LogLevel = "error"

	// LogFormatText is the human-readable, optionally colored format.
	LogFormatText LogFormat = "text"
	// LogFormatJSON emits one JSON object per line.
	LogFormatJSON LogFormat = "json"
	// LogFormatLogfmt emits key=value pairs.
	LogFormatLogfmt LogFormat = "logfmt"

	// DefaultRedisAddr is the address of a locally running Redis server.
	DefaultRedisAddr = "localhost:6379"
	// DefaultScriptsDir is the script directory used when none is configured.
	DefaultScriptsDir = "scripts"
	// DefaultScriptExtension is the file extension of script files.
	DefaultScriptExtension = ".lua"
	// DefaultLibraryDir is the name of the prelude subdirectory.
	DefaultLibraryDir = "lib"
	// DefaultConcurrency bounds in-flight SCRIPT LOAD calls.
	DefaultConcurrency = 8
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat is returned when a LogFormat value is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrInvalidRedisConfig is the sentinel error wrapped by InvalidRedisConfigError.
	ErrInvalidRedisConfig = errors.New("invalid redis config")
	// ErrInvalidScriptsConfig is the sentinel error wrapped by InvalidScriptsConfigError.
	ErrInvalidScriptsConfig = errors.New("invalid scripts config")
	// ErrInvalidLogConfig is the sentinel error wrapped by InvalidLogConfigError.
	ErrInvalidLogConfig = errors.New("invalid log config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum severity that gets logged.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// LogFormat selects the log line encoding.
	LogFormat string

	// InvalidLogFormatError is returned when a LogFormat value is not recognized.
	// It wraps ErrInvalidLogFormat for errors.Is() compatibility.
	InvalidLogFormatError struct {
		Value LogFormat
	}

	// InvalidRedisConfigError collects field-level validation errors for RedisConfig.
	InvalidRedisConfigError struct {
		FieldErrors []error
	}

	// InvalidScriptsConfigError collects field-level validation errors for ScriptsConfig.
	InvalidScriptsConfigError struct {
		FieldErrors []error
	}

	// InvalidLogConfigError collects field-level validation errors for LogConfig.
	InvalidLogConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Redis configures the store connection
		Redis RedisConfig `json:"redis" mapstructure:"redis"`
		// Scripts configures script discovery and registration
		Scripts ScriptsConfig `json:"scripts" mapstructure:"scripts"`
		// Log configures diagnostic output
		Log LogConfig `json:"log" mapstructure:"log"`
	}

	// RedisConfig configures the Redis client.
	RedisConfig struct {
		Addr        string        `json:"addr" mapstructure:"addr"`
		Username    string        `json:"username,omitempty" mapstructure:"username"`
		Password    string        `json:"password,omitempty" mapstructure:"password"`
		DB          int           `json:"db" mapstructure:"db"`
		DialTimeout time.Duration `json:"dial_timeout" mapstructure:"dial_timeout"`
		ReadTimeout time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
	}

	// ScriptsConfig configures where scripts are discovered and how they are registered.
	ScriptsConfig struct {
		// Dir is the script directory
		Dir string `json:"dir" mapstructure:"dir"`
		// Extension is the script file suffix, including the dot
		Extension string `json:"extension" mapstructure:"extension"`
		// LibraryDir is the prelude subdirectory name inside Dir
		LibraryDir string `json:"library_dir" mapstructure:"library_dir"`
		// Concurrency bounds in-flight registration calls
		Concurrency int `json:"concurrency" mapstructure:"concurrency"`
	}

	// LogConfig configures logging.
	LogConfig struct {
		Level  LogLevel  `json:"level" mapstructure:"level"`
		Format LogFormat `json:"format" mapstructure:"format"`
	}
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the LogFormat.
func (f LogFormat) String() string { return string(f) }

// IsValid returns whether the LogFormat is one of the defined formats,
// and a list of validation errors if it is not.
func (f LogFormat) IsValid() (bool, []error) {
	switch f {
	case LogFormatText, LogFormatJSON, LogFormatLogfmt:
		return true, nil
	default:
		return false, []error{&InvalidLogFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidLogFormatError.
func (e *InvalidLogFormatError) Error() string {
	return fmt.Sprintf("invalid log format %q (valid: text, json, logfmt)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogFormatError) Unwrap() error { return ErrInvalidLogFormat }

// IsValid returns whether the RedisConfig has valid fields.
// Addr must be non-blank, DB and both timeouts must be non-negative.
func (c RedisConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("redis.addr must not be empty"))
	}
	if c.DB < 0 {
		errs = append(errs, fmt.Errorf("redis.db must be >= 0, got %d", c.DB))
	}
	if c.DialTimeout < 0 {
		errs = append(errs, fmt.Errorf("redis.dial_timeout must be >= 0, got %s", c.DialTimeout))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("redis.read_timeout must be >= 0, got %s", c.ReadTimeout))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidRedisConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRedisConfigError.
func (e *InvalidRedisConfigError) Error() string {
	return fmt.Sprintf("invalid redis config: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidRedisConfig for errors.Is() compatibility.
func (e *InvalidRedisConfigError) Unwrap() error { return ErrInvalidRedisConfig }

// IsValid returns whether the ScriptsConfig has valid fields.
func (c ScriptsConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Dir) == "" {
		errs = append(errs, errors.New("scripts.dir must not be empty"))
	}
	if len(c.Extension) < 2 || c.Extension[0] != '.' || strings.ContainsAny(c.Extension[1:], `./\`) {
		errs = append(errs, fmt.Errorf("scripts.extension %q must be a single dot-prefixed suffix", c.Extension))
	}
	if c.LibraryDir == "" || strings.ContainsAny(c.LibraryDir, `/\`) {
		errs = append(errs, fmt.Errorf("scripts.library_dir %q must be a plain directory name", c.LibraryDir))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("scripts.concurrency must be >= 1, got %d", c.Concurrency))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidScriptsConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidScriptsConfigError.
func (e *InvalidScriptsConfigError) Error() string {
	return fmt.Sprintf("invalid scripts config: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidScriptsConfig for errors.Is() compatibility.
func (e *InvalidScriptsConfigError) Unwrap() error { return ErrInvalidScriptsConfig }

// IsValid returns whether the LogConfig has valid fields.
// It delegates to Level.IsValid() and Format.IsValid().
func (c LogConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidLogConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidLogConfigError.
func (e *InvalidLogConfigError) Error() string {
	return fmt.Sprintf("invalid log config: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidLogConfig for errors.Is() compatibility.
func (e *InvalidLogConfigError) Unwrap() error { return ErrInvalidLogConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to Redis.IsValid(), Scripts.IsValid(), and Log.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Redis.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Scripts.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

func joinFieldErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Redis: RedisConfig{
			Addr:        DefaultRedisAddr,
			DB:          0,
			DialTimeout: 5 * time.Second,
			ReadTimeout: 3 * time.Second,
		},
		Scripts: ScriptsConfig{
			Dir:         DefaultScriptsDir,
			Extension:   DefaultScriptExtension,
			LibraryDir:  DefaultLibraryDir,
			Concurrency: DefaultConcurrency,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}
