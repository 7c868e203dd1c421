// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for medai.
//
// Supports both TOML and YAML configuration formats, with sensible defaults,
// .env and environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.medai/config.toml
//   - ~/.medai/config.yaml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/medai-tui/internal/util"
)

// EnvPrefix prefixes every environment override, e.g. MEDAI_BACKEND_BASE_URL.
const EnvPrefix = "MEDAI"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete medai configuration.
type Config struct {
	// Backend API connection
	Backend BackendConfig `toml:"backend" yaml:"backend" envconfig:"BACKEND"`

	// Transcript persistence
	Storage StorageConfig `toml:"storage" yaml:"storage" envconfig:"STORAGE"`

	// Optional speech-to-text input
	Speech SpeechConfig `toml:"speech" yaml:"speech" envconfig:"SPEECH"`

	// Identity issued by the external identity provider
	Identity IdentityConfig `toml:"identity" yaml:"identity" envconfig:"IDENTITY"`

	// Fixed location for the hospital locator
	Location LocationConfig `toml:"location" yaml:"location" envconfig:"LOCATION"`

	UI  UIConfig  `toml:"ui" yaml:"ui" envconfig:"UI"`
	Log LogConfig `toml:"log" yaml:"log" envconfig:"LOG"`
}

// BackendConfig contains backend API settings.
type BackendConfig struct {
	// BaseURL is the single backend origin used by every screen.
	BaseURL string `toml:"base_url" yaml:"base_url" envconfig:"BASE_URL"`
	// ChatTimeoutMs bounds one chat exchange.
	ChatTimeoutMs int `toml:"chat_timeout_ms" yaml:"chat_timeout_ms" envconfig:"CHAT_TIMEOUT_MS"`
	// RequestTimeoutMs bounds the other endpoints.
	RequestTimeoutMs int `toml:"request_timeout_ms" yaml:"request_timeout_ms" envconfig:"REQUEST_TIMEOUT_MS"`
	// RequestsPerSecond paces outbound requests; 0 disables pacing.
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
}

// StorageConfig selects where the transcript snapshot lives.
type StorageConfig struct {
	// Backend is "file", "sqlite" or "redis".
	Backend    string `toml:"backend" yaml:"backend" envconfig:"BACKEND"`
	Dir        string `toml:"dir" yaml:"dir" envconfig:"DIR"`
	SQLitePath string `toml:"sqlite_path" yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	RedisURL   string `toml:"redis_url" yaml:"redis_url" envconfig:"REDIS_URL"`
}

// SpeechConfig configures voice input. Leaving both Command and WSURL empty disables it.
type SpeechConfig struct {
	Command        string `toml:"command" yaml:"command" envconfig:"COMMAND"`
	WSURL          string `toml:"ws_url" yaml:"ws_url" envconfig:"WS_URL"`
	CaptureCommand string `toml:"capture_command" yaml:"capture_command" envconfig:"CAPTURE_COMMAND"`
	Language       string `toml:"language" yaml:"language" envconfig:"LANGUAGE"`
	TimeoutSecs    int    `toml:"timeout_secs" yaml:"timeout_secs" envconfig:"TIMEOUT_SECS"`
}

// IdentityConfig holds the signed-in user's identifier.
type IdentityConfig struct {
	UserID string `toml:"user_id" yaml:"user_id" envconfig:"USER_ID"`
}

// LocationConfig is an optional fixed coordinate.
type LocationConfig struct {
	Latitude  *float64 `toml:"latitude,omitempty" yaml:"latitude,omitempty" envconfig:"LATITUDE"`
	Longitude *float64 `toml:"longitude,omitempty" yaml:"longitude,omitempty" envconfig:"LONGITUDE"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" yaml:"theme" envconfig:"THEME"`
	// Markdown renders message text as Markdown
	Markdown bool `toml:"markdown" yaml:"markdown" envconfig:"MARKDOWN"`
	// WordWrap is the CLI output width; 0 follows the terminal
	WordWrap int `toml:"word_wrap" yaml:"word_wrap" envconfig:"WORD_WRAP"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `toml:"level" yaml:"level" envconfig:"LEVEL"`
	File  string `toml:"file" yaml:"file" envconfig:"FILE"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:           "http://localhost:5000",
			ChatTimeoutMs:     10000,
			RequestTimeoutMs:  15000,
			RequestsPerSecond: 5,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		Speech: SpeechConfig{
			Language:    "en-US",
			TimeoutSecs: 15,
		},
		UI: UIConfig{
			Theme:    "auto",
			Markdown: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ChatTimeout returns the chat timeout as a duration.
func (b BackendConfig) ChatTimeout() time.Duration {
	return time.Duration(b.ChatTimeoutMs) * time.Millisecond
}

// RequestTimeout returns the request timeout as a duration.
func (b BackendConfig) RequestTimeout() time.Duration {
	return time.Duration(b.RequestTimeoutMs) * time.Millisecond
}

// Timeout returns the listening timeout as a duration.
func (s SpeechConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// Enabled reports whether any recognizer is configured.
func (s SpeechConfig) Enabled() bool {
	return s.Command != "" || s.WSURL != ""
}

// IsSet reports whether both coordinates are configured.
func (l LocationConfig) IsSet() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the medai configuration directory path.
// MEDAI_HOME overrides the default ~/.medai.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".medai"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns the directory for the file and sqlite storage backends.
func (c *Config) DataDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "medai")
	}
	return filepath.Join(dir, "data")
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then YAML, and falls back to defaults. A .env file in the
// working directory and MEDAI_* environment variables are applied last.
//
// A broken config file does not stop loading: the defaults are returned
// together with the load error so callers can warn.
func Load() (*Config, error) {
	var loadErr error
	cfg := Default()

	if path, found := findConfigFile(); found {
		fileCfg := Default()
		if err := loadFile(fileCfg, path); err != nil {
			loadErr = fmt.Errorf("failed to load config %s: %w", path, err)
		} else {
			cfg = fileCfg
		}
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := loadFile(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() (string, bool) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathYAML} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func loadFile(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(cfg, path)
	default:
		return LoadTOML(cfg, path)
	}
}

func finish(cfg *Config) error {
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadYAML decodes a YAML file over cfg.
func LoadYAML(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# medai configuration file\n")
	buf.WriteString("# Generated by medai - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveYAML saves the configuration to a YAML file with 0600 permissions.
func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Backend
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: fmt.Sprintf("must be an http(s) URL, got %q", c.Backend.BaseURL),
		})
	}
	if c.Backend.ChatTimeoutMs < 1000 || c.Backend.ChatTimeoutMs > 120000 {
		errs = append(errs, ValidationError{
			Field:   "backend.chat_timeout_ms",
			Message: fmt.Sprintf("must be between 1000 and 120000, got %d", c.Backend.ChatTimeoutMs),
		})
	}
	if c.Backend.RequestTimeoutMs < 1000 || c.Backend.RequestTimeoutMs > 120000 {
		errs = append(errs, ValidationError{
			Field:   "backend.request_timeout_ms",
			Message: fmt.Sprintf("must be between 1000 and 120000, got %d", c.Backend.RequestTimeoutMs),
		})
	}
	if c.Backend.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.requests_per_second",
			Message: "cannot be negative",
		})
	}

	// Storage
	switch c.Storage.Backend {
	case "file", "sqlite":
	case "redis":
		if c.Storage.RedisURL == "" {
			errs = append(errs, ValidationError{
				Field:   "storage.redis_url",
				Message: "required when storage.backend is redis",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("must be 'file', 'sqlite', or 'redis', got %q", c.Storage.Backend),
		})
	}

	// Speech
	if c.Speech.TimeoutSecs < 1 || c.Speech.TimeoutSecs > 120 {
		errs = append(errs, ValidationError{
			Field:   "speech.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 120, got %d", c.Speech.TimeoutSecs),
		})
	}
	if c.Speech.WSURL != "" {
		if u, err := url.Parse(c.Speech.WSURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			errs = append(errs, ValidationError{
				Field:   "speech.ws_url",
				Message: fmt.Sprintf("must be a ws(s) URL, got %q", c.Speech.WSURL),
			})
		}
		if c.Speech.CaptureCommand == "" {
			errs = append(errs, ValidationError{
				Field:   "speech.capture_command",
				Message: "required when speech.ws_url is set",
			})
		}
	}

	// Location
	loc := c.Location
	if (loc.Latitude == nil) != (loc.Longitude == nil) {
		errs = append(errs, ValidationError{
			Field:   "location",
			Message: "latitude and longitude must be set together",
		})
	}
	if loc.Latitude != nil && (*loc.Latitude < -90 || *loc.Latitude > 90) {
		errs = append(errs, ValidationError{
			Field:   "location.latitude",
			Message: fmt.Sprintf("must be between -90 and 90, got %g", *loc.Latitude),
		})
	}
	if loc.Longitude != nil && (*loc.Longitude < -180 || *loc.Longitude > 180) {
		errs = append(errs, ValidationError{
			Field:   "location.longitude",
			Message: fmt.Sprintf("must be between -180 and 180, got %g", *loc.Longitude),
		})
	}

	// UI
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be 'dark', 'light', or 'auto', got %q", c.UI.Theme),
		})
	}
	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.word_wrap",
			Message: "cannot be negative",
		})
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("must be 'debug', 'info', 'warn', or 'error', got %q", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaults.Backend.BaseURL
	}
	if c.Backend.ChatTimeoutMs == 0 {
		c.Backend.ChatTimeoutMs = defaults.Backend.ChatTimeoutMs
	}
	if c.Backend.RequestTimeoutMs == 0 {
		c.Backend.RequestTimeoutMs = defaults.Backend.RequestTimeoutMs
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}

	if c.Speech.Language == "" {
		c.Speech.Language = defaults.Speech.Language
	}
	if c.Speech.TimeoutSecs == 0 {
		c.Speech.TimeoutSecs = defaults.Speech.TimeoutSecs
	}

	c.Identity.UserID = strings.TrimSpace(c.Identity.UserID)

	c.UI.Theme = strings.ToLower(c.UI.Theme)
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides loads an optional .env file from the working directory,
// then applies MEDAI_* environment variables. Variables already set in the
// environment win over the .env file.
//
// Keys follow the section and field names, for example:
//   - MEDAI_BACKEND_BASE_URL
//   - MEDAI_BACKEND_CHAT_TIMEOUT_MS
//   - MEDAI_STORAGE_BACKEND, MEDAI_STORAGE_REDIS_URL
//   - MEDAI_SPEECH_COMMAND, MEDAI_SPEECH_WS_URL
//   - MEDAI_IDENTITY_USER_ID
//   - MEDAI_LOCATION_LATITUDE, MEDAI_LOCATION_LONGITUDE
//   - MEDAI_LOG_LEVEL
func (c *Config) ApplyEnvOverrides() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read .env: %w", err)
	}
	return envconfig.Process(EnvPrefix, c)
}

// EnvUsage writes the list of recognized environment variables to w.
func EnvUsage(w io.Writer) error {
	return envconfig.Usagef(EnvPrefix, Default(), w, envconfig.DefaultListFormat)
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "backend.base_url").
// Unset optional values are returned as nil.
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return nil, nil
		}
		return field.Elem().Interface(), nil
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "backend.base_url").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
// An empty string clears pointer fields.
func setFieldValue(field reflect.Value, value interface{}) error {
	if field.Kind() == reflect.Ptr {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		elem := reflect.New(field.Type().Elem())
		if err := setFieldValue(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strings.TrimSpace(strVal), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strings.TrimSpace(strVal), 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation, derived from the toml tags.
func GetAllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		prefix := tagName(section)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, prefix+"."+tagName(section.Type.Field(j)))
		}
	}
	return keys
}

func tagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	return name
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Location.Latitude != nil {
		lat := *c.Location.Latitude
		clone.Location.Latitude = &lat
	}
	if c.Location.Longitude != nil {
		lng := *c.Location.Longitude
		clone.Location.Longitude = &lng
	}
	return &clone
}

// String returns a TOML representation of the config for display.
// Credentials embedded in the redis URL are redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if u, err := url.Parse(safe.Storage.RedisURL); err == nil && u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "REDACTED")
			safe.Storage.RedisURL = u.String()
		}
	}

	var buf bytes.Buffer
	_ = toml.NewEncoder(&buf).Encode(safe)
	return buf.String()
}
