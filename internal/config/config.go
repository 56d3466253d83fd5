// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/folio/internal/cloud"
	"github.com/jeranaias/folio/internal/engine"
	"github.com/jeranaias/folio/internal/store"
	"github.com/jeranaias/folio/internal/ui/styles"
	"github.com/jeranaias/folio/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete folio configuration.
type Config struct {
	// Profile is the person the assistant speaks for
	Profile ProfileConfig `toml:"profile" json:"profile"`

	// OpenRouter access
	Cloud CloudConfig `toml:"cloud" json:"cloud"`

	// Chat timing configuration
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Contact form configuration
	Contact ContactConfig `toml:"contact" json:"contact"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Persisted state configuration
	State StateConfig `toml:"state" json:"state"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log"`
}

// ProfileConfig holds the portfolio owner's facts.
type ProfileConfig struct {
	Name     string `toml:"name" json:"name"`
	Title    string `toml:"title" json:"title"`
	Email    string `toml:"email" json:"email"`
	Location string `toml:"location" json:"location"`
	GitHub   string `toml:"github" json:"github"`
	LinkedIn string `toml:"linkedin" json:"linkedin"`
	Website  string `toml:"website" json:"website"`
}

// CloudConfig holds OpenRouter credentials and request limits.
type CloudConfig struct {
	// OpenRouterKey is the OpenRouter API key. Empty means every turn uses
	// the local fallback replies.
	OpenRouterKey string `toml:"openrouter_key" json:"openrouter_key"`
	// Model is the OpenRouter model ID
	Model string `toml:"model" json:"model"`
	// BaseURL is the OpenRouter API root
	BaseURL string `toml:"base_url" json:"base_url"`
	// SiteURL is sent as HTTP-Referer
	SiteURL string `toml:"site_url" json:"site_url"`
	// SiteName is sent as X-Title
	SiteName string `toml:"site_name" json:"site_name"`
	// TimeoutSecs bounds one request. 0 means no timeout.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerMinute caps outgoing requests. 0 means unlimited.
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// ChatConfig contains the engine delays, in milliseconds.
type ChatConfig struct {
	WelcomeDelayMs  int `toml:"welcome_delay_ms" json:"welcome_delay_ms"`
	ClearDelayMs    int `toml:"clear_delay_ms" json:"clear_delay_ms"`
	FallbackDelayMs int `toml:"fallback_delay_ms" json:"fallback_delay_ms"`
	TypingPerCharMs int `toml:"typing_per_char_ms" json:"typing_per_char_ms"`
	TypingMinMs     int `toml:"typing_min_ms" json:"typing_min_ms"`
	TypingMaxMs     int `toml:"typing_max_ms" json:"typing_max_ms"`
	// HistoryFile stores REPL input history. Empty means ~/.folio/history.
	HistoryFile string `toml:"history_file" json:"history_file"`
}

// ContactConfig contains the contact form endpoint.
type ContactConfig struct {
	// Endpoint receives the JSON form POST. Empty disables the form.
	Endpoint    string `toml:"endpoint" json:"endpoint"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs"`
}

// UIConfig contains UI preferences.
type UIConfig struct {
	// Theme is dark, light or auto. A theme saved from the widget's
	// settings menu takes precedence.
	Theme string `toml:"theme" json:"theme"`
	// AltScreen runs the widget on the alternate screen
	AltScreen bool `toml:"alt_screen" json:"alt_screen"`
}

// StateConfig selects where widget state is persisted.
type StateConfig struct {
	// Backend is file, sqlite or memory
	Backend string `toml:"backend" json:"backend"`
	// Path is the state file. Empty means ~/.folio/state.json or state.db.
	Path string `toml:"path" json:"path"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level" json:"level"`
	// Path is the log file. Empty means ~/.folio/folio.log.
	Path string `toml:"path" json:"path"`
	// Mode is development (console) or production (JSON)
	Mode string `toml:"mode" json:"mode"`
}

// siteURLFor is the referer sent upstream: the portfolio site when the
// profile names one, a fixed placeholder otherwise.
func siteURLFor(p engine.Profile) string {
	if p.Website != "" {
		return p.Website
	}
	return cloud.DefaultSiteURL
}

// Default returns the default configuration.
func Default() *Config {
	profile := engine.DefaultProfile()
	timing := engine.DefaultTiming()

	return &Config{
		Profile: ProfileConfig{
			Name:     profile.Name,
			Title:    profile.Title,
			Email:    profile.Email,
			Location: profile.Location,
			GitHub:   profile.GitHub,
			LinkedIn: profile.LinkedIn,
			Website:  profile.Website,
		},
		Cloud: CloudConfig{
			Model:    cloud.DefaultModel,
			BaseURL:  cloud.DefaultOpenRouterURL,
			SiteURL:  siteURLFor(profile),
			SiteName: profile.Name + "'s Portfolio",
		},
		Chat: ChatConfig{
			WelcomeDelayMs:  int(timing.Welcome / time.Millisecond),
			ClearDelayMs:    int(timing.Clear / time.Millisecond),
			FallbackDelayMs: int(timing.Fallback / time.Millisecond),
			TypingPerCharMs: int(timing.TypingPerChar / time.Millisecond),
			TypingMinMs:     int(timing.TypingMin / time.Millisecond),
			TypingMaxMs:     int(timing.TypingMax / time.Millisecond),
		},
		Contact: ContactConfig{
			TimeoutSecs: 15,
		},
		UI: UIConfig{
			Theme: string(styles.Dark),
		},
		State: StateConfig{
			Backend: store.BackendFile,
		},
		Log: LogConfig{
			Level: "info",
			Mode:  "development",
		},
	}
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// Profile returns the engine profile.
func (p ProfileConfig) Profile() engine.Profile {
	return engine.Profile{
		Name:     p.Name,
		Title:    p.Title,
		Email:    p.Email,
		Location: p.Location,
		GitHub:   p.GitHub,
		LinkedIn: p.LinkedIn,
		Website:  p.Website,
	}
}

// Timing returns the engine delays.
func (c ChatConfig) Timing() engine.Timing {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return engine.Timing{
		Welcome:       ms(c.WelcomeDelayMs),
		Clear:         ms(c.ClearDelayMs),
		Fallback:      ms(c.FallbackDelayMs),
		TypingPerChar: ms(c.TypingPerCharMs),
		TypingMin:     ms(c.TypingMinMs),
		TypingMax:     ms(c.TypingMaxMs),
	}
}

// Timeout returns the request timeout. Zero means none.
func (c CloudConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Timeout returns the contact request timeout.
func (c ContactConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ThemeName returns the configured theme name, Dark when invalid.
func (u UIConfig) ThemeName() styles.Name {
	name, _ := styles.ParseName(u.Theme)
	return name
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the folio configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".folio"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// inConfigDir joins name onto the config directory. It falls back to the
// working directory when the home directory is unknown.
func inConfigDir(name string) string {
	dir, err := ConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}

// StatePath returns the resolved state file path for the backend.
func (s StateConfig) StatePath() string {
	if s.Path != "" {
		return s.Path
	}
	if strings.EqualFold(s.Backend, store.BackendSQLite) {
		return inConfigDir("state.db")
	}
	return inConfigDir("state.json")
}

// LogPath returns the resolved log file path.
func (l LogConfig) LogPath() string {
	if l.Path != "" {
		return l.Path
	}
	return inConfigDir("folio.log")
}

// HistoryPath returns the resolved REPL history path.
func (c ChatConfig) HistoryPath() string {
	if c.HistoryFile != "" {
		return c.HistoryFile
	}
	return inConfigDir("history")
}

// ensureSecurePermissions tightens a config file to 0600 if it is looser.
// SECURITY: the file may hold an OpenRouter key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("chmod 0600 (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file. A missing file
// yields the defaults. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from path with full validation. A
// missing file is not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, statErr)
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg. Keys absent from the file keep their
// current values.
// SECURITY: tightens the file mode before reading it.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Not fatal: some filesystems ignore chmod.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// fillDefaults fills in empty strings that must have a value.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Cloud.Model == "" {
		cfg.Cloud.Model = defaults.Cloud.Model
	}
	if cfg.Cloud.BaseURL == "" {
		cfg.Cloud.BaseURL = defaults.Cloud.BaseURL
	}
	if cfg.Profile.Name == "" {
		cfg.Profile.Name = defaults.Profile.Name
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.State.Backend == "" {
		cfg.State.Backend = defaults.State.Backend
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Contact.TimeoutSecs == 0 {
		cfg.Contact.TimeoutSecs = defaults.Contact.TimeoutSecs
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to ConfigPath.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML encodes cfg as TOML at path.
// SECURITY: written 0600.
// RELIABILITY: goes through util.AtomicWriteFile.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# folio configuration file\n")
	buf.WriteString("# Generated by folio - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError names one bad setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is every bad setting found by Validate.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// UI
	if _, ok := styles.ParseName(c.UI.Theme); !ok {
		add("ui.theme", "invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme)
	}

	// State
	switch strings.ToLower(c.State.Backend) {
	case store.BackendFile, store.BackendSQLite, store.BackendMemory:
	default:
		add("state.backend", "invalid backend '%s', must be one of: file, sqlite, memory", c.State.Backend)
	}

	// Log
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}

	// Chat delays
	delays := []struct {
		field string
		value int
	}{
		{"chat.welcome_delay_ms", c.Chat.WelcomeDelayMs},
		{"chat.clear_delay_ms", c.Chat.ClearDelayMs},
		{"chat.fallback_delay_ms", c.Chat.FallbackDelayMs},
		{"chat.typing_per_char_ms", c.Chat.TypingPerCharMs},
		{"chat.typing_min_ms", c.Chat.TypingMinMs},
		{"chat.typing_max_ms", c.Chat.TypingMaxMs},
	}
	for _, d := range delays {
		if d.value < 0 {
			add(d.field, "must be non-negative, got %d", d.value)
		}
	}
	if c.Chat.TypingMinMs > c.Chat.TypingMaxMs {
		add("chat.typing_min_ms", "must not exceed typing_max_ms (%d > %d)", c.Chat.TypingMinMs, c.Chat.TypingMaxMs)
	}

	// Cloud
	if err := validateURL(c.Cloud.BaseURL, true); err != nil {
		add("cloud.base_url", "%v", err)
	}
	if err := validateURL(c.Cloud.SiteURL, false); err != nil {
		add("cloud.site_url", "%v", err)
	}
	if c.Cloud.TimeoutSecs < 0 {
		add("cloud.timeout_secs", "must be non-negative, got %d", c.Cloud.TimeoutSecs)
	}
	if c.Cloud.RequestsPerMinute < 0 {
		add("cloud.requests_per_minute", "must be non-negative, got %d", c.Cloud.RequestsPerMinute)
	}

	// Contact
	if err := validateURL(c.Contact.Endpoint, false); err != nil {
		add("contact.endpoint", "%v", err)
	}
	if c.Contact.TimeoutSecs < 0 {
		add("contact.timeout_secs", "must be non-negative, got %d", c.Contact.TimeoutSecs)
	}

	// Profile
	if c.Profile.Email != "" && !strings.Contains(c.Profile.Email, "@") {
		add("profile.email", "invalid email '%s'", c.Profile.Email)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateURL requires an absolute http(s) URL. Empty is accepted unless
// required.
func validateURL(raw string, required bool) error {
	if raw == "" {
		if required {
			return errors.New("must not be empty")
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL '%s': %v", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid URL '%s', must be an absolute http(s) URL", raw)
	}
	return nil
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "cloud.model").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
// String values are converted to the field's type.
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

// lookup walks the dotted key down the struct tree. Only section.field
// keys name leaves.
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
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a field", key)
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

// normalizeFieldName maps "openrouter_key" or "openrouter-key" to "OpenrouterKey".
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

// setFieldValue assigns value to field, parsing strings for numeric and bool kinds.
func setFieldValue(field reflect.Value, value interface{}) error {
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
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strings.TrimSpace(strVal))
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// AllKeys returns all configuration keys in dot notation.
func AllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		prefix := tomlName(section)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, prefix+"."+tomlName(section.Type.Field(j)))
		}
	}
	return keys
}

func tomlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone creates a copy of the configuration. Config holds no reference
// types, so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders cfg as JSON with the API key redacted.
// SECURITY: Redacts the API key so it never lands in logs or terminal output.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Cloud.OpenRouterKey != "" {
		safe.Cloud.OpenRouterKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration,
// loading it on first use.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal rereads the file and replaces the process-wide configuration.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting forgets the process-wide configuration.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
