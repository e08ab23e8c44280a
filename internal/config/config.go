package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Default file names shared by the collectors and the report.
const (
	DefaultCatalog   = "test_list.yaml"
	DefaultUnitOut   = "result_test_auto.json"
	DefaultE2EOut    = "result_test_selenium.json"
	DefaultReportOut = "test_report.json"
	DefaultBaseURL   = "http://127.0.0.1:8000/"
	EnvPrefix        = "TCR"
	FileName         = ".tcr"
)

// Config is the fully merged configuration.
type Config struct {
	Catalog   string   `mapstructure:"catalog" validate:"required"`
	Results   []string `mapstructure:"results" validate:"min=1,dive,required"`
	ReportOut string   `mapstructure:"report_out"`
	Format    string   `mapstructure:"format" validate:"omitempty,oneof=auto terminal plain table json"`
	Theme     string   `mapstructure:"theme"`
	NoColor   bool     `mapstructure:"no_color"`
	CI        bool     `mapstructure:"ci"`
	Strict    bool     `mapstructure:"strict"`
	LogLevel  string   `mapstructure:"log_level"`
	LogJSON   bool     `mapstructure:"log_json"`
	History   string   `mapstructure:"history"`

	Unit   UnitConfig   `mapstructure:"unit"`
	E2E    E2EConfig    `mapstructure:"e2e"`
	Server ServerConfig `mapstructure:"server"`

	// UnitCases binds extra test names to case ids. It is a list rather
	// than a map because viper splits map keys on dots and lowercases them.
	UnitCases []CaseBinding `mapstructure:"unit_cases" validate:"dive"`
}

// CaseBinding ties one test name to a catalog id.
type CaseBinding struct {
	Test string `mapstructure:"test" validate:"required"`
	Case string `mapstructure:"case" validate:"required"`
}

// CaseBindings flattens UnitCases into a lookup map.
func (c *Config) CaseBindings() map[string]string {
	m := make(map[string]string, len(c.UnitCases))
	for _, b := range c.UnitCases {
		m[b.Test] = b.Case
	}
	return m
}

// UnitConfig drives `tcr collect unit`.
type UnitConfig struct {
	Out      string   `mapstructure:"out" validate:"required"`
	GoBin    string   `mapstructure:"go_bin"`
	Packages []string `mapstructure:"packages"`
	Args     []string `mapstructure:"args"`
	Input    string   `mapstructure:"input"`
}

// E2EConfig drives `tcr collect e2e`.
type E2EConfig struct {
	Out          string        `mapstructure:"out" validate:"required"`
	BaseURL      string        `mapstructure:"base_url" validate:"required,url"`
	Headless     bool          `mapstructure:"headless"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout"`
}

// ServerConfig drives `tcr serve`.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	DBDriver        string        `mapstructure:"db_driver" validate:"omitempty,oneof=memory sqlite3 postgres mysql"`
	DBDSN           string        `mapstructure:"db_dsn"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// New returns a viper instance with defaults, env bindings and, when found,
// the config file loaded. An explicit path must exist; the search path may not.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unprefixed conventions win over nothing but lose to TCR_*.
	_ = v.BindEnv("no_color", EnvPrefix+"_NO_COLOR", "NO_COLOR")
	_ = v.BindEnv("ci", EnvPrefix+"_CI", "CI")

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName(FileName)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "tcr"))
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog", DefaultCatalog)
	v.SetDefault("results", []string{DefaultUnitOut, DefaultE2EOut})
	v.SetDefault("report_out", DefaultReportOut)
	v.SetDefault("format", "")
	v.SetDefault("theme", "default")
	v.SetDefault("no_color", false)
	v.SetDefault("ci", false)
	v.SetDefault("strict", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("history", "")

	v.SetDefault("unit.out", DefaultUnitOut)
	v.SetDefault("unit.go_bin", "go")
	v.SetDefault("unit.packages", []string{"./internal/todo/..."})
	v.SetDefault("unit.args", []string{})
	v.SetDefault("unit.input", "")

	v.SetDefault("e2e.out", DefaultE2EOut)
	v.SetDefault("e2e.base_url", DefaultBaseURL)
	v.SetDefault("e2e.headless", true)
	v.SetDefault("e2e.timeout", 15*time.Second)
	v.SetDefault("e2e.ready_timeout", 10*time.Second)

	v.SetDefault("server.addr", "127.0.0.1:8000")
	v.SetDefault("server.db_driver", "sqlite3")
	v.SetDefault("server.db_dsn", "file:todo.db?_foreign_keys=on")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("unit_cases", []any{})
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load decodes and validates the merged configuration.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.CI {
		cfg.NoColor = true
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ConfigFile reports which file was loaded, or "" when only defaults,
// env and flags are in play.
func ConfigFile(v *viper.Viper) string {
	return v.ConfigFileUsed()
}
