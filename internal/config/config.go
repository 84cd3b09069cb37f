package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/campus-tools/results-viewer/internal/results"
)

// Dataset modes.
const (
	ModeStatic = "static"
	ModeReload = "reload"
	ModeWatch  = "watch"
)

// Config holds the full application configuration.
type Config struct {
	Workbook WorkbookConfig `yaml:"workbook" mapstructure:"workbook"`
	Results  ResultsConfig  `yaml:"results" mapstructure:"results"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// WorkbookConfig locates the results workbook and how it is kept current.
type WorkbookConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
	Mode string `yaml:"mode" mapstructure:"mode"`
}

// ResultsConfig selects an aggregation preset. Any field set here overrides
// the preset's value.
type ResultsConfig struct {
	Preset                     string `yaml:"preset" mapstructure:"preset"`
	SemesterSheetCount         *int   `yaml:"semester_sheet_count" mapstructure:"semester_sheet_count"`
	GPAPrecision               *int   `yaml:"gpa_precision" mapstructure:"gpa_precision"`
	ExcludeZeroGPA             *bool  `yaml:"exclude_zero_gpa" mapstructure:"exclude_zero_gpa"`
	PreferAuthoritativeOverall *bool  `yaml:"prefer_authoritative_overall" mapstructure:"prefer_authoritative_overall"`
	ValidateFormat             *bool  `yaml:"validate_format" mapstructure:"validate_format"`
	IdentityField              string `yaml:"identity_field" mapstructure:"identity_field"`
	AuthoritativeField         string `yaml:"authoritative_field" mapstructure:"authoritative_field"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // requests/sec, 0 disables
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// overrideKeys have no default so that an unset key leaves the preset value.
var overrideKeys = []string{
	"results.semester_sheet_count",
	"results.gpa_precision",
	"results.exclude_zero_gpa",
	"results.prefer_authoritative_overall",
	"results.validate_format",
	"results.identity_field",
	"results.authoritative_field",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RESULTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range overrideKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", k)
		}
	}

	// Defaults
	v.SetDefault("workbook.path", "data.xlsx")
	v.SetDefault("workbook.mode", ModeStatic)
	v.SetDefault("results.preset", "default")
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Policy resolves the preset and applies explicit overrides.
func (c ResultsConfig) Policy() (results.Policy, error) {
	name := c.Preset
	if name == "" {
		name = "default"
	}
	p, err := results.Preset(name)
	if err != nil {
		return results.Policy{}, err
	}

	if c.SemesterSheetCount != nil {
		p.SemesterSheetCount = *c.SemesterSheetCount
	}
	if c.GPAPrecision != nil {
		p.GPAPrecision = *c.GPAPrecision
	}
	if c.ExcludeZeroGPA != nil {
		p.ExcludeZeroGPA = *c.ExcludeZeroGPA
	}
	if c.PreferAuthoritativeOverall != nil {
		p.PreferAuthoritativeOverall = *c.PreferAuthoritativeOverall
	}
	if c.ValidateFormat != nil {
		p.ValidateFormat = *c.ValidateFormat
	}
	if c.IdentityField != "" {
		p.IdentityField = c.IdentityField
	}
	if c.AuthoritativeField != "" {
		p.AuthoritativeField = c.AuthoritativeField
	}

	if err := p.Validate(); err != nil {
		return results.Policy{}, err
	}
	return p, nil
}

// Validate checks the settings a command needs. mode is "serve" or "lookup".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
			errs = append(errs, "server.rate_burst must be >= 1 when rate_limit is set")
		}
		switch c.Workbook.Mode {
		case ModeStatic, ModeReload, ModeWatch:
		default:
			errs = append(errs, fmt.Sprintf("workbook.mode must be one of static, reload, watch (got %q)", c.Workbook.Mode))
		}
	case "lookup":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Workbook.Path == "" {
		errs = append(errs, "workbook.path is required")
	}
	if _, err := c.Results.Policy(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
