package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	WRDS    WRDSConfig    `yaml:"wrds" mapstructure:"wrds"`
	Link    LinkConfig    `yaml:"link" mapstructure:"link"`
	Publish PublishConfig `yaml:"publish" mapstructure:"publish"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// WRDSConfig holds the WRDS PostgreSQL connection settings.
// An empty password lets pgx fall back to ~/.pgpass.
type WRDSConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Host        string `yaml:"host" mapstructure:"host"`
	Port        int    `yaml:"port" mapstructure:"port"`
	Database    string `yaml:"database" mapstructure:"database"`
	Username    string `yaml:"username" mapstructure:"username"`
	Password    string `yaml:"password" mapstructure:"password"`
	SSLMode     string `yaml:"sslmode" mapstructure:"sslmode"`
}

// DSN returns DatabaseURL if set, otherwise a postgres:// URL built from
// the individual fields.
func (c WRDSConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	switch {
	case c.Username != "" && c.Password != "":
		u.User = url.UserPassword(c.Username, c.Password)
	case c.Username != "":
		u.User = url.User(c.Username)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// LinkConfig holds defaults for the link command.
type LinkConfig struct {
	Method  string `yaml:"method" mapstructure:"method"`
	BaseDir string `yaml:"base_dir" mapstructure:"base_dir"`
	Format  string `yaml:"format" mapstructure:"format"`
}

// PublishConfig configures the optional PostgreSQL copy of the link table.
type PublishConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("IBESLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("wrds.database_url", "")
	v.SetDefault("wrds.host", "wrds-pgdata.wharton.upenn.edu")
	v.SetDefault("wrds.port", 9737)
	v.SetDefault("wrds.database", "wrds")
	v.SetDefault("wrds.username", "")
	v.SetDefault("wrds.password", "")
	v.SetDefault("wrds.sslmode", "require")
	v.SetDefault("link.method", "crsp")
	v.SetDefault("link.base_dir", "")
	v.SetDefault("link.format", "")
	v.SetDefault("publish.database_url", "")
	v.SetDefault("publish.table", "")
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

// Validate checks the settings a link run depends on. publishTarget is the
// effective --publish table, which may come from a flag rather than config.
func (c *Config) Validate(publishTarget string) error {
	var problems []string
	if c.WRDS.DatabaseURL == "" {
		if c.WRDS.Username == "" {
			problems = append(problems, "wrds.username is required (or set wrds.database_url)")
		}
		if c.WRDS.Host == "" {
			problems = append(problems, "wrds.host is required")
		}
		if c.WRDS.Port <= 0 || c.WRDS.Port > 65535 {
			problems = append(problems, fmt.Sprintf("wrds.port %d is out of range", c.WRDS.Port))
		}
	}
	if publishTarget != "" && c.Publish.DatabaseURL == "" {
		problems = append(problems, "publish.database_url is required when publishing")
	}
	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
