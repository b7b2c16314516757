package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "JOURNEYLENS"

type HTTPConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite, mongo, memory
	Path     string `mapstructure:"path"`
	MongoURI string `mapstructure:"mongo_uri"`
	MongoDB  string `mapstructure:"mongo_db"`
}

type RedisConfig struct {
	URL string        `mapstructure:"url"` // empty disables caching
	TTL time.Duration `mapstructure:"ttl"`
}

type DemoDataConfig struct {
	Dir          string `mapstructure:"dir"`
	Accounts     string `mapstructure:"accounts"`
	Contacts     string `mapstructure:"contacts"`
	Interactions string `mapstructure:"interactions"`
	Expected     string `mapstructure:"expected"`
}

func (d DemoDataConfig) AccountsPath() string     { return filepath.Join(d.Dir, d.Accounts) }
func (d DemoDataConfig) ContactsPath() string     { return filepath.Join(d.Dir, d.Contacts) }
func (d DemoDataConfig) InteractionsPath() string { return filepath.Join(d.Dir, d.Interactions) }
func (d DemoDataConfig) ExpectedPath() string     { return filepath.Join(d.Dir, d.Expected) }

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Config is the full runtime configuration of the API and the seeder.
type Config struct {
	AppName    string         `mapstructure:"app_name"`
	APIVersion string         `mapstructure:"api_version"`
	AuthToken  string         `mapstructure:"auth_token"`
	RulesFile  string         `mapstructure:"rules_file"`
	HTTP       HTTPConfig     `mapstructure:"http"`
	Database   DatabaseConfig `mapstructure:"database"`
	Redis      RedisConfig    `mapstructure:"redis"`
	DemoData   DemoDataConfig `mapstructure:"demo_data"`
	Log        LogConfig      `mapstructure:"log"`
}

// New returns a viper instance with every default registered and
// JOURNEYLENS_* environment variables bound (http.port -> JOURNEYLENS_HTTP_PORT).
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("app_name", "JourneyLens API")
	v.SetDefault("api_version", "1.0.0")
	v.SetDefault("auth_token", "demo-token")
	v.SetDefault("rules_file", "")

	v.SetDefault("http.port", 8000)
	v.SetDefault("http.cors_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "backend_data/journeylens.db")
	v.SetDefault("database.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongo_db", "journeylens")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("demo_data.dir", "data")
	v.SetDefault("demo_data.accounts", "demo_accounts.csv")
	v.SetDefault("demo_data.contacts", "demo_contacts.csv")
	v.SetDefault("demo_data.interactions", "demo_interactions.csv")
	v.SetDefault("demo_data.expected", "demo_expected_insights.csv")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional YAML file at path into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// Env values arrive comma separated, possibly with spaces.
	cfg.HTTP.CORSOrigins = splitList(strings.Join(cfg.HTTP.CORSOrigins, ","))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var (
	drivers   = []string{"sqlite", "mongo", "memory"}
	logLevels = []string{"debug", "info", "warn", "error"}
)

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.AuthToken) == "" {
		errs = append(errs, errors.New("auth_token must not be empty"))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.HTTP.Port))
	}
	if !slices.Contains(drivers, c.Database.Driver) {
		errs = append(errs, fmt.Errorf("database.driver %q must be one of %s", c.Database.Driver, strings.Join(drivers, ", ")))
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required for sqlite"))
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level %q must be one of %s", c.Log.Level, strings.Join(logLevels, ", ")))
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
