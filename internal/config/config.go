// Package config loads Taskdog's runtime configuration from a YAML
// file, environment variables, and a local .env file, grounded on the
// teacher's github.com/spf13/viper + github.com/joho/godotenv
// pairing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/taskdog/taskdog/internal/errs"
)

// StorageDriver selects which TaskRepository implementation backs the
// service.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"
	StorageSQLite   StorageDriver = "sqlite"
	StoragePostgres StorageDriver = "postgres"
)

// Config holds every value documented in the default config file; see
// Default for the values used when a key is absent from both the file
// and the environment.
type Config struct {
	DataDir string `mapstructure:"data_dir"`

	MaxHoursPerDay float64       `mapstructure:"max_hours_per_day"`
	DayStartTime   time.Duration `mapstructure:"day_start_time"`
	DayEndTime     time.Duration `mapstructure:"day_end_time"`
	DefaultAlgorithm string      `mapstructure:"default_algorithm"`
	IncludeAllDays   bool        `mapstructure:"include_all_days"`

	Storage StorageDriver `mapstructure:"storage"`
	SQLitePath  string    `mapstructure:"sqlite_path"`
	PostgresDSN string    `mapstructure:"postgres_dsn"`

	NotesDir string `mapstructure:"notes_dir"`

	HolidayRefreshCron string `mapstructure:"holiday_refresh_cron"`

	ServerHost string `mapstructure:"server_host"`
	ServerPort int    `mapstructure:"server_port"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	LogFormat string `mapstructure:"log_format"`
	LogDebug  bool   `mapstructure:"log_debug"`
	LogFile   string `mapstructure:"log_file"`
}

// Default returns the documented zero-config defaults: in-memory
// storage, a 9-to-6 eight-hour workday, the greedy algorithm, and a
// server bound to localhost:8080.
func Default() *Config {
	return &Config{
		DataDir:          defaultDataDir(),
		MaxHoursPerDay:   8,
		DayStartTime:     9 * time.Hour,
		DayEndTime:       18 * time.Hour,
		DefaultAlgorithm: "greedy",
		IncludeAllDays:   false,
		Storage:          StorageMemory,
		SQLitePath:       "taskdog.db",
		NotesDir:         "notes",
		HolidayRefreshCron: "0 3 * * *",
		ServerHost:       "127.0.0.1",
		ServerPort:       8080,
		LogFormat:        "text",
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskdog"
	}
	return filepath.Join(home, ".config", "taskdog")
}

// Load reads .env (if present), then a YAML config file (explicit
// path, or $TASKDOG_CONFIG, or data_dir/config.yaml), then
// TASKDOG_-prefixed environment variables, and merges the result over
// Default(). path may be empty to use discovery alone.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional; absence is not an error

	def := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("taskdog")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	switch {
	case path != "":
		v.SetConfigFile(path)
	case os.Getenv("TASKDOG_CONFIG") != "":
		v.SetConfigFile(os.Getenv("TASKDOG_CONFIG"))
	default:
		v.SetConfigName("config")
		v.AddConfigPath(def.DataDir)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := mergo.Merge(cfg, def); err != nil {
		return nil, fmt.Errorf("config: merge defaults: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the engine's own ValidationError kind (spec.md §7)
// for any field combination the service cannot start with.
func (c *Config) Validate() error {
	if c.MaxHoursPerDay <= 0 {
		return errs.NewValidation("max_hours_per_day must be positive, got %v", c.MaxHoursPerDay)
	}
	if c.DayEndTime <= c.DayStartTime {
		return errs.NewValidation("day_end_time (%v) must be after day_start_time (%v)", c.DayEndTime, c.DayStartTime)
	}
	switch c.Storage {
	case StorageMemory, StorageSQLite, StoragePostgres:
	default:
		return errs.NewValidation("storage must be one of memory, sqlite, postgres, got %q", c.Storage)
	}
	if c.Storage == StoragePostgres && strings.TrimSpace(c.PostgresDSN) == "" {
		return errs.NewValidation("postgres_dsn is required when storage is postgres")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return errs.NewValidation("server_port must be in 1-65535, got %d", c.ServerPort)
	}
	return nil
}
