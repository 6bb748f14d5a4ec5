// Package config loads plangate settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexanderramin/plangate/internal/db"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// DefaultPlanRoute is where the blocking prompt sends users to author a plan.
	DefaultPlanRoute = "/daily-plans/new?date={date}"

	// DefaultRangeParallelism bounds concurrent gate checks in CheckRange.
	DefaultRangeParallelism = 4
)

type Config struct {
	// Dir holds config.yaml, state.yaml, the default database and logs/.
	Dir string `yaml:"-"`

	Database  DatabaseConfig  `yaml:"database"`
	User      UserConfig      `yaml:"user"`
	Locale    string          `yaml:"locale"`
	Debug     bool            `yaml:"debug"`
	Gate      GateConfig      `yaml:"gate"`
	Presenter PresenterConfig `yaml:"presenter"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	// DSN is a password-free Postgres connection string. When empty the OS
	// keyring is consulted.
	DSN string `yaml:"dsn"`
}

// UserConfig identifies the acting user. Identity and role come from outside
// the application; plangate only carries them.
type UserConfig struct {
	ID    string `yaml:"id"`
	Admin bool   `yaml:"admin"`
}

type GateConfig struct {
	// ReverifyOnWrite re-reads the plan inside the time-entry transaction and
	// refuses the write if it no longer qualifies.
	ReverifyOnWrite  bool `yaml:"reverify_on_write"`
	RangeParallelism int  `yaml:"range_parallelism"`
}

type PresenterConfig struct {
	// PlanRoute is a template; "{date}" is replaced with YYYY-MM-DD.
	PlanRoute string `yaml:"plan_route"`
}

// Default returns the configuration used when no file or env var says otherwise.
func Default(dir string) Config {
	return Config{
		Dir: dir,
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join(dir, "plangate.db"),
		},
		Locale: "en",
		Gate: GateConfig{
			RangeParallelism: DefaultRangeParallelism,
		},
		Presenter: PresenterConfig{PlanRoute: DefaultPlanRoute},
	}
}

// DefaultPath is $PLANGATE_CONFIG or ~/.plangate/config.yaml.
func DefaultPath() (string, error) {
	if v := os.Getenv("PLANGATE_CONFIG"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, ".plangate", "config.yaml"), nil
}

// Load reads the default config file and applies environment overrides.
func Load() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Config{}, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// LoadFile reads path over the defaults. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := Default(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from PLANGATE_* environment variables. Malformed
// values are ignored.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("PLANGATE_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("PLANGATE_DB_DRIVER"); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("PLANGATE_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("PLANGATE_USER"); v != "" {
		cfg.User.ID = v
	}
	if v := os.Getenv("PLANGATE_ADMIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.User.Admin = b
		}
	}
	if v := os.Getenv("PLANGATE_LOCALE"); v != "" {
		cfg.Locale = v
	}
	if v := os.Getenv("PLANGATE_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v := os.Getenv("PLANGATE_REVERIFY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Gate.ReverifyOnWrite = b
		}
	}
	if v := os.Getenv("PLANGATE_PLAN_ROUTE"); v != "" {
		cfg.Presenter.PlanRoute = v
	}
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Database.DSN != "" {
			if _, err := db.ValidateConnString(c.Database.DSN); err != nil {
				errs = append(errs, fmt.Errorf("database.dsn: %w", err))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not one of sqlite, postgres", c.Database.Driver))
	}

	if c.Gate.RangeParallelism < 1 {
		errs = append(errs, fmt.Errorf("gate.range_parallelism must be at least 1, got %d", c.Gate.RangeParallelism))
	}
	if !strings.Contains(c.Presenter.PlanRoute, "{date}") {
		errs = append(errs, fmt.Errorf("presenter.plan_route %q must contain {date}", c.Presenter.PlanRoute))
	}

	return errors.Join(errs...)
}

// StatePath is where UI preferences are persisted.
func (c Config) StatePath() string {
	return filepath.Join(c.Dir, "state.yaml")
}
