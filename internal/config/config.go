package config

import (
	"errors"
	"fmt"
	"github.com/burenotti/go_energy_balance/internal/domain/projection"
	"github.com/ilyakaznacheev/cleanenv"
)

var (
	ErrConfigNotLoaded = errors.New("config not loaded")
)

type Environment string

const (
	Production  Environment = "prod"
	Development Environment = "dev"
)

func (e *Environment) SetValue(s string) error {
	*e = Environment(s)
	if *e != Production && *e != Development {
		return configNotLoadedErr(`only "prod" and "dev" environments are allowed`)
	}
	return nil
}

type Config struct {
	App struct {
		Env Environment `yaml:"env" env:"ENV" env-required:""`
	} `yaml:"app" env-prefix:"APP_" env-required:""`

	Server struct {
		Host string `yaml:"host" env:"HOST" env-default:"localhost"`
		Port int    `yaml:"port" env:"PORT" env-default:"8080"`
	} `yaml:"server" env-prefix:"SERVER_"`

	DB struct {
		Driver string `yaml:"driver" env:"DRIVER" env-default:"sqlite"`
		DSN    string `yaml:"dsn" env:"DSN" env-default:":memory:"`
	} `yaml:"db" env-prefix:"DB_"`

	Catalog struct {
		Path  string `yaml:"path" env:"PATH" env-default:""`
		Sheet string `yaml:"sheet" env:"SHEET" env-default:"Exercises"`
	} `yaml:"catalog" env-prefix:"CATALOG_"`

	Projection struct {
		DefaultDays    int     `yaml:"default_days" env:"DEFAULT_DAYS" env-default:"365"`
		Mode           string  `yaml:"mode" env:"MODE" env-default:"plain"`
		DefaultDeficit float64 `yaml:"default_deficit" env:"DEFAULT_DEFICIT" env-default:"500"`
	} `yaml:"projection" env-prefix:"PROJECTION_"`

	Exercises struct {
		Strict bool `yaml:"strict" env:"STRICT" env-default:"false"`
	} `yaml:"exercises" env-prefix:"EXERCISES_"`

	Metrics struct {
		Namespace string `yaml:"namespace" env:"NAMESPACE" env-default:"energy_balance"`
	} `yaml:"metrics" env-prefix:"METRICS_"`
}

func Load(filePath string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(filePath, cfg); err != nil {
		return nil, configNotLoadedErr("config not loaded: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad(filePath string) *Config {
	cfg, err := Load(filePath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.App.Env != Production && c.App.Env != Development {
		return configNotLoadedErr(`only "prod" and "dev" environments are allowed, got %q`, c.App.Env)
	}
	if c.Projection.DefaultDays < 0 || c.Projection.DefaultDays > projection.MaxHorizonDays {
		return configNotLoadedErr("projection.default_days must be within [0, %d], got %d", projection.MaxHorizonDays, c.Projection.DefaultDays)
	}
	if c.Projection.DefaultDeficit < 0 {
		return configNotLoadedErr("projection.default_deficit must not be negative, got %v", c.Projection.DefaultDeficit)
	}
	return nil
}

func configNotLoadedErr(format string, args ...any) error {
	return errors.Join(fmt.Errorf(format, args...), ErrConfigNotLoaded)
}
