// Package config loads settings from built-in defaults, an optional YAML
// file and SCHOOL_ prefixed environment variables, in that order of
// precedence. A .env file in the working directory is loaded first.
package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// EnvPrefix marks the variables read into the config. A double underscore
// separates levels: SCHOOL_MONGO__URI sets mongo.uri.
const EnvPrefix = "SCHOOL_"

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Env        string           `koanf:"env" validate:"required"`
	Log        LogConfig        `koanf:"log"`
	Server     ServerConfig     `koanf:"server"`
	Mongo      MongoConfig      `koanf:"mongo"`
	Store      StoreConfig      `koanf:"store"`
	Redis      RedisConfig      `koanf:"redis"`
	RollNumber RollNumberConfig `koanf:"roll_number"`
	Attendance AttendanceConfig `koanf:"attendance"`

	// Timezone is the IANA zone of the school's calendar. "Local" uses the
	// zone of the host.
	Timezone string `koanf:"timezone" validate:"required"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"gt=0"`
}

type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database" validate:"required"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"gt=0"`
}

type StoreConfig struct {
	Driver string `koanf:"driver" validate:"oneof=mongo memory"`
}

// RedisConfig is optional; an empty Address disables Redis.
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

type RollNumberConfig struct {
	Strategy  string `koanf:"strategy" validate:"oneof=scan counter redis"`
	Serialize bool   `koanf:"serialize"`
}

type AttendanceConfig struct {
	LateAfter       string `koanf:"late_after" validate:"required"`
	DefaultLocation string `koanf:"default_location"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"env":                         "development",
		"log.level":                   "info",
		"server.port":                 "5000",
		"server.read_timeout":         "15s",
		"server.write_timeout":        "30s",
		"server.idle_timeout":         "60s",
		"mongo.uri":                   "mongodb://localhost:27017",
		"mongo.database":              "kids_zone_academy",
		"mongo.connect_timeout":       "10s",
		"store.driver":                DriverMongo,
		"redis.db":                    0,
		"roll_number.strategy":        "scan",
		"roll_number.serialize":       false,
		"attendance.late_after":       "09:00:00",
		"attendance.default_location": "School Campus",
		"timezone":                    "Local",
	}
}

// Load builds the config. path names an optional YAML file; "" skips it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "load config file %s", path)
		}
	}
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if c.Store.Driver == DriverMongo && c.Mongo.URI == "" {
		return errors.New("invalid config: mongo.uri is required for the mongo store")
	}
	if c.RollNumber.Strategy == "redis" && c.Redis.Address == "" {
		return errors.New("invalid config: redis.address is required for the redis roll number strategy")
	}
	if _, err := time.Parse("15:04:05", c.Attendance.LateAfter); err != nil {
		return errors.Errorf("invalid config: attendance.late_after %q is not HH:MM:SS", c.Attendance.LateAfter)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config: timezone %q", c.Timezone)
	}
	return loc, nil
}

// IsLocal reports whether logs should be human readable.
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == "development"
}
