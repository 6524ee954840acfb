// Package config loads runtime settings from defaults and SCHEMAFORGE_*
// environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"schemaforge/internal/mapping"
	"schemaforge/internal/render"
)

const envPrefix = "SCHEMAFORGE_"

// Config carries runtime settings for the HTTP shell and CLI.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Mapping  MappingConfig  `koanf:"mapping"`
	Log      LogConfig      `koanf:"log"`
	Database DatabaseConfig `koanf:"database"`
}

type ServerConfig struct {
	Host        string   `koanf:"host"`
	Port        int      `koanf:"port" validate:"gte=1,lte=65535"`
	CORSOrigins []string `koanf:"cors_origins"`
}

type MappingConfig struct {
	Threshold float64 `koanf:"threshold" validate:"gte=0,lte=1"`
	MaxLevel  int     `koanf:"max_level" validate:"gte=1,lte=16"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

type DatabaseConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"gte=1,lte=65535"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8080, CORSOrigins: []string{"*"}},
		Mapping: MappingConfig{Threshold: mapping.DefaultThreshold, MaxLevel: render.DefaultMaxLevel},
		Log:     LogConfig{Level: "info"},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "postgres",
			SSLMode: "disable",
		},
	}
}

// Load builds the configuration from defaults overridden by environment
// variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        envPrefix,
		TransformFunc: envTransform,
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// envTransform maps SCHEMAFORGE_SERVER_CORS_ORIGINS to server.cors_origins
// and so on: the first underscore separates the section, the rest of the
// key is kept as-is. Comma values become lists.
func envTransform(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	section, rest, found := strings.Cut(key, "_")
	path := section
	if found {
		path = section + "." + rest
	}
	if strings.Contains(value, ",") {
		return path, strings.Split(value, ",")
	}
	return path, value
}
