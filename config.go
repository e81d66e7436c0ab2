// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aqlair

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the client settings. Zero values fall back to the
// defaults of DefaultConfig, so a partial YAML file is enough.
type Config struct {
	// Endpoint is the server's base URL.
	Endpoint string `yaml:"endpoint"`
	// Database selects a database other than the default one.
	Database string `yaml:"database"`
	// Username and Password enable basic authentication when set.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// PoolSize is the number of idle connections kept per host.
	PoolSize int `yaml:"pool_size"`
	// PoolMaxSize caps the connections opened per host.
	PoolMaxSize int `yaml:"pool_max_size"`
	// Timeout bounds a single request, zero means no limit. YAML
	// accepts Go duration strings such as "30s".
	Timeout Duration `yaml:"timeout"`
}

// Duration is a time.Duration that unmarshals from YAML duration
// strings.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("cannot parse duration %q: %s", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultConfig returns the settings used when nothing is configured:
// a local server and a modest connection pool.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:    "http://localhost:8529",
		PoolSize:    10,
		PoolMaxSize: 1000,
	}
}

// ParseConfig reads a YAML document into a Config on top of the
// defaults and validates it.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %s", err)
	}
	return ParseConfig(data)
}

// Validate checks the config for settings that cannot work.
func (cfg *Config) Validate() error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("invalid config: endpoint is empty")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid config: endpoint %q is not a valid URL", cfg.Endpoint)
	}
	if cfg.PoolSize < 0 || cfg.PoolMaxSize < 0 {
		return fmt.Errorf("invalid config: pool sizes must not be negative")
	}
	if cfg.PoolMaxSize > 0 && cfg.PoolSize > cfg.PoolMaxSize {
		return fmt.Errorf("invalid config: pool_size %d exceeds pool_max_size %d", cfg.PoolSize, cfg.PoolMaxSize)
	}
	return nil
}

// NewClient builds a Client from the config, with a connection pool
// sized to the configured limits.
func (cfg *Config) NewClient() *Client {
	transport := &http.Transport{
		MaxIdleConnsPerHost: cfg.PoolSize,
		MaxConnsPerHost:     cfg.PoolMaxSize,
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		database: cfg.Database,
		username: cfg.Username,
		password: cfg.Password,
		hc: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Timeout),
		},
	}
}
