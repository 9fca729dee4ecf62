// Package config loads the settings shared by the paramform and paramserver
// commands.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-paramform/pkg/logging"
	"github.com/goliatone/go-paramform/pkg/paramservice/codec"
	"github.com/goliatone/go-paramform/pkg/render"
)

// Environment variables applied over file settings.
const (
	EnvEndpoint  = "PARAMFORM_ENDPOINT"
	EnvNamespace = "PARAMFORM_NAMESPACE"
	EnvCodec     = "PARAMFORM_CODEC"
	EnvTimeout   = "PARAMFORM_TIMEOUT"
	EnvHistoryDB = "PARAMFORM_HISTORY_DB"
	EnvOutput    = "PARAMFORM_OUTPUT"
	EnvFilter    = "PARAMFORM_FILTER"
	EnvAddr      = "PARAMFORM_ADDR"
)

// Config holds client and server settings.
type Config struct {
	Endpoint  string         `yaml:"endpoint" json:"endpoint"`
	Namespace string         `yaml:"namespace" json:"namespace"`
	Codec     string         `yaml:"codec" json:"codec"`
	Timeout   string         `yaml:"timeout" json:"timeout"`
	Output    string         `yaml:"output" json:"output"`
	HistoryDB string         `yaml:"history_db" json:"history_db"`
	Filter    bool           `yaml:"filter" json:"filter"`
	Server    ServerConfig   `yaml:"server" json:"server"`
	Log       logging.Config `yaml:"log" json:"log"`
}

// ServerConfig configures the parameter server.
type ServerConfig struct {
	Addr      string `yaml:"addr" json:"addr"`
	BodyLimit string `yaml:"body_limit" json:"body_limit"`
	Seed      string `yaml:"seed" json:"seed"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Namespace: "/",
		Codec:     codec.NameJSON,
		Timeout:   "10s",
		Output:    render.FormatPretty,
		Filter:    true,
		Server: ServerConfig{
			Addr:      "127.0.0.1:11311",
			BodyLimit: "4M",
		},
		Log: logging.DefaultConfig(),
	}
}

// Load reads path over the defaults, applies the environment and validates
// the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(data, path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode parses data into cfg. JSON files may contain comments.
func Decode(data []byte, source string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".json", ".jsonc":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("config: parse %s: %w", source, err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("config: parse %s: %w", source, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from the environment through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvEndpoint:  &c.Endpoint,
		EnvNamespace: &c.Namespace,
		EnvCodec:     &c.Codec,
		EnvTimeout:   &c.Timeout,
		EnvHistoryDB: &c.HistoryDB,
		EnvOutput:    &c.Output,
		EnvAddr:      &c.Server.Addr,
	}
	for key, target := range strs {
		if value, ok := lookup(key); ok {
			*target = strings.TrimSpace(value)
		}
	}
	if value, ok := lookup(EnvFilter); ok {
		enabled, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvFilter, err)
		}
		c.Filter = enabled
	}
	if value, ok := lookup(logging.EnvLevel); ok && strings.TrimSpace(value) != "" {
		c.Log.Level = strings.TrimSpace(value)
	}
	return nil
}

// Validate rejects settings the commands cannot act on.
func (c Config) Validate() error {
	if _, err := codec.ByName(c.Codec); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := render.Default().Lookup(c.Output); err != nil {
		return fmt.Errorf("config: unknown output %q (want one of %s)", c.Output, strings.Join(render.Formats(), ", "))
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Namespace) == "" {
		return errors.New("config: namespace must not be empty")
	}
	return nil
}

// TimeoutDuration parses Timeout. Empty means no timeout.
func (c Config) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(c.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.Timeout))
	if err != nil {
		return 0, fmt.Errorf("config: timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: timeout %q must not be negative", c.Timeout)
	}
	return d, nil
}
