// Package config holds octet driver settings stored as TOML.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"tlog.app/go/errors"
)

type (
	Config struct {
		// Verbose prints tokens, trees, symbols, memory and disassembly.
		Verbose bool `toml:"verbose"`
		// Pause waits for enter between programs.
		Pause bool `toml:"pause"`
		// Log is a tlog verbosity filter, e.g. "diag,parse_match".
		Log string `toml:"log"`

		StrictUninitialized bool `toml:"strict_uninitialized"`

		HexColumns int `toml:"hex_columns"`
		StepLimit  int `toml:"step_limit"`
	}
)

const (
	DefaultHexColumns = 8
	DefaultStepLimit  = 10000
)

func Default() *Config {
	return &Config{
		HexColumns: DefaultHexColumns,
		StepLimit:  DefaultStepLimit,
	}
}

// Load reads the file at path over the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	c := Default()

	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	err = toml.Unmarshal(data, c)
	if err != nil {
		return nil, errors.Wrap(err, "parse config %v", path)
	}

	err = c.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "config %v", path)
	}

	return c, nil
}

func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return errors.Wrap(err, "write config")
	}

	return nil
}

func (c *Config) Validate() error {
	if c.HexColumns <= 0 {
		return errors.New("hex_columns must be positive: %d", c.HexColumns)
	}

	if c.StepLimit <= 0 {
		return errors.New("step_limit must be positive: %d", c.StepLimit)
	}

	return nil
}
