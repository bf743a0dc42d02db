package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tstpierre-tc/i2clcd"
)

const (
	defaultColumns = 16
	defaultLines   = 2
)

type Config struct {
	// Bus is the periph bus name, empty for the first one found.
	Bus       string `yaml:"bus"`
	Address   uint16 `yaml:"address"`
	Columns   uint8  `yaml:"columns"`
	Lines     uint8  `yaml:"lines"`
	Font      string `yaml:"font"`
	Backlight bool   `yaml:"backlight"`
}

func (c Config) Opts() (*i2clcd.Opts, error) {
	f, err := i2clcd.ParseFont(c.Font)
	if err != nil {
		return nil, err
	}
	return &i2clcd.Opts{I2CAddr: c.Address, Cols: c.Columns, Lines: c.Lines, Font: f}, nil
}

func defaultConfig() *Config {
	return &Config{
		Address:   i2clcd.DefaultAddress,
		Columns:   defaultColumns,
		Lines:     defaultLines,
		Font:      "5x8",
		Backlight: true,
	}
}

func parseConfig(content []byte) (*Config, error) {
	c := defaultConfig()
	err := yaml.Unmarshal(content, c)
	if err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Address == 0 {
		c.Address = i2clcd.DefaultAddress
	}
	if c.Address > 0x7f {
		return fmt.Errorf("address 0x%x is not a 7-bit I²C address", c.Address)
	}
	if c.Columns == 0 {
		return fmt.Errorf("columns must be at least 1")
	}
	if c.Lines < 1 || c.Lines > 4 {
		return fmt.Errorf("lines must be between 1 and 4, got %d", c.Lines)
	}
	if _, err := i2clcd.ParseFont(c.Font); err != nil {
		return err
	}
	return nil
}

// readConfig loads path, or returns the defaults when path is empty.
func readConfig(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}
	return parseConfig(content)
}
