// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the device settings used by the mcp4725 command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// Config describes how to reach a device and how to wait on it.
type Config struct {
	// Bus is the name of the I²C bus as registered in i2creg. Empty selects
	// the first bus available.
	Bus string `yaml:"bus"`
	// Address is the value of the A2, A1 and A0 address bits.
	Address byte `yaml:"address"`
	// VRefMilliVolts is the supply voltage of the device.
	VRefMilliVolts int `yaml:"vref_mv"`

	// EEPROM write completion polling.
	EEPROMPollMs    int `yaml:"eeprom_poll_ms"`
	EEPROMTimeoutMs int `yaml:"eeprom_timeout_ms"`
}

// Default returns the settings of an MCP4725A0 with A0 tied low and powered
// from 3.3V.
func Default() *Config {
	return &Config{
		VRefMilliVolts:  3_300,
		EEPROMPollMs:    5,
		EEPROMTimeoutMs: 100,
	}
}

// Load reads the YAML file at path. Keys missing from the file keep their
// Default value. Unknown keys are an error.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML document on top of Default.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	// An empty document keeps the defaults.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// VRef returns the reference voltage.
func (c *Config) VRef() physic.ElectricPotential {
	return physic.ElectricPotential(c.VRefMilliVolts) * physic.MilliVolt
}

// EEPROMPoll returns the interval between two status reads while waiting for
// an EEPROM write.
func (c *Config) EEPROMPoll() time.Duration {
	return time.Duration(c.EEPROMPollMs) * time.Millisecond
}

// EEPROMTimeout returns how long to wait for an EEPROM write to complete.
func (c *Config) EEPROMTimeout() time.Duration {
	return time.Duration(c.EEPROMTimeoutMs) * time.Millisecond
}
