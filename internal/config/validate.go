// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
)

var errNilConfig = errors.New("config: missing configuration")

// Validate checks the values are usable. It does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errNilConfig
	}
	if cfg.Address > 7 {
		return fmt.Errorf("config: address %d must be in [0, 7]", cfg.Address)
	}
	if cfg.VRefMilliVolts <= 0 {
		return fmt.Errorf("config: vref_mv %d must be positive", cfg.VRefMilliVolts)
	}
	if cfg.EEPROMPollMs <= 0 {
		return fmt.Errorf("config: eeprom_poll_ms %d must be positive", cfg.EEPROMPollMs)
	}
	if cfg.EEPROMTimeoutMs < cfg.EEPROMPollMs {
		return fmt.Errorf("config: eeprom_timeout_ms %d must be at least eeprom_poll_ms %d", cfg.EEPROMTimeoutMs, cfg.EEPROMPollMs)
	}
	return nil
}
