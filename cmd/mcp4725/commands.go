// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/dac/internal/config"
	"github.com/GermanBionicSystems/dac/internal/meter"
	"github.com/GermanBionicSystems/dac/mcp4725"
)

var errEEPROMTimeout = errors.New("timed out waiting for the EEPROM write")

type device struct {
	dev *mcp4725.Dev
	cfg *config.Config

	// Overridden in tests.
	sleep func(time.Duration)
	now   func() time.Time
}

func (d *device) sleepFor(t time.Duration) {
	if d.sleep != nil {
		d.sleep(t)
		return
	}
	time.Sleep(t)
}

func (d *device) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

// parseValue accepts decimal, 0x hexadecimal or 0b binary counts.
func parseValue(s string) (uint16, error) {
	if s == "" {
		return 0, errors.New("missing VALUE")
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid VALUE %q: %w", s, err)
	}
	return uint16(v), nil
}

func parsePDMode(s string) (mcp4725.PDMode, error) {
	var pd mcp4725.PDMode
	err := pd.Set(s)
	return pd, err
}

func (d *device) set(pd mcp4725.PDMode, value uint16, eeprom, wait bool) error {
	fields := log.Fields{"addr": d.dev.Addr(), "pd": pd, "value": value}
	if !eeprom {
		log.WithFields(fields).Debug("write DAC register")
		return d.dev.SetDAC(pd, value)
	}
	log.WithFields(fields).Debug("write DAC register and EEPROM")
	if err := d.dev.SetDACAndEEPROM(pd, value); err != nil {
		return err
	}
	if !wait {
		return nil
	}
	s, err := d.waitEEPROM()
	if err != nil {
		return err
	}
	log.WithField("status", s).Info("EEPROM written")
	return nil
}

func (d *device) voltage(pd mcp4725.PDMode, arg string) error {
	var v physic.ElectricPotential
	if err := v.Set(arg); err != nil {
		return fmt.Errorf("invalid VOLTAGE %q: %w", arg, err)
	}
	log.WithFields(log.Fields{"addr": d.dev.Addr(), "pd": pd, "v": v}).Debug("set output")
	return d.dev.SetOutput(pd, v)
}

func (d *device) fast(pd mcp4725.PDMode, value uint16) error {
	log.WithFields(log.Fields{"addr": d.dev.Addr(), "pd": pd, "value": value}).Debug("fast write")
	return d.dev.FastWrite(pd, value)
}

func (d *device) status(w io.Writer) error {
	s, err := d.dev.ReadStatus()
	if err != nil {
		return err
	}
	log.WithField("status", s).Debug("read status")
	_, err = fmt.Fprintf(w, "DAC:    %4d (%s) %s\nEEPROM: %4d (%s) %s busy=%t\nPOR:    %t\n",
		s.Value, d.dev.CountToPotential(s.Value), s.PDMode,
		s.EEPROMValue, d.dev.CountToPotential(s.EEPROMValue), s.EEPROMPDMode, s.EEPROMBusy,
		s.PowerOnReset)
	return err
}

func (d *device) reset() error {
	log.Debug("general call reset")
	return d.dev.GeneralCallReset()
}

func (d *device) wakeUp() error {
	log.Debug("general call wake-up")
	return d.dev.GeneralCallWakeUp()
}

// waitEEPROM polls the status until the device reports the EEPROM write is
// complete.
func (d *device) waitEEPROM() (mcp4725.Status, error) {
	deadline := d.clock().Add(d.cfg.EEPROMTimeout())
	for {
		s, err := d.dev.ReadStatus()
		if err != nil {
			return s, err
		}
		if !s.EEPROMBusy {
			return s, nil
		}
		if !d.clock().Before(deadline) {
			return s, errEEPROMTimeout
		}
		log.Debug("EEPROM busy")
		d.sleepFor(d.cfg.EEPROMPoll())
	}
}

type sawOpts struct {
	Step   int
	Period time.Duration
	// Cycles is the number of ramps to output, 0 for no limit.
	Cycles int
	Meter  *meter.Dev
}

func newMeter() *meter.Dev {
	return meter.New(&meter.Opts{X: 40})
}

// saw ramps the output from 0 to full scale with fast mode writes, then
// starts over.
func (d *device) saw(opts sawOpts) error {
	if opts.Step <= 0 || opts.Step > mcp4725.MaxValue {
		return fmt.Errorf("step %d must be in [1, %d]", opts.Step, mcp4725.MaxValue)
	}
	samples := mcp4725.MaxValue/opts.Step + 1
	delay := opts.Period / time.Duration(samples)
	log.WithFields(log.Fields{"step": opts.Step, "samples": samples, "delay": delay}).Debug("saw")
	if opts.Meter != nil {
		defer opts.Meter.Halt()
	}
	for cycle := 0; opts.Cycles == 0 || cycle < opts.Cycles; cycle++ {
		for count := 0; count <= mcp4725.MaxValue; count += opts.Step {
			if err := d.dev.FastWrite(mcp4725.PDModeNormal, uint16(count)); err != nil {
				return err
			}
			if opts.Meter != nil {
				if err := opts.Meter.Show(uint16(count), d.dev.CountToPotential(uint16(count)).String()); err != nil {
					return err
				}
			}
			if delay > 0 {
				d.sleepFor(delay)
			}
		}
	}
	return nil
}
