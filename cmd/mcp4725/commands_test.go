// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/GermanBionicSystems/dac/internal/config"
	"github.com/GermanBionicSystems/dac/internal/meter"
	"github.com/GermanBionicSystems/dac/mcp4725"
)

var recordingData = map[string][]i2ctest.IO{
	"TestSet": {
		{Addr: 0x60, W: []byte{0x40, 0x80, 0x00}},
		{Addr: 0x60, W: []byte{0x62, 0x12, 0x30}},
		{Addr: 0x60, R: []byte{0x41, 0x12, 0x30, 0x00, 0x00}},
		{Addr: 0x60, R: []byte{0x41, 0x12, 0x30, 0x00, 0x00}},
		{Addr: 0x60, R: []byte{0xc1, 0x12, 0x30, 0x20, 0x00}},
	},
	"TestSetTimeout": {
		{Addr: 0x60, W: []byte{0x60, 0x00, 0x10}},
		{Addr: 0x60, R: []byte{0x40, 0x00, 0x10, 0x00, 0x00}},
		{Addr: 0x60, R: []byte{0x40, 0x00, 0x10, 0x00, 0x00}},
		{Addr: 0x60, R: []byte{0x40, 0x00, 0x10, 0x00, 0x00}},
	},
	"TestVoltage": {
		{Addr: 0x60, W: []byte{0x44, 0x80, 0x00}},
	},
	"TestStatus": {
		{Addr: 0x60, R: []byte{0xc0, 0xff, 0xf0, 0x20, 0x00}},
	},
	"TestGeneralCall": {
		{Addr: 0x00, W: []byte{0x06}},
		{Addr: 0x00, W: []byte{0x09}},
		{Addr: 0x60, W: []byte{0x20, 0x01}},
	},
	"TestSaw": {
		{Addr: 0x60, W: []byte{0x00, 0x00}},
		{Addr: 0x60, W: []byte{0x08, 0x00}},
		{Addr: 0x60, W: []byte{0x00, 0x00}},
		{Addr: 0x60, W: []byte{0x08, 0x00}},
	},
}

type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func (f *fakeClock) sleep(d time.Duration) {
	f.slept = append(f.slept, d)
	f.t = f.t.Add(d)
}

func (f *fakeClock) now() time.Time {
	return f.t
}

func getDevice(t *testing.T) (*device, *fakeClock) {
	bus := &i2ctest.Playback{Ops: recordingData[t.Name()], DontPanic: true}
	t.Cleanup(func() {
		if err := bus.Close(); err != nil {
			t.Error(err)
		}
	})
	d, err := newDevice(bus, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	clk := &fakeClock{t: time.Unix(0, 0)}
	d.sleep = clk.sleep
	d.now = clk.now
	return d, clk
}

func TestParseValue(t *testing.T) {
	for _, tc := range []struct {
		s    string
		want uint16
	}{
		{"0", 0},
		{"4095", 4095},
		{"0x800", 0x800},
		{"0b101", 5},
	} {
		v, err := parseValue(tc.s)
		if err != nil {
			t.Errorf("parseValue(%q) returned %v", tc.s, err)
		} else if v != tc.want {
			t.Errorf("parseValue(%q)=%d expected %d", tc.s, v, tc.want)
		}
	}
	for _, s := range []string{"", "-1", "65536", "abc"} {
		if _, err := parseValue(s); err == nil {
			t.Errorf("parseValue(%q) expected error", s)
		}
	}
	if _, err := parsePDMode("2k"); !errors.Is(err, mcp4725.ErrInvalidPDMode) {
		t.Errorf("parsePDMode(\"2k\") returned %v", err)
	}
}

func TestSet(t *testing.T) {
	d, clk := getDevice(t)
	if err := d.set(mcp4725.PDModeNormal, 0x800, false, false); err != nil {
		t.Fatal(err)
	}
	if err := d.set(mcp4725.PDMode1K, 0x123, true, true); err != nil {
		t.Fatal(err)
	}
	if len(clk.slept) != 2 {
		t.Errorf("slept %d times, expected 2", len(clk.slept))
	}
	if err := d.set(mcp4725.PDModeNormal, 4096, false, false); !errors.Is(err, mcp4725.ErrOutOfRange) {
		t.Errorf("set(4096) returned %v expected %v", err, mcp4725.ErrOutOfRange)
	}
}

func TestSetTimeout(t *testing.T) {
	d, _ := getDevice(t)
	d.cfg = &config.Config{VRefMilliVolts: 3_300, EEPROMPollMs: 5, EEPROMTimeoutMs: 10}
	if err := d.set(mcp4725.PDModeNormal, 1, true, true); !errors.Is(err, errEEPROMTimeout) {
		t.Errorf("set() returned %v expected %v", err, errEEPROMTimeout)
	}
}

func TestVoltage(t *testing.T) {
	d, _ := getDevice(t)
	if err := d.voltage(mcp4725.PDMode100K, "1.65V"); err != nil {
		t.Fatal(err)
	}
	if err := d.voltage(mcp4725.PDModeNormal, "lots"); err == nil {
		t.Error("expected error on invalid voltage")
	}
	if err := d.voltage(mcp4725.PDModeNormal, "12V"); !errors.Is(err, mcp4725.ErrInvalidVoltage) {
		t.Errorf("voltage(12V) returned %v expected %v", err, mcp4725.ErrInvalidVoltage)
	}
}

func TestStatus(t *testing.T) {
	d, _ := getDevice(t)
	var buf bytes.Buffer
	if err := d.status(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"DAC:    4095 (" + d.dev.CountToPotential(4095).String() + ") Normal",
		"EEPROM:    0 (" + d.dev.CountToPotential(0).String() + ") 1kΩ busy=false",
		"POR:    true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("status output %q does not contain %q", out, want)
		}
	}
}

func TestGeneralCall(t *testing.T) {
	d, _ := getDevice(t)
	if err := d.reset(); err != nil {
		t.Fatal(err)
	}
	if err := d.wakeUp(); err != nil {
		t.Fatal(err)
	}
	if err := d.fast(mcp4725.PDMode100K, 1); err != nil {
		t.Fatal(err)
	}
}

func TestSaw(t *testing.T) {
	d, clk := getDevice(t)
	var buf bytes.Buffer
	opts := sawOpts{
		Step:   2048,
		Period: 10 * time.Millisecond,
		Cycles: 2,
		Meter:  meter.NewWriter(&buf, &meter.Opts{X: 8}),
	}
	if err := d.saw(opts); err != nil {
		t.Fatal(err)
	}
	if len(clk.slept) != 4 || clk.slept[0] != 5*time.Millisecond {
		t.Errorf("slept %v, expected 4 times 5ms", clk.slept)
	}
	if !strings.HasSuffix(buf.String(), "\n\033[0m") {
		t.Errorf("meter not halted: %q", buf.String())
	}
	if err := d.saw(sawOpts{Step: 0, Cycles: 1}); err == nil {
		t.Error("expected error on zero step")
	}
}
