// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp4725

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Dev represents an MCP4725 D/A converter.
type Dev struct {
	d    i2c.Dev
	gc   i2c.Dev
	vRef physic.ElectricPotential
}

// New returns a handle to the MCP4725 at the address selected by pins, the
// value of the A2, A1 and A0 address bits (0-7). vRef is the supply voltage
// of the device, used to convert between voltages and counts.
func New(bus i2c.Bus, pins byte, vRef physic.ElectricPotential) (*Dev, error) {
	addr, err := Address(pins)
	if err != nil {
		return nil, err
	}
	if vRef <= 0 {
		return nil, fmt.Errorf("%w: reference %s", ErrInvalidVoltage, vRef)
	}
	return &Dev{
		d:    i2c.Dev{Bus: bus, Addr: uint16(addr)},
		gc:   i2c.Dev{Bus: bus, Addr: uint16(GeneralCallAddress)},
		vRef: vRef,
	}, nil
}

// Addr returns the I²C address of the device.
func (d *Dev) Addr() i2c.Addr {
	return i2c.Addr(d.d.Addr)
}

// PotentialToCount converts a voltage to the count the device needs to
// output it. The count is roughly v/(vRef/4095), rounded to the nearest step.
func (d *Dev) PotentialToCount(v physic.ElectricPotential) (uint16, error) {
	if v < 0 || v > d.vRef {
		return 0, fmt.Errorf("%w: %s not in [0, %s]", ErrInvalidVoltage, v, d.vRef)
	}
	return uint16(float64(v)*MaxValue/float64(d.vRef) + 0.5), nil
}

// CountToPotential converts a count as returned in Status to a voltage.
func (d *Dev) CountToPotential(count uint16) physic.ElectricPotential {
	return physic.ElectricPotential(float64(d.vRef) * float64(count) / MaxValue)
}

// SetDAC writes the DAC register. The EEPROM is left untouched, so the
// output returns to the EEPROM settings on the next reset.
func (d *Dev) SetDAC(pd PDMode, value uint16) error {
	w, err := EncodeWriteDAC(pd, value)
	if err != nil {
		return err
	}
	return tx(&d.d, w, nil)
}

// SetDACAndEEPROM writes the DAC register and saves the settings in EEPROM,
// where they are used at power up.
//
// While the EEPROM write is in progress, ReadStatus reports EEPROMBusy and the
// device ignores further EEPROM writes. Callers must wait for it to clear.
func (d *Dev) SetDACAndEEPROM(pd PDMode, value uint16) error {
	w, err := EncodeWriteDACEEPROM(pd, value)
	if err != nil {
		return err
	}
	return tx(&d.d, w, nil)
}

// FastWrite writes the DAC register with the 2 byte fast mode command. This is
// the quickest way to update the output, e.g. to generate a waveform.
func (d *Dev) FastWrite(pd PDMode, value uint16) error {
	w, err := EncodeFastWrite(pd, value)
	if err != nil {
		return err
	}
	return tx(&d.d, w, nil)
}

// SetOutput sets the output to the voltage v. The EEPROM is left untouched.
func (d *Dev) SetOutput(pd PDMode, v physic.ElectricPotential) error {
	count, err := d.PotentialToCount(v)
	if err != nil {
		return err
	}
	return d.SetDAC(pd, count)
}

// ReadStatus reads and decodes the DAC register and EEPROM content.
//
// The bus either fills all StatusLength bytes or fails, so a truncated reply
// from the device is returned as ErrBus. ErrShortRead only comes from
// DecodeStatus.
func (d *Dev) ReadStatus() (Status, error) {
	r := make([]byte, StatusLength)
	if err := tx(&d.d, nil, r); err != nil {
		return Status{}, err
	}
	return DecodeStatus(r)
}

// GeneralCallReset resets all devices on the bus, like a power on reset. The
// devices reload their output settings from EEPROM.
func (d *Dev) GeneralCallReset() error {
	return tx(&d.gc, GeneralCallReset(), nil)
}

// GeneralCallWakeUp clears the power down bits of all devices on the bus. The
// output resumes with the value of the DAC register.
func (d *Dev) GeneralCallWakeUp() error {
	return tx(&d.gc, GeneralCallWakeUp(), nil)
}

// Halt implements conn.Resource.
//
// It is a noop: the device keeps its output until told otherwise.
func (d *Dev) Halt() error {
	return nil
}

func (d *Dev) String() string {
	return "MCP4725{" + d.d.String() + "}"
}

func tx(dev *i2c.Dev, w, r []byte) error {
	if err := dev.Tx(w, r); err != nil {
		return fmt.Errorf("%w: %w", ErrBus, err)
	}
	return nil
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
