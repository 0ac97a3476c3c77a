// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp4725

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

const (
	// BaseAddress is the I²C address of the device with A2, A1 and A0 all
	// low. The low three bits are set by the address pins and the part
	// ordering code.
	BaseAddress i2c.Addr = 0x60
	// GeneralCallAddress is the reserved I²C broadcast address.
	GeneralCallAddress i2c.Addr = 0x00

	// MaxValue is the largest count the 12-bit D/A accepts.
	MaxValue = 1<<12 - 1
	// StatusLength is the number of bytes returned by a status read.
	StatusLength = 5

	addrMask byte = 0x07

	cmdWriteDAC       byte = 0x40
	cmdWriteDACEEPROM byte = 0x60

	// Second byte of the general call commands.
	cmdGeneralCallReset  byte = 0x06
	cmdGeneralCallWakeUp byte = 0x09

	readyFlag byte = 0x80
	porFlag   byte = 0x40

	fastPDShift  = 4
	writePDShift = 1
	readPDShift  = 1
	eePDShift    = 5
)

var (
	// ErrOutOfRange is returned when a count exceeds MaxValue.
	ErrOutOfRange = errors.New("mcp4725: value out of range")
	// ErrShortRead is returned when fewer than StatusLength status bytes are
	// available for decoding.
	ErrShortRead = errors.New("mcp4725: short status read")
	// ErrBus wraps every error returned by the underlying i2c.Bus.
	ErrBus = errors.New("mcp4725: bus error")
	// ErrInvalidAddress is returned for address pin values above 7.
	ErrInvalidAddress = errors.New("mcp4725: invalid address")
	// ErrInvalidPDMode is returned for a PDMode outside of the 4 defined
	// modes.
	ErrInvalidPDMode = errors.New("mcp4725: invalid power down mode")
	// ErrInvalidVoltage is returned for negative voltages, voltages above the
	// reference, or a non positive reference.
	ErrInvalidVoltage = errors.New("mcp4725: voltage out of range")
)

// Status is the content of the DAC register and of the EEPROM, as returned by
// a read of the device.
type Status struct {
	// EEPROMBusy is true while an EEPROM write is in progress.
	EEPROMBusy bool
	// PowerOnReset is true once the supply voltage is above the power on
	// reset threshold and the device is operational.
	PowerOnReset bool
	// PDMode and Value are the live DAC register settings.
	PDMode PDMode
	Value  uint16
	// EEPROMPDMode and EEPROMValue are loaded into the DAC register at power
	// up.
	EEPROMPDMode PDMode
	EEPROMValue  uint16
}

func (s Status) String() string {
	return fmt.Sprintf("{DAC: %d %s, EEPROM: %d %s, busy: %t, por: %t}",
		s.Value, s.PDMode, s.EEPROMValue, s.EEPROMPDMode, s.EEPROMBusy, s.PowerOnReset)
}

// Address returns the 7 bit I²C address of a device with the address pins
// A2, A1 and A0 set to pins.
func Address(pins byte) (i2c.Addr, error) {
	if pins > addrMask {
		return 0, fmt.Errorf("%w: %d > %d", ErrInvalidAddress, pins, addrMask)
	}
	return BaseAddress | i2c.Addr(pins), nil
}

func checkArgs(pd PDMode, value uint16) error {
	if !pd.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPDMode, pd)
	}
	if value > MaxValue {
		return fmt.Errorf("%w: %d > %d", ErrOutOfRange, value, MaxValue)
	}
	return nil
}

// EncodeFastWrite returns the 2 byte fast mode command. It updates the DAC
// register and the power down mode, and leaves the EEPROM untouched.
//
//	C2 C1 PD1 PD0 D11 D10 D9 D8 | D7 D6 D5 D4 D3 D2 D1 D0
func EncodeFastWrite(pd PDMode, value uint16) ([]byte, error) {
	if err := checkArgs(pd, value); err != nil {
		return nil, err
	}
	return []byte{
		pd.Bits()<<fastPDShift | byte(value>>8)&0x0f,
		byte(value),
	}, nil
}

// EncodeWriteDAC returns the 3 byte command writing the DAC register.
func EncodeWriteDAC(pd PDMode, value uint16) ([]byte, error) {
	return encodeWrite(cmdWriteDAC, pd, value)
}

// EncodeWriteDACEEPROM returns the 3 byte command writing both the DAC
// register and the EEPROM.
func EncodeWriteDACEEPROM(pd PDMode, value uint16) ([]byte, error) {
	return encodeWrite(cmdWriteDACEEPROM, pd, value)
}

// encodeWrite builds the register write commands. The value is left
// justified over the last two bytes.
//
//	C2 C1 C0 x x PD1 PD0 x | D11 .. D4 | D3 D2 D1 D0 x x x x
func encodeWrite(cmd byte, pd PDMode, value uint16) ([]byte, error) {
	if err := checkArgs(pd, value); err != nil {
		return nil, err
	}
	return []byte{
		cmd | pd.Bits()<<writePDShift,
		byte(value >> 4),
		byte(value<<4) & 0xf0,
	}, nil
}

// GeneralCallReset returns the byte to send to GeneralCallAddress to reset
// every device on the bus. Devices reload their DAC register from EEPROM.
func GeneralCallReset() []byte {
	return []byte{cmdGeneralCallReset}
}

// GeneralCallWakeUp returns the byte to send to GeneralCallAddress to clear
// the power down bits of every device on the bus.
func GeneralCallWakeUp() []byte {
	return []byte{cmdGeneralCallWakeUp}
}

// DecodeStatus decodes the bytes read from the device. Only the first
// StatusLength bytes are used.
//
// The DAC value is left justified in bytes 1-2 while the EEPROM value is right
// justified in bytes 3-4:
//
//	RDY POR x x x PD1 PD0 x | D11 .. D4 | D3 .. D0 x x x x | x PD1 PD0 x D11 .. D8 | D7 .. D0
func DecodeStatus(b []byte) (Status, error) {
	if len(b) < StatusLength {
		return Status{}, fmt.Errorf("%w: got %d bytes, expected %d", ErrShortRead, len(b), StatusLength)
	}
	return Status{
		EEPROMBusy:   b[0]&readyFlag == 0,
		PowerOnReset: b[0]&porFlag != 0,
		PDMode:       PDModeFromBits(b[0] >> readPDShift),
		Value:        uint16(b[1])<<4 | uint16(b[2])>>4,
		EEPROMPDMode: PDModeFromBits(b[3] >> eePDShift),
		EEPROMValue:  uint16(b[3]&0x0f)<<8 | uint16(b[4]),
	}, nil
}
