// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mcp4725 provides a driver for the Microchip MCP4725 single channel
// 12-bit Digital to Analog converter.
//
// The package is split in two layers. The codec functions (EncodeFastWrite,
// EncodeWriteDAC, EncodeWriteDACEEPROM, GeneralCallReset, GeneralCallWakeUp
// and DecodeStatus) are pure and produce or consume the exact bytes exchanged
// with the chip. Dev uses them to drive a device on an i2c.Bus.
//
// The MCP4725 uses VCC as its voltage reference, so the reference given to
// New is only used to convert between counts and voltages.
//
// Writing to EEPROM takes up to 50ms. During that time the device reports
// busy in its status and ignores further EEPROM writes. Dev does not wait on
// its own; poll ReadStatus until Status.EEPROMBusy is false.
//
// # Datasheet
//
// https://ww1.microchip.com/downloads/en/devicedoc/22039d.pdf
package mcp4725
