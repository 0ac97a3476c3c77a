// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp4725

import (
	"fmt"
	"strconv"
)

// PDMode is the power down mode of the output.
//
// In any mode other than PDModeNormal the output amplifier is off and the
// output pin is tied to ground through a resistor.
type PDMode byte

const (
	PDModeNormal PDMode = iota
	PDMode1K
	PDMode100K
	PDMode500K

	pdMask byte = 0x03
)

// PDModeFromBits returns the PDMode represented by the two low bits of b.
func PDModeFromBits(b byte) PDMode {
	return PDMode(b & pdMask)
}

// Bits returns the 2-bit field value of the mode.
func (m PDMode) Bits() byte {
	return byte(m) & pdMask
}

func (m PDMode) valid() bool {
	return byte(m) <= pdMask
}

func (m PDMode) String() string {
	switch m {
	case PDModeNormal:
		return "Normal"
	case PDMode1K:
		return "1kΩ"
	case PDMode100K:
		return "100kΩ"
	case PDMode500K:
		return "500kΩ"
	}
	return "PDMode(" + strconv.Itoa(int(m)) + ")"
}

// Set sets the PDMode to a value represented by the string s. Set implements
// the flag.Value interface.
func (m *PDMode) Set(s string) error {
	switch s {
	case "normal", "Normal", "0":
		*m = PDModeNormal
	case "1k", "1K", "1kΩ", "1":
		*m = PDMode1K
	case "100k", "100K", "100kΩ", "2":
		*m = PDMode100K
	case "500k", "500K", "500kΩ", "3":
		*m = PDMode500K
	default:
		return fmt.Errorf("%w %q: expected normal, 1k, 100k or 500k", ErrInvalidPDMode, s)
	}
	return nil
}
