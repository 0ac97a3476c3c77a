// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package meter draws the output level of a D/A converter as a bar on the
// terminal using ANSI color codes.
package meter

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/GermanBionicSystems/dac/mcp4725"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

var off = color.NRGBA{0x20, 0x20, 0x20, 255}

// Opts represents the options available for the meter.
type Opts struct {
	// X is the width of the bar in cells.
	X int
	// Max is the count shown as a full bar. Defaults to mcp4725.MaxValue.
	Max     uint16
	Palette *ansi256.Palette
}

// Dev is a level meter that redraws itself on a single terminal line.
type Dev struct {
	w       io.Writer
	l       int
	max     uint16
	palette ansi256.Palette

	buf bytes.Buffer
}

// New returns a meter that draws on stdout.
func New(opts *Opts) *Dev {
	return NewWriter(colorable.NewColorableStdout(), opts)
}

// NewWriter returns a meter that draws on w.
func NewWriter(w io.Writer, opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	m := opts.Max
	if m == 0 {
		m = mcp4725.MaxValue
	}
	return &Dev{w: w, l: opts.X, max: m, palette: *p}
}

func (d *Dev) String() string {
	return "Meter"
}

// Lit returns the number of cells lit for count.
func (d *Dev) Lit(count uint16) int {
	if count >= d.max {
		return d.l
	}
	return (int(count)*d.l + int(d.max)/2) / int(d.max)
}

// Show redraws the bar for count, followed by label.
func (d *Dev) Show(count uint16, label string) error {
	lit := d.Lit(count)
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < d.l; i++ {
		c := off
		if i < lit {
			c = cellColor(i, d.l)
		}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = fmt.Fprintf(&d.buf, "\033[0m %s", label)
	_, err := d.buf.WriteTo(d.w)
	return err
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes and moves to the next line.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// cellColor fades from green at the bottom of the scale to red at the top.
func cellColor(i, l int) color.NRGBA {
	if l <= 1 {
		return color.NRGBA{0, 255, 0, 255}
	}
	r := byte(255 * i / (l - 1))
	return color.NRGBA{r, 255 - r, 0, 255}
}
