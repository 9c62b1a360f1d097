// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package mcp3w0c provides device drivers for MCP3004/3008/3204/3208 SPI ADCs.
package mcp3w0c

import (
	"errors"
	"sync"

	"tinygo.org/x/drivers"
)

// ErrBadChannel indicates the channel is not one of the eight supported by
// the device family.
var ErrBadChannel = errors.New("invalid channel")

// MCP3w0c reads ADC values from a connected Microchip MCP3xxx family device.
// Supported variants are MCP3004/3008/3204/3208.
// The w indicates the width of the device (0 => 10, 2 => 12)
// and the c the number of channels.
//
// Each conversion is a single 24 bit transfer of 8 bit frames, with the
// command positioned so the result is right aligned in the last two frames.
type MCP3w0c struct {
	mu    sync.Mutex
	bus   drivers.SPI
	width uint
}

// New creates a MCP3w0c on the bus.
func New(bus drivers.SPI, width uint) *MCP3w0c {
	return &MCP3w0c{bus: bus, width: width}
}

// NewMCP3008 creates a MCP3008.
func NewMCP3008(bus drivers.SPI) *MCP3w0c {
	return New(bus, 10)
}

// NewMCP3208 creates a MCP3208.
func NewMCP3208(bus drivers.SPI) *MCP3w0c {
	return New(bus, 12)
}

// Read returns the value of a single channel read from the ADC.
func (adc *MCP3w0c) Read(ch int) (uint16, error) {
	return adc.read(ch, true)
}

// ReadDifferential returns the value of a differential pair read from the ADC.
func (adc *MCP3w0c) ReadDifferential(ch int) (uint16, error) {
	return adc.read(ch, false)
}

func (adc *MCP3w0c) read(ch int, sgl bool) (uint16, error) {
	if ch < 0 || ch > 7 {
		return 0, ErrBadChannel
	}
	cmd := uint32(0x10 | ch)
	if sgl {
		cmd |= 0x08
	}
	// start, SGL/DIFFZ, D2-D0, then the sample and null bits
	cmd <<= adc.width + 2
	w := []byte{byte(cmd >> 16), byte(cmd >> 8), byte(cmd)}
	r := make([]byte, 3)
	adc.mu.Lock()
	err := adc.bus.Tx(w, r)
	adc.mu.Unlock()
	if err != nil {
		return 0, err
	}
	d := uint32(r[0])<<16 | uint32(r[1])<<8 | uint32(r[2])
	return uint16(d & (1<<adc.width - 1)), nil
}
