// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi

import (
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

// Config defines the configuration of a master instance.
type Config struct {
	// CTAR selects which of the two CTAR registers is configured and used
	// for transfers.
	CTAR int
	// BitsPerFrame is the frame size, from 4 to 16.
	BitsPerFrame int
	// ClockActiveLow sets the idle state of SCK high (CPOL).
	ClockActiveLow bool
	// SecondEdge captures data on the second SCK edge (CPHA).
	SecondEdge bool
	// LSBFirst shifts the least significant bit first.
	LSBFirst bool
	// PCSActiveLow sets the inactive state of the chip selects high.
	PCSActiveLow bool
	// CSSCK is the PCS to SCK delay scaler.
	CSSCK uint8
	// ASC is the after SCK delay scaler.
	ASC uint8
	// DT is the delay after transfer scaler.
	DT uint8
	// BaudRate is the requested SCK rate in Hz.
	// The closest achievable rate is used.
	BaudRate uint32
	// ClockHz is the module clock rate in Hz.
	ClockHz uint32

	RxOverflowOverwrite bool
	DisableTxFIFO       bool
	DisableRxFIFO       bool
	ContinuousSCK       bool

	// DefaultPCS is the chip select used by SendFrame and SendByte.
	DefaultPCS PCS
	// TxQueueSize is the capacity, in frames, of the TX queue.
	TxQueueSize int
	// RxQueueSize is the capacity, in words, of the RX queue.
	RxQueueSize int
	// DummyWord is transmitted in place of data for read-only messages.
	DummyWord uint16
	// Timeout bounds the blocking transfers of Tx and Transfer.
	Timeout time.Duration
	// Pins is the electrical configuration of the SPI pins.
	Pins PinConfig
	// Logger, if not nil, receives driver events.
	Logger *slog.Logger
}

// DefaultConfig returns the default master configuration.
//
// 8 bit frames, MSB first, SCK active high sampling on the second edge,
// chip selects active low, 1MHz from a 50MHz module clock.
func DefaultConfig() Config {
	return Config{
		BitsPerFrame: 8,
		SecondEdge:   true,
		PCSActiveLow: true,
		CSSCK:        7,
		ASC:          7,
		DT:           7,
		BaudRate:     1000000,
		ClockHz:      50000000,
		TxQueueSize:  100,
		RxQueueSize:  100,
		DummyWord:    0xff,
		Timeout:      time.Second,
		Pins:         DefaultPinConfig(),
	}
}

// Validate checks the fields of the Config are in range.
func (c Config) Validate() error {
	switch {
	case c.CTAR < 0 || c.CTAR > 1:
		return fmt.Errorf("%w: ctar %d", ErrBadConfig, c.CTAR)
	case c.BitsPerFrame < 4 || c.BitsPerFrame > 16:
		return fmt.Errorf("%w: bits per frame %d", ErrBadConfig, c.BitsPerFrame)
	case c.CSSCK > 15 || c.ASC > 15 || c.DT > 15:
		return fmt.Errorf("%w: delay scaler out of range", ErrBadConfig)
	case c.BaudRate == 0 || c.ClockHz == 0:
		return fmt.Errorf("%w: zero clock rate", ErrBadConfig)
	case c.DefaultPCS >= MaxPCS:
		return fmt.Errorf("%w: pcs %d", ErrBadConfig, c.DefaultPCS)
	case c.TxQueueSize < 1 || c.RxQueueSize < 1:
		return fmt.Errorf("%w: queue size", ErrBadConfig)
	}
	return nil
}

// ctar returns the CTAR register value for the Config.
func (c Config) ctar() uint32 {
	v := uint32(c.BitsPerFrame-1)<<ctarFMSZShift |
		1<<ctarPCSSCKShft |
		1<<ctarPASCShift |
		3<<ctarPDTShift |
		uint32(c.CSSCK)<<ctarCSSCKShift |
		uint32(c.ASC)<<ctarASCShift |
		uint32(c.DT)<<ctarDTShift
	if c.ClockActiveLow {
		v |= 1 << ctarCPOL
	}
	if c.SecondEdge {
		v |= 1 << ctarCPHA
	}
	if c.LSBFirst {
		v |= 1 << ctarLSBFE
	}
	return v | SolveBaud(c.ClockHz, c.BaudRate).CTAR()
}

// mcr returns the MCR register value for the Config, with the module halted.
func (c Config) mcr() uint32 {
	v := MCRMaster | MCRFreeze | MCRHalt
	if c.PCSActiveLow {
		v |= MCRPCSIS(0x3f)
	}
	if c.RxOverflowOverwrite {
		v |= MCRRxOverwrite
	}
	if c.DisableTxFIFO {
		v |= MCRDisTxFIFO
	}
	if c.DisableRxFIFO {
		v |= MCRDisRxFIFO
	}
	if c.ContinuousSCK {
		v |= MCRContSCKE
	}
	return v
}
