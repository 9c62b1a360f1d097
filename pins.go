// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi

// Port identifies a pin port.
type Port int

// Pin ports.
const (
	PortA Port = iota
	PortB
	PortC
	PortD
	PortE
)

// Mux selects the function of a pin.
type Mux uint8

// Pin mux selections.
const (
	MuxDisabled Mux = iota
	MuxGPIO
	MuxAlt2
	MuxAlt3
	MuxAlt4
	MuxAlt5
	MuxAlt6
	MuxAlt7
)

// Pull defines the pull up/down state of a pin.
type Pull int

// Pull Up / Down / Off
const (
	PullNone Pull = iota
	PullDown
	PullUp
)

// PinConfig contains the electrical configuration of a pin.
type PinConfig struct {
	Pull          Pull
	SlowSlew      bool
	PassiveFilter bool
	OpenDrain     bool
	HighDrive     bool
	Lock          bool
	// IRQC is the pin interrupt/DMA configuration field.
	IRQC uint8
}

// DefaultPinConfig returns the pin configuration used for the SPI lines.
// Fast slew, low drive, push-pull, no pull, unlocked, no interrupts.
func DefaultPinConfig() PinConfig {
	return PinConfig{}
}

// PCR bits.
const (
	pcrPS        uint32 = 1 << 0
	pcrPE        uint32 = 1 << 1
	pcrSRE       uint32 = 1 << 2
	pcrPFE       uint32 = 1 << 4
	pcrODE       uint32 = 1 << 5
	pcrDSE       uint32 = 1 << 6
	pcrMuxShift         = 8
	pcrMuxMask   uint32 = 0x7 << pcrMuxShift
	pcrLK        uint32 = 1 << 15
	pcrIRQCShift        = 16
	pcrIRQCMask  uint32 = 0xf << pcrIRQCShift
)

// PCR returns the pin control register value for the configuration with the
// given mux selection.
func (c PinConfig) PCR(mux Mux) uint32 {
	v := uint32(mux) << pcrMuxShift & pcrMuxMask
	v |= uint32(c.IRQC) << pcrIRQCShift & pcrIRQCMask
	switch c.Pull {
	case PullUp:
		v |= pcrPE | pcrPS
	case PullDown:
		v |= pcrPE
	}
	if c.SlowSlew {
		v |= pcrSRE
	}
	if c.PassiveFilter {
		v |= pcrPFE
	}
	if c.OpenDrain {
		v |= pcrODE
	}
	if c.HighDrive {
		v |= pcrDSE
	}
	if c.Lock {
		v |= pcrLK
	}
	return v
}

// PinConfigurer routes pins to peripherals.
type PinConfigurer interface {
	ConfigurePin(port Port, pin int, mux Mux, cfg PinConfig)
}

// PinRoute is the assignment of a pin to one of the SPI signals.
type PinRoute struct {
	Port Port
	Pin  int
	Mux  Mux
}

// SPI signal pins - PCS0, SCK, SOUT, SIN.
var defaultRoutes = [NumInstances][4]PinRoute{
	SPI0: {{PortD, 0, MuxAlt2}, {PortD, 1, MuxAlt2}, {PortD, 2, MuxAlt2}, {PortD, 3, MuxAlt2}},
	SPI1: {{PortE, 4, MuxAlt2}, {PortE, 2, MuxAlt2}, {PortE, 1, MuxAlt2}, {PortE, 3, MuxAlt2}},
	SPI2: {{PortB, 20, MuxAlt2}, {PortB, 21, MuxAlt2}, {PortB, 22, MuxAlt2}, {PortB, 23, MuxAlt2}},
}

// PinRoutes returns the default pin assignments for the instance, in the
// order PCS0, SCK, SOUT, SIN.
func PinRoutes(n Instance) []PinRoute {
	if !n.Valid() {
		return nil
	}
	rr := defaultRoutes[n]
	return rr[:]
}

func configurePins(pc PinConfigurer, n Instance, cfg PinConfig) {
	for _, r := range PinRoutes(n) {
		pc.ConfigurePin(r.Port, r.Pin, r.Mux, cfg)
	}
}
