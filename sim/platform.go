// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package sim

import (
	"context"
	"sync"
	"time"

	"github.com/warthog618/dspi"
)

// PinSetting records a ConfigurePin call.
type PinSetting struct {
	Port dspi.Port
	Pin  int
	Mux  dspi.Mux
	PCR  uint32
}

// Platform is a dspi.Platform backed by simulated Peripherals.
type Platform struct {
	peripherals [dspi.NumInstances]*Peripheral

	mu      sync.Mutex // Guards the following.
	clocked [dspi.NumInstances]bool
	pins    []PinSetting
}

// NewPlatform creates a Platform with a Peripheral for each instance, each
// with the FIFO depth of the corresponding hardware module.
func NewPlatform() *Platform {
	p := &Platform{}
	for n := dspi.SPI0; n < dspi.NumInstances; n++ {
		p.peripherals[n] = New(n.FIFODepth())
	}
	return p
}

// Peripheral returns the Peripheral simulating the instance.
func (p *Platform) Peripheral(n dspi.Instance) *Peripheral {
	if !n.Valid() {
		return nil
	}
	return p.peripherals[n]
}

// Block implements dspi.Platform.
func (p *Platform) Block(n dspi.Instance) (dspi.Block, error) {
	if !n.Valid() {
		return nil, dspi.ErrBadInstance
	}
	return p.peripherals[n], nil
}

// EnableClock implements dspi.Platform.
func (p *Platform) EnableClock(n dspi.Instance) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clocked[n] = true
}

// Clocked returns true if the clock of the instance has been enabled.
func (p *Platform) Clocked(n dspi.Instance) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clocked[n]
}

// ConfigurePin implements dspi.PinConfigurer.
func (p *Platform) ConfigurePin(port dspi.Port, pin int, mux dspi.Mux, cfg dspi.PinConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pins = append(p.pins, PinSetting{Port: port, Pin: pin, Mux: mux, PCR: cfg.PCR(mux)})
}

// Pins returns the pin configurations applied so far.
func (p *Platform) Pins() []PinSetting {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PinSetting(nil), p.pins...)
}

// Attach routes the interrupt of each Peripheral to the Controller.
func (p *Platform) Attach(c *dspi.Controller) {
	for n, sp := range p.peripherals {
		n := dspi.Instance(n)
		sp.SetInterruptHandler(func() { c.HandleInterrupt(n) })
	}
}

// Run clocks all the Peripherals every period until the ctx is done.
func (p *Platform) Run(ctx context.Context, period time.Duration) {
	var wg sync.WaitGroup
	for _, sp := range p.peripherals {
		wg.Add(1)
		go func(sp *Peripheral) {
			defer wg.Done()
			sp.Run(ctx, period)
		}(sp)
	}
	wg.Wait()
}
