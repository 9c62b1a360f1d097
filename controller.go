// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi

import (
	"fmt"
	"sync"
)

// Controller holds the Master for each instance on the chip.
type Controller struct {
	platform Platform

	mu      sync.RWMutex // Guards masters.
	masters [NumInstances]*Master
}

// NewController creates a Controller using the hardware provided by the
// platform.
func NewController(p Platform) *Controller {
	return &Controller{platform: p}
}

// MasterInit configures the instance as a master.
//
// The module clock is enabled, the SPI pins are routed to the module, the
// CTAR and MCR are configured, and the RX queue and TX queue are created.
// Any existing Master for the instance is closed and replaced.
func (c *Controller) MasterInit(n Instance, cfg Config) error {
	if !n.Valid() {
		return ErrBadInstance
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.platform.EnableClock(n)
	regs, err := c.platform.Block(n)
	if err != nil {
		return fmt.Errorf("%s: %w", n, err)
	}
	configurePins(c.platform, n, cfg.Pins)

	c.mu.Lock()
	old := c.masters[n]
	c.masters[n] = nil
	c.mu.Unlock()
	// the old Master must release the module before it is reconfigured
	if old != nil {
		old.Close()
	}
	m := newMaster(n, regs, cfg)
	c.mu.Lock()
	c.masters[n] = m
	c.mu.Unlock()
	return nil
}

// Master returns the Master for the instance, or nil if the instance has
// not been initialised.
func (c *Controller) Master(n Instance) *Master {
	if !n.Valid() {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.masters[n]
}

// SendMessage sends a message on the instance.
// See Master.SendMessage.
func (c *Controller) SendMessage(n Instance, pcs PCS, words []uint16, readOnly bool) error {
	m, err := c.master(n)
	if err != nil {
		return err
	}
	return m.SendMessage(pcs, words, readOnly)
}

// IsCommunicationFinished returns true if the last transaction on the
// instance has finished.
// Uninitialised instances have nothing in flight and so are finished.
func (c *Controller) IsCommunicationFinished(n Instance) bool {
	m := c.Master(n)
	if m == nil {
		return true
	}
	return m.IsCommunicationFinished()
}

// HandleInterrupt dispatches the interrupt of the instance to its Master.
// Interrupts for uninitialised instances are ignored.
func (c *Controller) HandleInterrupt(n Instance) {
	if m := c.Master(n); m != nil {
		m.HandleInterrupt()
	}
}

// Close closes all the initialised Masters.
func (c *Controller) Close() {
	c.mu.Lock()
	mm := c.masters
	c.masters = [NumInstances]*Master{}
	c.mu.Unlock()
	for _, m := range mm {
		if m != nil {
			m.Close()
		}
	}
}

func (c *Controller) master(n Instance) (*Master, error) {
	if !n.Valid() {
		return nil, ErrBadInstance
	}
	m := c.Master(n)
	if m == nil {
		return nil, fmt.Errorf("%s: %w", n, ErrNotInitialised)
	}
	return m, nil
}
