// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//
// Package dspi provides an interrupt driven master driver for the Freescale
// DSPI module, as found on Kinetis K6x and Vybrid parts.
//
// Messages are split into frames and queued in a bounded ring.
// The ring is drained into the hardware TX FIFO one burst at a time - the
// first burst by SendMessage itself and subsequent bursts by the interrupt
// handler on each end of queue (EOQ) interrupt. Received words are drained
// from the RX FIFO into a second ring by the same handler.
//
// The driver does not touch hardware directly. Register access, clock gating
// and pin routing are provided by a Platform, and the platform's interrupt
// delivery must call HandleInterrupt for each instance. On Linux the
// register block may be mapped from /dev/mem by OpenMem and the interrupt
// delivered via UIO by a Watcher. The sim package provides a host simulation
// of the module for testing.
//
// Example of use:
//
// 	c := dspi.NewController(platform)
// 	if err := c.MasterInit(dspi.SPI0, dspi.DefaultConfig()); err != nil {
// 		...
// 	}
// 	m := c.Master(dspi.SPI0)
// 	err := m.SendMessage(dspi.PCS2, []uint16{0xab, 0xcd, 0xef}, false)
// 	...
// 	err = m.Wait(ctx)
//
package dspi

import "fmt"

// Instance identifies one of the DSPI modules on the chip.
type Instance int

// DSPI modules.
const (
	SPI0 Instance = iota
	SPI1
	SPI2
	NumInstances
)

var (
	// TX FIFO depth of each module.
	fifoDepths = [NumInstances]int{4, 1, 1}

	// physical base address of the register block of each module.
	baseAddrs = [NumInstances]uintptr{0x4002c000, 0x4002d000, 0x400ac000}
)

// Valid returns true if the instance exists.
func (n Instance) Valid() bool {
	return n >= SPI0 && n < NumInstances
}

// FIFODepth returns the depth of the TX FIFO of the instance, which is the
// maximum number of frames in a burst.
func (n Instance) FIFODepth() int {
	if !n.Valid() {
		return 0
	}
	return fifoDepths[n]
}

// BaseAddr returns the physical address of the register block of the
// instance.
func (n Instance) BaseAddr() uintptr {
	if !n.Valid() {
		return 0
	}
	return baseAddrs[n]
}

func (n Instance) String() string {
	return fmt.Sprintf("spi%d", int(n))
}
