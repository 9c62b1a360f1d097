// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package sim provides a host simulation of DSPI modules.
//
// A Peripheral implements dspi.Block with the FIFO, status flag and halt
// behaviour of the hardware, and a Platform provides simulated Peripherals
// for all the instances. Transfers are clocked by Step, or by Run in the
// background, and the interrupt is raised after each frame while any enabled
// status flag is set.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/warthog618/dspi"
)

// Responder returns the word shifted in by the device while the frame is
// shifted out.
type Responder func(f dspi.Frame) uint16

// Echo is a Responder that loops the transmitted data back.
func Echo(f dspi.Frame) uint16 {
	return f.Data
}

// maximum number of back to back interrupts raised for one frame
const maxIRQLoop = 16

// Peripheral simulates a single DSPI module.
type Peripheral struct {
	depth int

	mu        sync.Mutex // Guards the following.
	mcr       uint32
	tcr       uint32
	ctar      [2]uint32
	rser      uint32
	flags     dspi.Status // latched flags
	stalled   bool        // stopped by an EOQ frame until EOQF is cleared
	txFIFO    []uint32
	rxFIFO    []uint16
	responder Responder
	irq       func()
	sent      []uint32
	overruns  int
}

// New creates a Peripheral with FIFOs of the given depth.
// The Peripheral is halted and disabled as the hardware is out of reset.
func New(depth int) *Peripheral {
	return &Peripheral{
		depth:     depth,
		mcr:       dspi.MCRDisable | dspi.MCRHalt,
		responder: Echo,
	}
}

// SetResponder sets the function providing the words shifted in.
func (p *Peripheral) SetResponder(r Responder) {
	p.mu.Lock()
	p.responder = r
	p.mu.Unlock()
}

// SetInterruptHandler sets the function called when the interrupt is raised.
// The handler is called without any Peripheral locks held.
func (p *Peripheral) SetInterruptHandler(h func()) {
	p.mu.Lock()
	p.irq = h
	p.mu.Unlock()
}

// Read implements dspi.Block.
func (p *Peripheral) Read(r dspi.Reg) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch r {
	case dspi.MCR:
		return p.mcr
	case dspi.TCR:
		return p.tcr
	case dspi.CTAR0, dspi.CTAR1:
		return p.ctar[r-dspi.CTAR0]
	case dspi.SR:
		return uint32(p.status())
	case dspi.RSER:
		return p.rser
	case dspi.POPR:
		if len(p.rxFIFO) == 0 {
			return 0
		}
		v := p.rxFIFO[0]
		p.rxFIFO = p.rxFIFO[1:]
		return uint32(v)
	}
	return 0
}

// Write implements dspi.Block.
func (p *Peripheral) Write(r dspi.Reg, v uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch r {
	case dspi.MCR:
		if v&dspi.MCRClrTxFIFO != 0 {
			p.txFIFO = nil
		}
		if v&dspi.MCRClrRxFIFO != 0 {
			p.rxFIFO = nil
		}
		p.mcr = v &^ (dspi.MCRClrTxFIFO | dspi.MCRClrRxFIFO)
	case dspi.TCR:
		p.tcr = v
	case dspi.CTAR0, dspi.CTAR1:
		p.ctar[r-dspi.CTAR0] = v
	case dspi.SR:
		clr := dspi.Status(v) & dspi.StatusFlags
		if clr&dspi.StatusEOQF != 0 {
			p.stalled = false
		}
		p.flags &^= clr
	case dspi.RSER:
		p.rser = v
	case dspi.PUSHR:
		if len(p.txFIFO) >= p.depth {
			p.overruns++
			return
		}
		p.txFIFO = append(p.txFIFO, v)
	}
}

// status returns the SR value.
// TFFF and RFDF track the FIFO levels rather than being latched.
// Assumes caller holds mu.
func (p *Peripheral) status() dspi.Status {
	s := p.flags
	if p.running() {
		s |= dspi.StatusTXRXS
	}
	if len(p.txFIFO) < p.depth {
		s |= dspi.StatusTFFF
	}
	if len(p.rxFIFO) > 0 {
		s |= dspi.StatusRFDF
	}
	return s.WithCounts(len(p.txFIFO), len(p.rxFIFO))
}

// running returns true if the module will shift frames.
// Assumes caller holds mu.
func (p *Peripheral) running() bool {
	return p.mcr&(dspi.MCRHalt|dspi.MCRDisable) == 0 && !p.stalled
}

// pending returns true if an enabled interrupt condition is set.
// Assumes caller holds mu.
func (p *Peripheral) pending() bool {
	return uint32(p.status()&dspi.StatusFlags)&p.rser != 0
}

// Step shifts the frame at the head of the TX FIFO, if the module is running,
// and raises the interrupt while it is pending.
// Returns false if no frame was shifted.
func (p *Peripheral) Step() bool {
	p.mu.Lock()
	if !p.running() || len(p.txFIFO) == 0 {
		p.mu.Unlock()
		return false
	}
	v := p.txFIFO[0]
	p.txFIFO = p.txFIFO[1:]
	p.sent = append(p.sent, v)
	f := dspi.DecodeFrame(v)
	rx := p.responder(f)
	if len(p.rxFIFO) < p.depth {
		p.rxFIFO = append(p.rxFIFO, rx)
	} else {
		p.flags |= dspi.StatusRFOF
		if p.mcr&dspi.MCRRxOverwrite != 0 {
			p.rxFIFO[len(p.rxFIFO)-1] = rx
		}
	}
	p.flags |= dspi.StatusTCF
	if f.EOQ {
		p.flags |= dspi.StatusEOQF
		p.stalled = true
	}
	p.mu.Unlock()
	p.raise()
	return true
}

// raise calls the interrupt handler while an enabled interrupt condition is
// set.
func (p *Peripheral) raise() {
	for i := 0; i < maxIRQLoop; i++ {
		p.mu.Lock()
		irq := p.irq
		pending := p.pending()
		p.mu.Unlock()
		if irq == nil || !pending {
			return
		}
		irq()
	}
}

// Drain steps the Peripheral until no frame can be shifted, and returns the
// number of frames shifted.
func (p *Peripheral) Drain() int {
	n := 0
	for p.Step() {
		n++
	}
	return n
}

// Run steps the Peripheral every period until the ctx is done.
func (p *Peripheral) Run(ctx context.Context, period time.Duration) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			for p.Step() {
			}
		}
	}
}

// Sent returns the PUSHR command words shifted out so far.
func (p *Peripheral) Sent() []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint32(nil), p.sent...)
}

// SentFrames returns the frames shifted out so far.
func (p *Peripheral) SentFrames() []dspi.Frame {
	sent := p.Sent()
	ff := make([]dspi.Frame, len(sent))
	for i, v := range sent {
		ff[i] = dspi.DecodeFrame(v)
	}
	return ff
}

// TxFIFO returns the frames waiting in the TX FIFO.
func (p *Peripheral) TxFIFO() []dspi.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	ff := make([]dspi.Frame, len(p.txFIFO))
	for i, v := range p.txFIFO {
		ff[i] = dspi.DecodeFrame(v)
	}
	return ff
}

// Overruns returns the number of PUSHR writes dropped as the TX FIFO was
// full.
func (p *Peripheral) Overruns() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overruns
}

// Halted returns true if the MCR HALT bit is set.
func (p *Peripheral) Halted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mcr&dspi.MCRHalt != 0
}

// SetFlags latches status flags, as if raised by the hardware, and raises
// the interrupt if any enabled flag is set.
func (p *Peripheral) SetFlags(s dspi.Status) {
	p.mu.Lock()
	p.flags |= s & dspi.StatusFlags
	p.mu.Unlock()
	p.raise()
}

// Inject places a word in the RX FIFO, as if shifted in by the device, and
// raises the interrupt.
func (p *Peripheral) Inject(w uint16) {
	p.mu.Lock()
	if len(p.rxFIFO) < p.depth {
		p.rxFIFO = append(p.rxFIFO, w)
	} else {
		p.flags |= dspi.StatusRFOF
	}
	p.mu.Unlock()
	p.raise()
}
