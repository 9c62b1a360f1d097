// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package dspi

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	pageSize = 4096
	pageMask = pageSize - 1

	// SIM clock gate registers
	simSCGC3 uintptr = 0x40048030
	simSCGC5 uintptr = 0x40048038
	simSCGC6 uintptr = 0x4004803c

	// PORT pin control blocks, 0x1000 apart
	portBase uintptr = 0x40049000
)

// Mem is a register window mapped from /dev/mem.
type Mem struct {
	mem8 []byte
	mem  []uint32
	// word offset of the window base within the mapped page
	offset int
}

// OpenMem maps the register block of the instance from /dev/mem.
func OpenMem(n Instance) (*Mem, error) {
	if !n.Valid() {
		return nil, ErrBadInstance
	}
	return OpenMemAt(n.BaseAddr())
}

// OpenMemAt maps the 32 bit register window at the physical address base
// from /dev/mem.
func OpenMemAt(base uintptr) (*Mem, error) {
	file, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	page := base &^ pageMask
	mem8, err := unix.Mmap(
		int(file.Fd()),
		int64(page),
		pageSize,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	// Convert mapped byte memory to []uint32
	mem := unsafe.Slice((*uint32)(unsafe.Pointer(&mem8[0])), len(mem8)/4)
	return &Mem{mem8: mem8, mem: mem, offset: int(base&pageMask) / 4}, nil
}

// Read returns the value of the register.
func (m *Mem) Read(r Reg) uint32 {
	return m.mem[m.offset+int(r)]
}

// Write sets the value of the register.
func (m *Mem) Write(r Reg, v uint32) {
	m.mem[m.offset+int(r)] = v
}

// Close unmaps the register window.
func (m *Mem) Close() error {
	if m.mem8 == nil {
		return nil
	}
	m.mem = nil
	err := unix.Munmap(m.mem8)
	m.mem8 = nil
	return err
}

// MemPlatform is a Platform that drives the hardware through register
// windows mapped from /dev/mem.
type MemPlatform struct {
	// The mu covers read/modify/write access to the SIM and PORT registers,
	// which are shared between instances.
	mu     sync.Mutex
	blocks map[Instance]*Mem
	ports  map[Port]*Mem
	sim    *Mem
	// first error mapping a PORT block
	err  error
	open func(base uintptr) (*Mem, error)
}

// OpenMemPlatform maps the SIM block used for clock gating.
// Module and PORT blocks are mapped as they are first used.
func OpenMemPlatform() (*MemPlatform, error) {
	sim, err := OpenMemAt(simSCGC3)
	if err != nil {
		return nil, err
	}
	return &MemPlatform{
		blocks: make(map[Instance]*Mem),
		ports:  make(map[Port]*Mem),
		sim:    sim,
		open:   OpenMemAt,
	}, nil
}

// Block returns the register block of the instance.
func (p *MemPlatform) Block(n Instance) (Block, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.blocks[n]; ok {
		return m, nil
	}
	if !n.Valid() {
		return nil, ErrBadInstance
	}
	m, err := p.open(n.BaseAddr())
	if err != nil {
		return nil, err
	}
	p.blocks[n] = m
	return m, nil
}

// EnableClock ungates the module clock of the instance.
func (p *MemPlatform) EnableClock(n Instance) {
	reg, bit := simSCGC6, uint32(1)<<(12+uint(n))
	if n == SPI2 {
		reg, bit = simSCGC3, 1<<12
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setSIM(reg, bit)
}

// ConfigurePin sets the pin control register for the pin.
// The PORT clock is ungated first.
// If the PORT block cannot be mapped the pin is left unchanged and the error
// is reported by Err and Close.
func (p *MemPlatform) ConfigurePin(port Port, pin int, mux Mux, cfg PinConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setSIM(simSCGC5, 1<<(9+uint(port)))
	m, ok := p.ports[port]
	if !ok {
		var err error
		m, err = p.open(portBase + uintptr(port)*0x1000)
		if err != nil {
			if p.err == nil {
				p.err = fmt.Errorf("port %c pin %d: %w", 'A'+rune(port), pin, err)
			}
			return
		}
		p.ports[port] = m
	}
	m.Write(Reg(pin), cfg.PCR(mux))
}

// Err returns the first error encountered configuring pins, if any.
func (p *MemPlatform) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close unmaps all the register windows.
func (p *MemPlatform) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.err
	for _, m := range p.blocks {
		if e := m.Close(); e != nil && err == nil {
			err = e
		}
	}
	for _, m := range p.ports {
		if e := m.Close(); e != nil && err == nil {
			err = e
		}
	}
	if e := p.sim.Close(); e != nil && err == nil {
		err = e
	}
	p.blocks = nil
	p.ports = nil
	return err
}

// setSIM sets bits in the SIM register at the physical address.
// Assumes caller holds mu.
func (p *MemPlatform) setSIM(addr uintptr, bits uint32) {
	r := Reg((addr - simSCGC3) / 4)
	p.sim.Write(r, p.sim.Read(r)|bits)
}
