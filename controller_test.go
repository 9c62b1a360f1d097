// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/dspi"
	"github.com/warthog618/dspi/sim"
)

func TestMasterInit(t *testing.T) {
	p := sim.NewPlatform()
	c := dspi.NewController(p)
	defer c.Close()

	assert.ErrorIs(t, c.MasterInit(dspi.NumInstances, dspi.DefaultConfig()), dspi.ErrBadInstance)
	assert.ErrorIs(t, c.MasterInit(dspi.Instance(-1), dspi.DefaultConfig()), dspi.ErrBadInstance)
	cfg := dspi.DefaultConfig()
	cfg.BitsPerFrame = 20
	assert.ErrorIs(t, c.MasterInit(dspi.SPI0, cfg), dspi.ErrBadConfig)
	assert.False(t, p.Clocked(dspi.SPI0))

	require.Nil(t, c.MasterInit(dspi.SPI0, dspi.DefaultConfig()))
	assert.True(t, p.Clocked(dspi.SPI0))
	assert.False(t, p.Clocked(dspi.SPI1))

	sp := p.Peripheral(dspi.SPI0)
	assert.Equal(t, uint32(0x3a5d7774), sp.Read(dspi.CTAR0))
	assert.Equal(t, uint32(0x883f0001), sp.Read(dspi.MCR))
	assert.Equal(t, dspi.RSERRFDF|dspi.RSEREOQF, sp.Read(dspi.RSER))
	assert.True(t, sp.Halted())

	expected := []sim.PinSetting{
		{Port: dspi.PortD, Pin: 0, Mux: dspi.MuxAlt2, PCR: 0x200},
		{Port: dspi.PortD, Pin: 1, Mux: dspi.MuxAlt2, PCR: 0x200},
		{Port: dspi.PortD, Pin: 2, Mux: dspi.MuxAlt2, PCR: 0x200},
		{Port: dspi.PortD, Pin: 3, Mux: dspi.MuxAlt2, PCR: 0x200},
	}
	assert.Equal(t, expected, p.Pins())
}

func TestMasterReinit(t *testing.T) {
	p := sim.NewPlatform()
	c := dspi.NewController(p)
	p.Attach(c)
	defer c.Close()

	require.Nil(t, c.MasterInit(dspi.SPI0, dspi.DefaultConfig()))
	old := c.Master(dspi.SPI0)
	require.Nil(t, old.SendMessage(dspi.PCS0, []uint16{1, 2, 3, 4, 5, 6}, false))

	cfg := dspi.DefaultConfig()
	cfg.CTAR = 1
	require.Nil(t, c.MasterInit(dspi.SPI0, cfg))
	m := c.Master(dspi.SPI0)
	assert.NotSame(t, old, m)
	assert.True(t, old.IsCommunicationFinished())

	// the replacement owns the module
	sp := p.Peripheral(dspi.SPI0)
	require.Nil(t, c.SendMessage(dspi.SPI0, dspi.PCS1, []uint16{0x10}, false))
	sp.Drain()
	assert.True(t, c.IsCommunicationFinished(dspi.SPI0))
	w, ok := m.ReceiveWord()
	assert.True(t, ok)
	assert.Equal(t, uint16(0x10), w)
}

func TestControllerUninitialised(t *testing.T) {
	p := sim.NewPlatform()
	c := dspi.NewController(p)
	p.Attach(c)

	assert.Nil(t, c.Master(dspi.SPI1))
	assert.Nil(t, c.Master(dspi.NumInstances))
	assert.True(t, c.IsCommunicationFinished(dspi.SPI1))
	assert.ErrorIs(t, c.SendMessage(dspi.SPI1, dspi.PCS0, []uint16{1}, false), dspi.ErrNotInitialised)
	assert.ErrorIs(t, c.SendMessage(dspi.NumInstances, dspi.PCS0, []uint16{1}, false), dspi.ErrBadInstance)

	// stray interrupts are ignored
	p.Peripheral(dspi.SPI1).Inject(1)
	c.HandleInterrupt(dspi.SPI1)
}

func TestControllerClose(t *testing.T) {
	p := sim.NewPlatform()
	c := dspi.NewController(p)
	require.Nil(t, c.MasterInit(dspi.SPI2, dspi.DefaultConfig()))
	c.Close()
	assert.Nil(t, c.Master(dspi.SPI2))
	sp := p.Peripheral(dspi.SPI2)
	assert.NotZero(t, sp.Read(dspi.MCR)&dspi.MCRDisable)
	assert.Zero(t, sp.Read(dspi.RSER))
}

func TestPinRoutes(t *testing.T) {
	rr := dspi.PinRoutes(dspi.SPI1)
	assert.Equal(t, []dspi.PinRoute{
		{Port: dspi.PortE, Pin: 4, Mux: dspi.MuxAlt2},
		{Port: dspi.PortE, Pin: 2, Mux: dspi.MuxAlt2},
		{Port: dspi.PortE, Pin: 1, Mux: dspi.MuxAlt2},
		{Port: dspi.PortE, Pin: 3, Mux: dspi.MuxAlt2},
	}, rr)
	assert.Nil(t, dspi.PinRoutes(dspi.NumInstances))
}

func TestPinConfigPCR(t *testing.T) {
	patterns := []struct {
		name string
		cfg  dspi.PinConfig
		mux  dspi.Mux
		pcr  uint32
	}{
		{"default", dspi.DefaultPinConfig(), dspi.MuxAlt2, 0x0200},
		{"gpio", dspi.PinConfig{}, dspi.MuxGPIO, 0x0100},
		{"pull up", dspi.PinConfig{Pull: dspi.PullUp}, dspi.MuxAlt2, 0x0203},
		{"pull down", dspi.PinConfig{Pull: dspi.PullDown}, dspi.MuxAlt2, 0x0202},
		{"slew", dspi.PinConfig{SlowSlew: true}, dspi.MuxAlt2, 0x0204},
		{"filter", dspi.PinConfig{PassiveFilter: true}, dspi.MuxAlt2, 0x0210},
		{"open drain", dspi.PinConfig{OpenDrain: true}, dspi.MuxAlt2, 0x0220},
		{"drive", dspi.PinConfig{HighDrive: true}, dspi.MuxAlt2, 0x0240},
		{"lock", dspi.PinConfig{Lock: true}, dspi.MuxAlt7, 0x8700},
		{"irqc", dspi.PinConfig{IRQC: 0xb}, dspi.MuxAlt2, 0xb0200},
	}
	for _, p := range patterns {
		t.Run(p.name, func(t *testing.T) {
			assert.Equal(t, p.pcr, p.cfg.PCR(p.mux))
		})
	}
}

func TestInstance(t *testing.T) {
	assert.Equal(t, 4, dspi.SPI0.FIFODepth())
	assert.Equal(t, 1, dspi.SPI1.FIFODepth())
	assert.Equal(t, 1, dspi.SPI2.FIFODepth())
	assert.Zero(t, dspi.NumInstances.FIFODepth())
	assert.Equal(t, uintptr(0x4002c000), dspi.SPI0.BaseAddr())
	assert.Equal(t, uintptr(0x400ac000), dspi.SPI2.BaseAddr())
	assert.Zero(t, dspi.NumInstances.BaseAddr())
	assert.Equal(t, "spi1", dspi.SPI1.String())
	assert.True(t, dspi.SPI2.Valid())
	assert.False(t, dspi.NumInstances.Valid())
}
