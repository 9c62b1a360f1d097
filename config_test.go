// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigRegisters(t *testing.T) {
	cfg := DefaultConfig()
	assert.Nil(t, cfg.Validate())
	assert.Equal(t, uint32(0x3a5d7774), cfg.ctar())
	assert.Equal(t, uint32(0x883f0001), cfg.mcr())

	cfg.ClockActiveLow = true
	cfg.SecondEdge = false
	cfg.LSBFirst = true
	cfg.BitsPerFrame = 16
	assert.Equal(t, uint32(0x7d5d7774), cfg.ctar())

	cfg.PCSActiveLow = false
	cfg.ContinuousSCK = true
	cfg.RxOverflowOverwrite = true
	assert.Equal(t, MCRMaster|MCRFreeze|MCRHalt|MCRContSCKE|MCRRxOverwrite, cfg.mcr())
}

func TestConfigValidate(t *testing.T) {
	patterns := []struct {
		name string
		mod  func(c *Config)
	}{
		{"ctar", func(c *Config) { c.CTAR = 2 }},
		{"bits low", func(c *Config) { c.BitsPerFrame = 3 }},
		{"bits high", func(c *Config) { c.BitsPerFrame = 17 }},
		{"delay", func(c *Config) { c.DT = 16 }},
		{"baud", func(c *Config) { c.BaudRate = 0 }},
		{"clock", func(c *Config) { c.ClockHz = 0 }},
		{"pcs", func(c *Config) { c.DefaultPCS = MaxPCS }},
		{"tx queue", func(c *Config) { c.TxQueueSize = 0 }},
		{"rx queue", func(c *Config) { c.RxQueueSize = 0 }},
	}
	for _, p := range patterns {
		t.Run(p.name, func(t *testing.T) {
			cfg := DefaultConfig()
			p.mod(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrBadConfig)
		})
	}
}
