// SPDX-License-Identifier: MIT
//
// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.

//go:build linux

package main

import (
	"github.com/spf13/cobra"
	"github.com/warthog618/config"
	"github.com/warthog618/dspi"
)

// openHardware returns a Controller for the modules mapped from /dev/mem,
// with the interrupt of instance n delivered from the configured UIO device.
func openHardware(cmd *cobra.Command, cfg *config.Config, n dspi.Instance) (*dspi.Controller, func(), error) {
	p, err := dspi.OpenMemPlatform()
	if err != nil {
		return nil, nil, err
	}
	w, err := dspi.NewWatcher()
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	c := dspi.NewController(p)
	if err = c.Watch(w, n, cfg.MustGet("uio").String()); err != nil {
		w.Close()
		p.Close()
		return nil, nil, err
	}
	return c, func() {
		w.Close()
		c.Close()
		if err := p.Close(); err != nil {
			logErr(cmd, err)
		}
	}, nil
}
