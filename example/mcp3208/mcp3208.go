// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package main

import (
	"fmt"

	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/config/pflag"
	"github.com/warthog618/dspi"
	"github.com/warthog618/dspi/mcp3w0c"
)

// This example reads all channels from an MCP3208 connected to a DSPI module
// on PCS0. The module registers are mapped from /dev/mem and the module
// interrupt is delivered by a UIO device, so this must be run as root.
// The default instance, UIO device and rates are defined in loadConfig, but
// can be altered via configuration (env, flag or config file).
func main() {
	cfg := loadConfig()
	p, err := dspi.OpenMemPlatform()
	if err != nil {
		panic(err)
	}
	defer p.Close()
	w, err := dspi.NewWatcher()
	if err != nil {
		panic(err)
	}
	defer w.Close()
	c := dspi.NewController(p)
	defer c.Close()

	n := dspi.Instance(cfg.MustGet("instance").Int())
	if err = c.Watch(w, n, cfg.MustGet("uio").String()); err != nil {
		panic(err)
	}
	mc := dspi.DefaultConfig()
	mc.BaudRate = uint32(cfg.MustGet("baud").Int())
	mc.ClockHz = uint32(cfg.MustGet("clock").Int())
	mc.Timeout = cfg.MustGet("timeout").Duration()
	if err = c.MasterInit(n, mc); err != nil {
		panic(err)
	}
	adc := mcp3w0c.NewMCP3208(c.Master(n))
	for ch := 0; ch < 8; ch++ {
		d, err := adc.Read(ch)
		if err != nil {
			panic(err)
		}
		fmt.Printf("ch%d=0x%04x (%08b)\n", ch, d, d>>4)
	}
}

func loadConfig() *config.Config {
	defaultConfig := map[string]interface{}{
		"instance": 0,
		"uio":      "/dev/uio0",
		"baud":     1000000,
		"clock":    50000000,
		"timeout":  "100ms",
	}
	def := dict.New(dict.WithMap(defaultConfig))
	cfg := config.New(
		pflag.New(pflag.WithFlags(
			[]pflag.Flag{{Short: 'c', Name: "config-file"}})),
		env.New(env.WithEnvPrefix("MCP3208_")),
		config.WithDefault(def))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "mcp3208.json", json.NewDecoder()))
	cfg = cfg.GetConfig("", config.WithMust)
	return cfg
}
