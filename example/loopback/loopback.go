// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/config/pflag"
	"github.com/warthog618/dspi"
	"github.com/warthog618/dspi/sim"
	"golang.org/x/exp/slog"
	"tinygo.org/x/drivers"
)

// This example exchanges a message with a simulated device on the selected
// instance, first queued via SendMessage and then as a blocking transfer
// through the drivers.SPI interface. The simulated device returns the
// complement of each word it receives.
// The instance, chip select and rates are defined in loadConfig, but can be
// altered via configuration (env, flag or config file).
func main() {
	cfg := loadConfig()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := sim.NewPlatform()
	c := dspi.NewController(p)
	p.Attach(c)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx, cfg.MustGet("period").Duration())

	n := dspi.Instance(cfg.MustGet("instance").Int())
	p.Peripheral(n).SetResponder(func(f dspi.Frame) uint16 { return ^f.Data & 0xff })
	mc := dspi.DefaultConfig()
	mc.BaudRate = uint32(cfg.MustGet("baud").Int())
	mc.DefaultPCS = dspi.PCS(cfg.MustGet("pcs").Int())
	mc.Logger = log
	if err := c.MasterInit(n, mc); err != nil {
		panic(err)
	}
	defer c.Close()
	m := c.Master(n)

	msg := []uint16{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}
	if err := m.SendMessage(mc.DefaultPCS, msg, false); err != nil {
		panic(err)
	}
	wctx, wcancel := context.WithTimeout(ctx, time.Second)
	defer wcancel()
	if err := m.Wait(wctx); err != nil {
		panic(err)
	}
	for i := range msg {
		w, _ := m.ReceiveWord()
		fmt.Printf("tx=0x%02x rx=0x%02x\n", msg[i], w)
	}

	var bus drivers.SPI = m
	r := make([]byte, 4)
	if err := bus.Tx([]byte{0xde, 0xad, 0xbe, 0xef}, r); err != nil {
		panic(err)
	}
	fmt.Printf("tx=deadbeef rx=%x\n", r)
}

func loadConfig() *config.Config {
	defaultConfig := map[string]interface{}{
		"instance": 0,
		"pcs":      0,
		"baud":     1000000,
		"period":   "100us",
	}
	def := dict.New(dict.WithMap(defaultConfig))
	cfg := config.New(
		pflag.New(pflag.WithFlags(
			[]pflag.Flag{{Short: 'c', Name: "config-file"}})),
		env.New(env.WithEnvPrefix("LOOPBACK_")),
		config.WithDefault(def))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "loopback.json", json.NewDecoder()))
	cfg = cfg.GetConfig("", config.WithMust)
	return cfg
}
