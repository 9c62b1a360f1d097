// SPDX-License-Identifier: MIT
//
// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.

package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/dspi"
)

// loadConfig layers the flags set on the command line over the environment,
// the config file and the defaults.
func loadConfig(cmd *cobra.Command) *config.Config {
	defaultConfig := map[string]interface{}{
		"instance": 0,
		"pcs":      0,
		"ctar":     0,
		"bits":     8,
		"clock":    50000000,
		"baud":     1000000,
		"dummy":    0xff,
		"tx.queue": 100,
		"rx.queue": 100,
		"timeout":  "1s",
		"period":   "100us",
		"mem":      false,
		"uio":      "/dev/uio0",
	}
	def := dict.New(dict.WithMap(defaultConfig))
	cfg := config.New(
		dict.New(dict.WithMap(flagMap(cmd))),
		env.New(env.WithEnvPrefix("DSPICTL_")),
		config.WithDefault(def))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "dspictl.json", json.NewDecoder()))
	cfg = cfg.GetConfig("", config.WithMust)
	return cfg
}

// flagMap returns the flags explicitly set on the command line, keyed by
// config key.
func flagMap(cmd *cobra.Command) map[string]interface{} {
	m := map[string]interface{}{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		m[strings.ReplaceAll(f.Name, "-", ".")] = f.Value.String()
	})
	return m
}

// masterConfig builds the driver config from the config keys.
func masterConfig(cfg *config.Config) dspi.Config {
	c := dspi.DefaultConfig()
	c.CTAR = cfg.MustGet("ctar").Int()
	c.BitsPerFrame = cfg.MustGet("bits").Int()
	c.ClockHz = uint32(cfg.MustGet("clock").Int())
	c.BaudRate = uint32(cfg.MustGet("baud").Int())
	c.DefaultPCS = dspi.PCS(cfg.MustGet("pcs").Int())
	c.DummyWord = uint16(cfg.MustGet("dummy").Int())
	c.TxQueueSize = cfg.MustGet("tx.queue").Int()
	c.RxQueueSize = cfg.MustGet("rx.queue").Int()
	c.Timeout = cfg.MustGet("timeout").Duration()
	c.Logger = newLogger()
	return c
}
