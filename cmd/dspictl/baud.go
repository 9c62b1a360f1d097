// SPDX-License-Identifier: MIT
//
// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/warthog618/dspi"
)

func init() {
	baudCmd.Flags().Uint32P("clock", "k", 50000000, "module clock rate in Hz")
	baudCmd.Flags().BoolVarP(&baudOpts.Short, "short", "s", false, "only display the CTAR bits")
	rootCmd.AddCommand(baudCmd)
}

var (
	baudCmd = &cobra.Command{
		Use:     "baud <rate>...",
		Short:   "Find the CTAR settings closest to a baud rate",
		Example: "  dspictl baud 1000000 -k 48000000",
		Args:    cobra.MinimumNArgs(1),
		RunE:    baud,
	}
	baudOpts = struct {
		Short bool
	}{}
)

func baud(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	clock := uint32(cfg.MustGet("clock").Int())
	for _, arg := range args {
		r, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return fmt.Errorf("can't parse rate '%s'", arg)
		}
		b := dspi.SolveBaud(clock, uint32(r))
		if baudOpts.Short {
			fmt.Printf("0x%08x\n", b.CTAR())
			continue
		}
		fmt.Printf("%d: dbr=%t pbr=%d br=%d rate=%d error=%d ctar=0x%08x\n",
			r, b.DBR, b.PBR, b.BR, b.Rate, int64(b.Rate)-int64(r), b.CTAR())
	}
	return nil
}
