// SPDX-License-Identifier: MIT
//
// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warthog618/dspi"
)

func init() {
	encodeCmd.Flags().IntP("instance", "i", 0, "DSPI instance, which sets the burst size")
	encodeCmd.Flags().IntP("pcs", "p", 0, "chip select")
	encodeCmd.Flags().IntP("ctar", "t", 0, "CTAR used for the transfer")
	encodeCmd.Flags().BoolVarP(&encodeOpts.ReadOnly, "read-only", "r", false, "send dummy words to read the device")
	encodeCmd.SetHelpTemplate(encodeCmd.HelpTemplate() + extendedEncodeHelp)
	rootCmd.AddCommand(encodeCmd)
}

var extendedEncodeHelp = `
Words:
  Words may be decimal, or hex with a 0x prefix, and are at most 16 bits.

EOQ is set on the last frame of each TX FIFO sized burst.
`

var (
	encodeCmd = &cobra.Command{
		Use:     "encode <word>...",
		Short:   "Display the PUSHR commands for a message",
		Example: "  dspictl encode -i 0 -p 2 0xab 0xcd 0xef",
		Args:    cobra.MinimumNArgs(1),
		RunE:    encode,
	}
	encodeOpts = struct {
		ReadOnly bool
	}{}
)

func encode(cmd *cobra.Command, args []string) error {
	ww, err := parseWords(args)
	if err != nil {
		return err
	}
	cfg := loadConfig(cmd)
	n, err := checkInstance(cfg.MustGet("instance").Int())
	if err != nil {
		return err
	}
	pcs, err := checkPCS(cfg.MustGet("pcs").Int())
	if err != nil {
		return err
	}
	ctas := uint8(cfg.MustGet("ctar").Int())
	ff := dspi.EncodeMessage(pcs, ww, n.FIFODepth(), encodeOpts.ReadOnly, uint16(cfg.MustGet("dummy").Int()))
	for i, f := range ff {
		f.CTAS = ctas
		fmt.Printf("%3d: 0x%08x%s\n", i, f.Encode(), frameFlags(f))
	}
	return nil
}

func frameFlags(f dspi.Frame) string {
	s := ""
	if f.Cont {
		s += " cont"
	}
	if f.EOQ {
		s += " eoq"
	}
	return s
}
