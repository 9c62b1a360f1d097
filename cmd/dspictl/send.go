// SPDX-License-Identifier: MIT
//
// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warthog618/config"
	"github.com/warthog618/dspi"
	"github.com/warthog618/dspi/sim"
)

func init() {
	sendCmd.Flags().IntP("instance", "i", 0, "DSPI instance")
	sendCmd.Flags().IntP("pcs", "p", 0, "chip select")
	sendCmd.Flags().Uint32P("baud", "b", 1000000, "SCK rate in Hz")
	sendCmd.Flags().Uint32P("clock", "k", 50000000, "module clock rate in Hz")
	sendCmd.Flags().IntP("bits", "f", 8, "bits per frame")
	sendCmd.Flags().DurationP("timeout", "t", 0, "abort the transfer if not complete after this time")
	sendCmd.Flags().BoolP("mem", "m", false, "drive the hardware via /dev/mem rather than the simulator")
	sendCmd.Flags().StringP("uio", "u", "", "UIO device delivering the module interrupt")
	sendCmd.Flags().BoolVarP(&sendOpts.ReadOnly, "read-only", "r", false, "send dummy words to read the device")
	sendCmd.Flags().BoolVarP(&sendOpts.Quiet, "quiet", "q", false, "don't display the received words")
	sendCmd.SetHelpTemplate(sendCmd.HelpTemplate() + extendedSendHelp)
	rootCmd.AddCommand(sendCmd)
}

var extendedSendHelp = `
By default the message is sent to a simulated module with the received words
looped back from those sent.

With --mem the module registers are mapped from /dev/mem and the interrupt is
delivered through the UIO device, so the process requires root permissions.
`

var (
	sendCmd = &cobra.Command{
		Use:     "send <word>...",
		Short:   "Send a message and display the words received",
		Example: "  dspictl send -p 2 0xab 0xcd 0xef",
		Args:    cobra.MinimumNArgs(1),
		RunE:    send,
	}
	sendOpts = struct {
		ReadOnly bool
		Quiet    bool
	}{}
)

func send(cmd *cobra.Command, args []string) error {
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
	mc := masterConfig(cfg)
	var c *dspi.Controller
	var closer func()
	if cfg.MustGet("mem").Bool() {
		c, closer, err = openHardware(cmd, cfg, n)
		if err != nil {
			return err
		}
	} else {
		c, closer = openSim(cfg)
	}
	defer closer()
	if err = c.MasterInit(n, mc); err != nil {
		return err
	}
	m := c.Master(n)
	if err = m.SendMessage(pcs, ww, sendOpts.ReadOnly); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), mc.Timeout)
	defer cancel()
	if err = m.Wait(ctx); err != nil {
		m.Abort()
		return err
	}
	if sendOpts.Quiet {
		return nil
	}
	for i := 0; ; i++ {
		w, ok := m.ReceiveWord()
		if !ok {
			break
		}
		fmt.Printf("%3d: 0x%04x\n", i, w)
	}
	if o := m.Overflows(); o != 0 {
		logErr(cmd, fmt.Errorf("%d words dropped", o))
	}
	return nil
}

// openSim returns a Controller for simulated modules that loop the words sent
// back to the receiver.
func openSim(cfg *config.Config) (*dspi.Controller, func()) {
	p := sim.NewPlatform()
	c := dspi.NewController(p)
	p.Attach(c)
	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx, cfg.MustGet("period").Duration())
	return c, func() {
		cancel()
		c.Close()
	}
}
