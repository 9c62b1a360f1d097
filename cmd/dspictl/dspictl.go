// SPDX-License-Identifier: MIT
//
// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/warthog618/dspi"
	"golang.org/x/exp/slog"
)

var version = "undefined"

var rootCmd = &cobra.Command{
	Use:   "dspictl",
	Short: "dspictl is a utility to drive DSPI SPI masters",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	Version: version,
}

var rootOpts = struct {
	ConfigFile string
	Verbose    bool
}{}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.ConfigFile, "config-file", "c", "", "read configuration from the file")
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.Verbose, "verbose", "v", false, "log driver events")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func logErr(cmd *cobra.Command, err error) {
	fmt.Fprintf(os.Stderr, "dspictl %s: %s\n", cmd.Name(), err)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if rootOpts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func checkInstance(v int) (dspi.Instance, error) {
	if n := dspi.Instance(v); n.Valid() {
		return n, nil
	}
	return 0, fmt.Errorf("unknown instance '%d'", v)
}

func checkPCS(v int) (dspi.PCS, error) {
	if v < 0 || v >= int(dspi.MaxPCS) {
		return 0, fmt.Errorf("unknown pcs '%d'", v)
	}
	return dspi.PCS(v), nil
}

func parseWords(args []string) ([]uint16, error) {
	ww := make([]uint16, len(args))
	for i, arg := range args {
		w, err := strconv.ParseUint(arg, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("can't parse word '%s'", arg)
		}
		ww[i] = uint16(w)
	}
	return ww, nil
}
