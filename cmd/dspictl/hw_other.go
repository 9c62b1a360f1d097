// SPDX-License-Identifier: MIT
//
// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.

//go:build !linux

package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/warthog618/config"
	"github.com/warthog618/dspi"
)

func openHardware(cmd *cobra.Command, cfg *config.Config, n dspi.Instance) (*dspi.Controller, func(), error) {
	return nil, nil, errors.New("hardware access is only supported on Linux")
}
