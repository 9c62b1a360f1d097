// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package dspi_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/dspi"
	"github.com/warthog618/dspi/sim"
	"golang.org/x/sys/unix"
)

func waitInterrupt(ch chan dspi.Instance, timeout time.Duration) (dspi.Instance, error) {
	select {
	case v := <-ch:
		return v, nil
	case <-time.After(timeout):
		return 0, errors.New("timeout")
	}
}

// mkuio creates a FIFO standing in for a UIO device.
// Each interrupt re-enable written by the Watcher is read back as the next
// interrupt, so a registered FIFO interrupts continuously.
func mkuio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.Nil(t, unix.Mkfifo(path, 0600))
	return path
}

func TestWatcherRegister(t *testing.T) {
	w, err := dspi.NewWatcher()
	require.Nil(t, err)
	defer w.Close()

	ich := make(chan dspi.Instance, 1)
	handler := func(n dspi.Instance) {
		select {
		case ich <- n:
		default:
		}
	}
	path := mkuio(t, "uio1")
	require.Nil(t, w.Register(dspi.SPI1, path, handler))
	v, err := waitInterrupt(ich, time.Second)
	assert.Nil(t, err)
	assert.Equal(t, dspi.SPI1, v)

	err = w.Register(dspi.SPI1, mkuio(t, "uio1b"), handler)
	assert.ErrorIs(t, err, dspi.ErrAlreadyRegistered)

	w.Unregister(dspi.SPI1)
	// allow any in flight interrupt to drain
	time.Sleep(10 * time.Millisecond)
	select {
	case <-ich:
	default:
	}
	_, err = waitInterrupt(ich, 20*time.Millisecond)
	assert.NotNil(t, err, "spurious interrupt")

	// can register again after unregister
	require.Nil(t, w.Register(dspi.SPI1, path, handler))
	_, err = waitInterrupt(ich, time.Second)
	assert.Nil(t, err)
}

func TestWatcherRegisterMissing(t *testing.T) {
	w, err := dspi.NewWatcher()
	require.Nil(t, err)
	defer w.Close()
	err = w.Register(dspi.SPI0, filepath.Join(t.TempDir(), "nouio"), func(dspi.Instance) {})
	assert.NotNil(t, err)
	// failed registration leaves the instance free
	err = w.Register(dspi.SPI0, mkuio(t, "uio0"), func(dspi.Instance) {})
	assert.Nil(t, err)
	w.Unregister(dspi.SPI2)
}

func TestControllerWatch(t *testing.T) {
	p := sim.NewPlatform()
	c := dspi.NewController(p)
	require.Nil(t, c.MasterInit(dspi.SPI0, dspi.DefaultConfig()))
	defer c.Close()
	w, err := dspi.NewWatcher()
	require.Nil(t, err)
	defer w.Close()
	require.Nil(t, c.Watch(w, dspi.SPI0, mkuio(t, "uio0")))

	// the sim interrupt is not attached so the word is only drained by the
	// Watcher
	p.Peripheral(dspi.SPI0).Inject(0x77)
	m := c.Master(dspi.SPI0)
	assert.Eventually(t, func() bool { return m.Received() == 1 }, time.Second, time.Millisecond)
	v, ok := m.ReceiveWord()
	assert.True(t, ok)
	assert.Equal(t, uint16(0x77), v)
}
