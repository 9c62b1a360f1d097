// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi

import (
	"context"
	"fmt"

	"tinygo.org/x/drivers"
)

var _ drivers.SPI = (*Master)(nil)

// Tx performs a blocking full duplex transfer to the default chip select.
//
// max(len(w), len(r)) frames are sent, with zero padding if w is shorter,
// and the received words are returned in r. If w is empty the frames are
// sent as a read-only message.
// The transfer is aborted if it does not complete within the Config Timeout.
//
// Words left unread in the RX queue by earlier messages are discarded when
// the transfer starts, so callers mixing Tx with SendMessage must collect
// those with ReceiveWord first.
//
// Tx is the degraded blocking path over the queued transfer, for drivers
// written against the tinygo drivers.SPI interface.
func (m *Master) Tx(w, r []byte) error {
	n := len(w)
	if len(r) > n {
		n = len(r)
	}
	if n == 0 {
		return nil
	}
	if n > m.rx.Cap() {
		return ErrCapacity
	}
	words := make([]uint16, n)
	for i, b := range w {
		words[i] = uint16(b)
	}
	ff := m.frames(m.cfg.DefaultPCS, words, len(w) == 0)
	m.mu.Lock()
	err := m.send(ff, nil, true)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout)
	defer cancel()
	if err = m.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			m.Abort()
		}
		return fmt.Errorf("%s tx: %w", m.n, err)
	}
	for i := 0; i < n; i++ {
		v, ok := m.ReceiveWord()
		if !ok {
			return ErrShortRead
		}
		if i < len(r) {
			r[i] = byte(v)
		}
	}
	return nil
}

// Transfer sends a single byte and returns the byte received in exchange.
func (m *Master) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := m.Tx([]byte{b}, r[:])
	return r[0], err
}
