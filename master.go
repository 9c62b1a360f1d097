// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/warthog618/dspi/ring"
	"golang.org/x/exp/slog"
)

// Platform provides the hardware collaborators of the driver.
type Platform interface {
	PinConfigurer
	// Block returns the register block of the instance.
	Block(n Instance) (Block, error)
	// EnableClock ungates the module clock of the instance.
	EnableClock(n Instance)
}

// Master drives a single DSPI module in master mode.
type Master struct {
	// Immutable fields
	n     Instance
	regs  Block
	depth int
	cfg   Config
	log   *slog.Logger

	// mu is held by both the foreground operations and HandleInterrupt, so
	// it serves the role of masking the module interrupt.
	// It guards the following fields and the register block.
	mu       sync.Mutex
	tx       *ring.Ring[Frame]
	rx       *ring.Ring[uint16]
	phase    Phase
	txn      *transaction
	callback func()

	overflows atomic.Uint64
}

// transaction tracks the completion of one send.
type transaction struct {
	done chan struct{}
	err  error
}

func newTransaction() *transaction {
	return &transaction{done: make(chan struct{})}
}

// newMaster configures the module for master mode and returns a Master to
// drive it.
// The module is left halted with the RX drain and EOQ interrupts enabled.
func newMaster(n Instance, regs Block, cfg Config) *Master {
	m := &Master{
		n:     n,
		regs:  regs,
		depth: n.FIFODepth(),
		cfg:   cfg,
		log:   cfg.Logger,
		tx:    ring.New(make([]Frame, cfg.TxQueueSize)),
		rx:    ring.New(make([]uint16, cfg.RxQueueSize)),
		txn:   newTransaction(),
	}
	// no transaction yet, so nothing to wait for
	close(m.txn.done)

	if Status(regs.Read(SR)).Has(StatusTXRXS) {
		regs.Write(MCR, regs.Read(MCR)|MCRHalt)
	}
	regs.Write(CTAR(cfg.CTAR), cfg.ctar())
	regs.Write(MCR, regs.Read(MCR)&^MCRDisable)
	regs.Write(MCR, cfg.mcr()|MCRClrTxFIFO|MCRClrRxFIFO)
	regs.Write(SR, uint32(StatusFlags))
	regs.Write(RSER, RSERRFDF|RSEREOQF)
	m.debug("init",
		slog.Int("ctar", cfg.CTAR),
		slog.Int("depth", m.depth),
		slog.Uint64("baud", uint64(SolveBaud(cfg.ClockHz, cfg.BaudRate).Rate)))
	return m
}

// Instance returns the instance driven by the Master.
func (m *Master) Instance() Instance {
	return m.n
}

// SendMessage queues a message for transmission to the device selected by
// pcs and starts the transfer.
//
// The message is split into frames with an EOQ at the end of every FIFO sized
// burst. If readOnly is set the content of words is ignored and len(words)
// dummy words are sent, to clock in a response.
//
// Returns ErrCapacity, with nothing queued, if the TX queue cannot hold the
// whole message, and ErrBusy if a previous transaction has not finished.
// The transfer completes asynchronously - see IsCommunicationFinished and Wait.
func (m *Master) SendMessage(pcs PCS, words []uint16, readOnly bool) error {
	if len(words) == 0 {
		return ErrEmptyMessage
	}
	if pcs >= MaxPCS {
		return fmt.Errorf("%w: pcs %d", ErrBadConfig, pcs)
	}
	ff := m.frames(pcs, words, readOnly)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.send(ff, nil, false)
}

// ReadMessage clocks in n words from the device selected by pcs.
// The received words are available from ReceiveWord once the transaction
// finishes.
func (m *Master) ReadMessage(pcs PCS, n int) error {
	return m.SendMessage(pcs, make([]uint16, n), true)
}

// SendFrame queues as much of data as fits in the TX queue for transmission
// to the default chip select and starts the transfer.
//
// Returns the number of bytes queued. The optional done is called once the
// queued bytes have been sent.
func (m *Master) SendFrame(data []byte, done func()) (int, error) {
	if len(data) == 0 {
		return 0, ErrEmptyMessage
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == Sending {
		return 0, ErrBusy
	}
	n := len(data)
	if r := m.tx.Remaining(); n > r {
		n = r
	}
	if n == 0 {
		return 0, ErrCapacity
	}
	words := make([]uint16, n)
	for i := range words {
		words[i] = uint16(data[i])
	}
	if err := m.send(m.frames(m.cfg.DefaultPCS, words, false), done, false); err != nil {
		return 0, err
	}
	return n, nil
}

// SendByte queues a single byte for transmission to the default chip select.
func (m *Master) SendByte(b byte) error {
	_, err := m.SendFrame([]byte{b}, nil)
	return err
}

// ReceiveByte returns the least significant byte of the oldest received word.
// Returns false if no word has been received.
func (m *Master) ReceiveByte() (byte, bool) {
	w, ok := m.ReceiveWord()
	return byte(w), ok
}

// ReceiveWord returns the oldest received word.
// Returns false if no word has been received.
func (m *Master) ReceiveWord() (uint16, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rx.Pop()
}

// Received returns the number of received words waiting to be read.
func (m *Master) Received() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rx.Len()
}

// IsCommunicationFinished returns true once the last transaction has been
// completely sent, or aborted.
func (m *Master) IsCommunicationFinished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase == Idle
}

// Phase returns the transaction state of the instance.
func (m *Master) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Overflows returns the number of received words dropped as the RX queue was
// full.
func (m *Master) Overflows() uint64 {
	return m.overflows.Load()
}

// Wait blocks until the last transaction finishes or the ctx is done.
// Returns ErrAborted if the transaction was aborted, or the ctx error if the
// ctx expired first. The transaction is not affected by the ctx expiring -
// use Abort to abandon it.
func (m *Master) Wait(ctx context.Context) error {
	m.mu.Lock()
	txn := m.txn
	m.mu.Unlock()
	select {
	case <-txn.done:
		return txn.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Abort abandons any transaction in flight.
// The module is halted, the TX FIFO and TX queue are flushed, and waiters
// are released with ErrAborted.
func (m *Master) Abort() {
	m.mu.Lock()
	m.regs.Write(MCR, m.regs.Read(MCR)|MCRHalt|MCRClrTxFIFO)
	m.regs.Write(SR, uint32(StatusEOQF|StatusTFFF))
	dropped := m.tx.Len()
	m.tx.Flush()
	cb := m.finish(ErrAborted)
	m.mu.Unlock()
	m.debug("abort", slog.Int("dropped", dropped))
	if cb != nil {
		cb()
	}
}

// Close aborts any transaction in flight, disables the module interrupts and
// stops the module clock.
func (m *Master) Close() {
	m.Abort()
	m.mu.Lock()
	m.regs.Write(RSER, 0)
	m.regs.Write(MCR, m.regs.Read(MCR)|MCRDisable)
	m.mu.Unlock()
}

// HandleInterrupt reacts to the module interrupt.
//
// It must be called by the platform interrupt delivery whenever the module
// interrupt is asserted.
func (m *Master) HandleInterrupt() {
	m.mu.Lock()
	sr := Status(m.regs.Read(SR))
	st, cmds := Dispatch(State{
		Phase:   m.phase,
		TxEmpty: m.tx.Empty(),
		RxFull:  m.rx.Full(),
	}, sr)
	m.phase = st.Phase
	if cmds.Has(CmdClearRFDF) {
		m.regs.Write(SR, uint32(StatusRFDF))
	}
	if cmds.Has(CmdPopRx) || cmds.Has(CmdDropRx) {
		m.receive()
	}
	if cmds.Has(CmdClearEOQF) {
		m.regs.Write(SR, uint32(StatusEOQF))
	}
	if cmds.Has(CmdRefill) {
		m.pump()
	}
	if cmds.Has(CmdHalt) {
		m.regs.Write(MCR, m.regs.Read(MCR)|MCRHalt)
	}
	var cb func()
	if cmds.Has(CmdFinish) {
		// interrupts may have coalesced, so collect the words of the final
		// burst still in the RX FIFO before waiters read the RX queue
		for Status(m.regs.Read(SR)).RxCount() > 0 {
			m.receive()
		}
		cb = m.finish(nil)
	}
	m.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// receive moves a word from the RX FIFO to the RX queue, or drops it if the
// RX queue is full.
// Assumes the caller holds mu.
func (m *Master) receive() {
	w := uint16(m.regs.Read(POPR))
	if m.rx.Push(w) {
		return
	}
	m.overflows.Add(1)
	m.warn("rx overflow", slog.Uint64("overflows", m.overflows.Load()))
}

// frames encodes a message using the configured CTAR.
func (m *Master) frames(pcs PCS, words []uint16, readOnly bool) []Frame {
	ff := EncodeMessage(pcs, words, m.depth, readOnly, m.cfg.DummyWord)
	for i := range ff {
		ff[i].CTAS = uint8(m.cfg.CTAR)
	}
	return ff
}

// send queues the frames and starts the transfer.
// Assumes the caller holds mu.
func (m *Master) send(ff []Frame, done func(), flushRx bool) error {
	if m.phase == Sending {
		return ErrBusy
	}
	if len(ff) > m.tx.Remaining() {
		return ErrCapacity
	}
	if flushRx {
		m.rx.Flush()
	}
	for _, f := range ff {
		m.tx.Push(f)
	}
	m.phase = Sending
	m.txn = newTransaction()
	m.callback = done
	n := m.pump()
	m.regs.Write(MCR, m.regs.Read(MCR)&^MCRHalt)
	m.debug("send", slog.Int("frames", len(ff)), slog.Int("primed", n))
	return nil
}

// pump moves frames from the TX queue to the TX FIFO until either the FIFO
// is full or the queue is empty.
// Assumes the caller holds mu.
func (m *Master) pump() int {
	n := 0
	for Status(m.regs.Read(SR)).Has(StatusTFFF) {
		f, ok := m.tx.Pop()
		if !ok {
			break
		}
		m.regs.Write(PUSHR, f.Encode())
		m.regs.Write(SR, uint32(StatusTFFF))
		n++
	}
	return n
}

// finish completes the current transaction and returns the callback to be
// called once mu is released.
// Assumes the caller holds mu.
func (m *Master) finish(err error) func() {
	m.phase = Idle
	select {
	case <-m.txn.done:
		return nil
	default:
	}
	m.txn.err = err
	close(m.txn.done)
	cb := m.callback
	m.callback = nil
	m.debug("finished", slog.Any("err", err))
	return cb
}

func (m *Master) debug(msg string, args ...any) {
	if m.log != nil {
		m.log.Debug(msg, append([]any{slog.String("spi", m.n.String())}, args...)...)
	}
}

func (m *Master) warn(msg string, args ...any) {
	if m.log != nil {
		m.log.Warn(msg, append([]any{slog.String("spi", m.n.String())}, args...)...)
	}
}
