// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi

// Phase is the transaction state of an instance.
type Phase int

const (
	// Idle - no transaction in flight.
	Idle Phase = iota
	// Sending - frames are queued or in the TX FIFO awaiting EOQ.
	Sending
)

func (p Phase) String() string {
	if p == Sending {
		return "sending"
	}
	return "idle"
}

// State is the portion of the instance state the interrupt dispatcher
// depends on.
type State struct {
	Phase Phase
	// TxEmpty is true if the TX queue holds no frames.
	TxEmpty bool
	// RxFull is true if the RX queue cannot accept another word.
	RxFull bool
}

// Commands are the actions the interrupt dispatcher requests be applied to
// the hardware and queues.
type Commands uint32

const (
	// CmdClearRFDF - write RFDF back to SR.
	CmdClearRFDF Commands = 1 << iota
	// CmdPopRx - read a word from POPR and push it into the RX queue.
	CmdPopRx
	// CmdDropRx - read a word from POPR and discard it as the RX queue is full.
	CmdDropRx
	// CmdClearEOQF - write EOQF back to SR.
	CmdClearEOQF
	// CmdHalt - set the MCR HALT bit.
	CmdHalt
	// CmdFinish - mark the transaction complete.
	CmdFinish
	// CmdRefill - run the transmit pump.
	CmdRefill
)

// Has returns true if all of cmds are set.
func (c Commands) Has(cmds Commands) bool {
	return c&cmds == cmds
}

// Dispatch determines the reaction to an interrupt given the instance state
// and a single snapshot of the status register.
//
// The RX drain and EOQ conditions are independent and both are handled in
// the one call.
func Dispatch(st State, sr Status) (State, Commands) {
	var cmds Commands
	if sr.Has(StatusRFDF) {
		cmds |= CmdClearRFDF
		if sr.RxCount() > 0 {
			if st.RxFull {
				cmds |= CmdDropRx
			} else {
				cmds |= CmdPopRx
			}
		}
	}
	if sr.Has(StatusEOQF) {
		cmds |= CmdClearEOQF
		if st.TxEmpty {
			cmds |= CmdHalt | CmdFinish
			st.Phase = Idle
		} else {
			cmds |= CmdRefill
			st.Phase = Sending
		}
	}
	return st, cmds
}
