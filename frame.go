// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi

// PCS identifies one of the peripheral chip select lines of a DSPI module.
type PCS uint8

// Chip selects.
const (
	PCS0 PCS = iota
	PCS1
	PCS2
	PCS3
	PCS4
	PCS5
	MaxPCS
)

// Frame is one TX FIFO entry - a data word and the attributes used to
// transfer it.
type Frame struct {
	// PCS is the chip select asserted for the transfer.
	PCS PCS
	// Cont holds the chip select asserted between this frame and the next.
	Cont bool
	// CTAS selects the CTAR used for the transfer.
	CTAS uint8
	// EOQ marks the last frame of a burst.
	// The module stops transfers after an EOQ frame until EOQF is cleared.
	EOQ bool
	// CTCNT clears the transfer counter before the frame is transferred.
	CTCNT bool
	Data  uint16
}

// PUSHR fields.
const (
	pushrCont      uint32 = 1 << 31
	pushrCTASShift        = 28
	pushrCTASMask  uint32 = 0x7 << pushrCTASShift
	pushrEOQ       uint32 = 1 << 27
	pushrCTCNT     uint32 = 1 << 26
	pushrPCSShift         = 16
	pushrPCSMask   uint32 = 0x3f << pushrPCSShift
	pushrDataMask  uint32 = 0xffff
)

// Encode returns the PUSHR command word for the frame.
func (f Frame) Encode() uint32 {
	v := uint32(f.Data)
	v |= uint32(f.CTAS) << pushrCTASShift & pushrCTASMask
	if f.PCS < MaxPCS {
		v |= 1 << (pushrPCSShift + uint32(f.PCS))
	}
	if f.Cont {
		v |= pushrCont
	}
	if f.EOQ {
		v |= pushrEOQ
	}
	if f.CTCNT {
		v |= pushrCTCNT
	}
	return v
}

// DecodeFrame returns the Frame encoded in a PUSHR command word.
// If more than one PCS bit is set the lowest is reported.
func DecodeFrame(v uint32) Frame {
	f := Frame{
		Data:  uint16(v & pushrDataMask),
		CTAS:  uint8((v & pushrCTASMask) >> pushrCTASShift),
		Cont:  v&pushrCont != 0,
		EOQ:   v&pushrEOQ != 0,
		CTCNT: v&pushrCTCNT != 0,
		PCS:   MaxPCS,
	}
	pcs := (v & pushrPCSMask) >> pushrPCSShift
	for i := PCS0; i < MaxPCS; i++ {
		if pcs&(1<<i) != 0 {
			f.PCS = i
			break
		}
	}
	return f
}

// EncodeMessage splits a message into frames for a module with a TX FIFO of
// the given depth.
//
// The EOQ flag is set on the last frame of each FIFO sized burst and on the
// last frame of the message, and the chip select is held between all other
// frames. If readOnly is set the data words are ignored and dummy is sent in
// their place, so len(words) frames are clocked to receive a response.
func EncodeMessage(pcs PCS, words []uint16, depth int, readOnly bool, dummy uint16) []Frame {
	if depth < 1 {
		depth = 1
	}
	ff := make([]Frame, len(words))
	burst := 0
	for i, w := range words {
		burst++
		eoq := burst == depth || i == len(words)-1
		if burst == depth {
			burst = 0
		}
		if readOnly {
			w = dummy
		}
		ff[i] = Frame{PCS: pcs, Cont: !eoq, EOQ: eoq, Data: w}
	}
	return ff
}
