// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi

// Reg identifies a 32 bit register within a DSPI register block.
// The value is the word offset of the register from the block base.
type Reg int

// DSPI registers.
const (
	MCR   Reg = 0x00 / 4
	TCR   Reg = 0x08 / 4
	CTAR0 Reg = 0x0c / 4
	CTAR1 Reg = 0x10 / 4
	SR    Reg = 0x2c / 4
	RSER  Reg = 0x30 / 4
	PUSHR Reg = 0x34 / 4
	POPR  Reg = 0x38 / 4

	// number of words in the register block
	blockLength = 0x8c / 4
)

// Block provides access to the registers of a single DSPI module.
//
// Writes to SR clear the bits written as 1.
// Writes to PUSHR enqueue a command word in the TX FIFO, and reads from POPR
// dequeue a word from the RX FIFO.
type Block interface {
	Read(r Reg) uint32
	Write(r Reg, v uint32)
}

// CTAR returns the CTAR register selected by n.
func CTAR(n int) Reg {
	return CTAR0 + Reg(n&1)
}

// MCR bits.
const (
	MCRMaster      uint32 = 1 << 31
	MCRContSCKE    uint32 = 1 << 30
	MCRFreeze      uint32 = 1 << 27
	MCRRxOverwrite uint32 = 1 << 24
	MCRDoze        uint32 = 1 << 15
	MCRDisable     uint32 = 1 << 14
	MCRDisTxFIFO   uint32 = 1 << 13
	MCRDisRxFIFO   uint32 = 1 << 12
	MCRClrTxFIFO   uint32 = 1 << 11
	MCRClrRxFIFO   uint32 = 1 << 10
	MCRHalt        uint32 = 1 << 0

	mcrPCSISShift = 16
	mcrPCSISMask  = 0x3f << mcrPCSISShift
)

// MCRPCSIS returns the MCR inactive state field for the PCS lines in mask.
func MCRPCSIS(mask uint8) uint32 {
	return uint32(mask) << mcrPCSISShift & mcrPCSISMask
}

// Status is a snapshot of the SR register.
type Status uint32

// SR bits.
const (
	StatusTCF   Status = 1 << 31
	StatusTXRXS Status = 1 << 30
	StatusEOQF  Status = 1 << 28
	StatusTFUF  Status = 1 << 27
	StatusTFFF  Status = 1 << 25
	StatusRFOF  Status = 1 << 19
	StatusRFDF  Status = 1 << 17

	// StatusFlags covers all the write-1-to-clear flags.
	StatusFlags = StatusTCF | StatusEOQF | StatusTFUF | StatusTFFF | StatusRFOF | StatusRFDF

	srTXCTRShift = 12
	srRXCTRShift = 4
	srCtrMask    = 0xf
)

// Has returns true if all the bits in flags are set in the Status.
func (s Status) Has(flags Status) bool {
	return s&flags == flags
}

// TxCount returns the number of entries in the TX FIFO.
func (s Status) TxCount() int {
	return int(s >> srTXCTRShift & srCtrMask)
}

// RxCount returns the number of entries in the RX FIFO.
func (s Status) RxCount() int {
	return int(s >> srRXCTRShift & srCtrMask)
}

// WithCounts returns the Status with the FIFO counter fields replaced.
func (s Status) WithCounts(tx, rx int) Status {
	s &^= srCtrMask<<srTXCTRShift | srCtrMask<<srRXCTRShift
	return s | Status(tx&srCtrMask)<<srTXCTRShift | Status(rx&srCtrMask)<<srRXCTRShift
}

// RSER bits.
const (
	RSERTCF      uint32 = 1 << 31
	RSEREOQF     uint32 = 1 << 28
	RSERTFUF     uint32 = 1 << 27
	RSERTFFF     uint32 = 1 << 25
	RSERTFFFDIRS uint32 = 1 << 24
	RSERRFOF     uint32 = 1 << 19
	RSERRFDF     uint32 = 1 << 17
	RSERRFDFDIRS uint32 = 1 << 16
)

// CTAR fields.
const (
	ctarDBR        = 31
	ctarFMSZShift  = 27
	ctarCPOL       = 26
	ctarCPHA       = 25
	ctarLSBFE      = 24
	ctarPCSSCKShft = 22
	ctarPASCShift  = 20
	ctarPDTShift   = 18
	ctarPBRShift   = 16
	ctarCSSCKShift = 12
	ctarASCShift   = 8
	ctarDTShift    = 4
	ctarBRShift    = 0
)
