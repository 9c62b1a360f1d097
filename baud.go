// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi

var (
	// baud rate prescaler values, indexed by CTAR PBR
	pbrTable = [4]uint32{2, 3, 5, 7}
	// baud rate scaler values, indexed by CTAR BR
	brTable = [16]uint32{
		2, 4, 6, 8, 16, 32, 64, 128,
		256, 512, 1024, 2048, 4096, 8192, 16384, 32768,
	}
)

// Baud is a combination of CTAR fields that determines the SCK rate.
type Baud struct {
	// DBR doubles the baud rate.
	DBR bool
	// PBR indexes the prescaler table.
	PBR uint8
	// BR indexes the scaler table.
	BR uint8
	// Rate is the SCK rate, in Hz, achieved by the combination.
	Rate uint32
}

// CTAR returns the CTAR bits for the combination.
func (b Baud) CTAR() uint32 {
	v := uint32(b.PBR&0x3)<<ctarPBRShift | uint32(b.BR&0xf)<<ctarBRShift
	if b.DBR {
		v |= 1 << ctarDBR
	}
	return v
}

// BaudRate returns the SCK rate, in Hz, for a combination of CTAR fields
// given the module clock.
func BaudRate(clockHz uint32, dbr bool, pbr, br uint8) uint32 {
	num := uint64(clockHz)
	if dbr {
		num *= 2
	}
	return uint32(num / uint64(pbrTable[pbr&0x3]*brTable[br&0xf]))
}

// SolveBaud returns the combination of CTAR fields that produces the SCK rate
// closest to the requested rate.
//
// All combinations are evaluated, scanning DBR, then PBR, then BR in
// ascending order, and the first combination found with the smallest error
// is returned.
func SolveBaud(clockHz, requestedHz uint32) Baud {
	var best Baud
	bestErr := uint32(0)
	found := false
	for d := 0; d < 2; d++ {
		dbr := d == 1
		for pbr := range pbrTable {
			for br := range brTable {
				rate := BaudRate(clockHz, dbr, uint8(pbr), uint8(br))
				e := absDiff(rate, requestedHz)
				if !found || e < bestErr {
					best = Baud{DBR: dbr, PBR: uint8(pbr), BR: uint8(br), Rate: rate}
					bestErr = e
					found = true
				}
			}
		}
	}
	return best
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
