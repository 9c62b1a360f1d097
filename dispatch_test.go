// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatch(t *testing.T) {
	sending := State{Phase: Sending}
	patterns := []struct {
		name  string
		st    State
		sr    Status
		phase Phase
		cmds  Commands
	}{
		{"none", sending, 0, Sending, 0},
		{"tcf only", sending, StatusTCF, Sending, 0},
		{"rfdf", sending, StatusRFDF.WithCounts(0, 1), Sending,
			CmdClearRFDF | CmdPopRx},
		{"rfdf no count", sending, StatusRFDF, Sending, CmdClearRFDF},
		{"rfdf rx full", State{Phase: Sending, RxFull: true}, StatusRFDF.WithCounts(0, 2), Sending,
			CmdClearRFDF | CmdDropRx},
		{"eoq more", sending, StatusEOQF, Sending, CmdClearEOQF | CmdRefill},
		{"eoq last", State{Phase: Sending, TxEmpty: true}, StatusEOQF, Idle,
			CmdClearEOQF | CmdHalt | CmdFinish},
		{"eoq idle", State{Phase: Idle, TxEmpty: true}, StatusEOQF, Idle,
			CmdClearEOQF | CmdHalt | CmdFinish},
		{"both last", State{Phase: Sending, TxEmpty: true}, (StatusEOQF | StatusRFDF).WithCounts(0, 1), Idle,
			CmdClearRFDF | CmdPopRx | CmdClearEOQF | CmdHalt | CmdFinish},
		{"both more", sending, (StatusEOQF | StatusRFDF).WithCounts(1, 1), Sending,
			CmdClearRFDF | CmdPopRx | CmdClearEOQF | CmdRefill},
	}
	for _, p := range patterns {
		t.Run(p.name, func(t *testing.T) {
			st, cmds := Dispatch(p.st, p.sr)
			assert.Equal(t, p.phase, st.Phase)
			assert.Equal(t, p.cmds, cmds)
			assert.Equal(t, p.st.TxEmpty, st.TxEmpty)
			assert.Equal(t, p.st.RxFull, st.RxFull)
		})
	}
}

func TestCommandsHas(t *testing.T) {
	c := CmdClearEOQF | CmdHalt
	assert.True(t, c.Has(CmdHalt))
	assert.True(t, c.Has(CmdClearEOQF|CmdHalt))
	assert.False(t, c.Has(CmdHalt|CmdFinish))
	assert.True(t, c.Has(0))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "sending", Sending.String())
}

func TestStatusCounts(t *testing.T) {
	s := (StatusTFFF | StatusRFDF).WithCounts(3, 2)
	assert.Equal(t, 3, s.TxCount())
	assert.Equal(t, 2, s.RxCount())
	assert.True(t, s.Has(StatusTFFF|StatusRFDF))
	s = s.WithCounts(0, 1)
	assert.Equal(t, 0, s.TxCount())
	assert.Equal(t, 1, s.RxCount())
	assert.True(t, s.Has(StatusTFFF|StatusRFDF))
}
