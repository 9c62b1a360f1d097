// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/dspi/ring"
)

func TestNew(t *testing.T) {
	var backing [5]byte
	r := ring.New(backing[:])
	assert.Equal(t, 5, r.Cap())
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 5, r.Remaining())
	assert.True(t, r.Empty())
	assert.False(t, r.Full())
}

func TestPushPop(t *testing.T) {
	var backing [5]byte
	r := ring.New(backing[:])
	for i := byte(0); i < 5; i++ {
		assert.True(t, r.Push(i), i)
		assert.Equal(t, int(i)+1, r.Len())
	}
	assert.True(t, r.Full())
	assert.Equal(t, 0, r.Remaining())

	// full - push fails and leaves the ring unchanged
	assert.False(t, r.Push(5))
	assert.Equal(t, 5, r.Len())

	for i := byte(0); i < 5; i++ {
		v, ok := r.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := r.Pop()
	assert.False(t, ok)
	assert.True(t, r.Empty())
}

func TestRoundTrip(t *testing.T) {
	var backing [3]uint16
	r := ring.New(backing[:])
	assert.True(t, r.Push(0xbeef))
	v, ok := r.Pop()
	assert.True(t, ok)
	assert.Equal(t, uint16(0xbeef), v)
}

func TestWraparound(t *testing.T) {
	var backing [4]int
	r := ring.New(backing[:])
	for i := 0; i < 4; i++ {
		require.True(t, r.Push(i))
	}
	for i := 0; i < 3; i++ {
		v, ok := r.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	require.True(t, r.Push(4))
	var got []int
	for {
		v, ok := r.Pop()
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{3, 4}, got)
}

func TestCapacityInvariant(t *testing.T) {
	var backing [3]int
	r := ring.New(backing[:])
	// pseudo random push/pop sequence
	ops := []bool{true, true, false, true, true, true, false, false, false, false, true, false, true, true, true, true}
	next := 0
	expect := 0
	for _, push := range ops {
		count := r.Len()
		if push {
			ok := r.Push(next)
			assert.Equal(t, count < r.Cap(), ok)
			if ok {
				next++
			}
		} else {
			v, ok := r.Pop()
			assert.Equal(t, count > 0, ok)
			if ok {
				assert.Equal(t, expect, v)
				expect++
			}
		}
		assert.GreaterOrEqual(t, r.Len(), 0)
		assert.LessOrEqual(t, r.Len(), r.Cap())
		assert.Equal(t, r.Cap()-r.Len(), r.Remaining())
	}
}

func TestPeek(t *testing.T) {
	var backing [2]string
	r := ring.New(backing[:])
	_, ok := r.Peek()
	assert.False(t, ok)
	r.Push("a")
	r.Push("b")
	v, ok := r.Peek()
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 2, r.Len())
}

func TestFlush(t *testing.T) {
	var backing [4]byte
	r := ring.New(backing[:])
	r.Push(1)
	r.Push(2)
	r.Pop()
	r.Push(3)
	r.Flush()
	assert.True(t, r.Empty())
	assert.Equal(t, 4, r.Remaining())
	_, ok := r.Pop()
	assert.False(t, ok)
	// usable after flush
	assert.True(t, r.Push(9))
	v, ok := r.Pop()
	assert.True(t, ok)
	assert.Equal(t, byte(9), v)
}

func BenchmarkPushPop(b *testing.B) {
	var backing [64]uint32
	r := ring.New(backing[:])
	for i := 0; i < b.N; i++ {
		r.Push(uint32(i))
		r.Pop()
	}
}
