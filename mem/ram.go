// Package mem provides the RAM bus device: a contiguous byte array with a
// configurable access latency expressed in wait states.
package mem

import (
	"encoding/binary"

	"github.com/aurelia-systems/aurelia/core"
)

// RAM is byte-addressed backing store mapped at a fixed base. A latency of L
// makes every transaction answer "not done" for L cycles before the word
// transfer happens.
type RAM struct {
	base    core.Addr
	data    []byte
	latency uint64

	waitTicks uint64
	busy      bool
}

// New allocates size bytes of zeroed RAM at base.
func New(base core.Addr, size int, latency uint64) *RAM {
	return &RAM{
		base:    base,
		data:    make([]byte, size),
		latency: latency,
	}
}

func (r *RAM) Size() int {
	return len(r.data)
}

func (r *RAM) InRange(addr core.Addr) bool {
	return addr >= r.base && addr < r.base+core.Addr(len(r.data))
}

func (r *RAM) Tick() {
	if r.waitTicks > 0 {
		r.waitTicks--
	}
}

// wait runs the latency state machine shared by reads and writes. It
// reports true while the transaction must be held.
func (r *RAM) wait() bool {
	if r.latency == 0 {
		return false
	}
	if r.waitTicks > 0 {
		return true
	}
	if !r.busy {
		r.waitTicks = r.latency
		r.busy = true
		return true
	}
	r.busy = false
	return false
}

func (r *RAM) Read(addr core.Addr) (core.Word, bool) {
	if r.wait() {
		return 0, false
	}

	off := addr - r.base
	if off+core.WordSize > core.Addr(len(r.data)) {
		// below the bus level: clamp to zeroed data
		return 0, true
	}
	return binary.LittleEndian.Uint64(r.data[off:]), true
}

func (r *RAM) Write(addr core.Addr, data core.Word) bool {
	if r.wait() {
		return false
	}

	off := addr - r.base
	if off+core.WordSize > core.Addr(len(r.data)) {
		// out-of-range writes are dropped silently
		return true
	}
	binary.LittleEndian.PutUint64(r.data[off:], data)
	return true
}
