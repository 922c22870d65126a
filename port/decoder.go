// This file is part of zxfleet.
//
// zxfleet is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// zxfleet is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with zxfleet.  If not, see <https://www.gnu.org/licenses/>.

// Package port implements the C8 component: the single rule engine for
// the side-effects of writes to port 7FFD. It does not handle the TR-DOS
// trap; that is switched directly on memory.Memory.
// Both live I/O writes and snapshot apply replay their recorded port
// image through this same Decoder, which is what makes loads idempotent
// across pre-locked states (spec §4.3, §8).
package port

import "github.com/zxfleet/core/memory"

// Decoder owns the paging-relevant state derived from port 7FFD: the
// last value written, and whether the paging lock bit has latched.
type Decoder struct {
	mem    *memory.Memory
	last   byte
	locked bool
}

// New returns a Decoder bound to mem. The decoder does not own mem's
// lifetime; it is expected to be constructed once per instance alongside
// its Memory.
func New(mem *memory.Memory) *Decoder {
	return &Decoder{mem: mem}
}

// Write7FFD applies the side-effects of writing value to port 7FFD:
//
//   - if the lock bit was previously set, the new value is ignored
//     entirely (spec §4.7);
//   - otherwise bit0..2 select the RAM page windowed into bank 3, bit3
//     selects the screen page (0 -> page 5, 1 -> page 7), bit4 selects
//     the ROM page, and bit5 latches the lock.
func (d *Decoder) Write7FFD(value byte) {
	if d.locked {
		return
	}

	ramPage := int(value & 0x07)
	romSelect := (value >> 4) & 0x01

	_ = d.mem.MapBank(3, memory.RAM, ramPage)
	if !d.mem.TRDOSActive() {
		_ = d.mem.MapBank(0, memory.ROM, int(romSelect))
	}

	d.last = value
	if value&0x20 != 0 {
		d.locked = true
	}
}

// Last returns the most recently accepted port-7FFD value (the value
// from the write that was actually applied, not a subsequent ignored
// one).
func (d *Decoder) Last() byte {
	return d.last
}

// Locked reports whether the paging lock bit has latched.
func (d *Decoder) Locked() bool {
	return d.locked
}

// ScreenPage returns the currently selected screen RAM page: 5 when bit3
// of the last accepted port-7FFD value is clear, 7 when set.
func (d *Decoder) ScreenPage() int {
	if d.last&0x08 != 0 {
		return 7
	}
	return 5
}

// LockPaging latches the lock bit without requiring a full port write.
// Used by code paths, such as snapshot apply, that need to reproduce a
// locked state directly.
func (d *Decoder) LockPaging() {
	d.locked = true
}

// UnlockPaging clears the lock bit. Used on hardware reset, which clears
// the lock unconditionally (spec §3.2).
func (d *Decoder) UnlockPaging() {
	d.locked = false
}

// SyntheticROM1Value builds the port-7FFD image a 48K machine is
// synthesised to have when a Z80 snapshot without an extended header is
// applied: bank 0 (RAM page 0 selected into bank 3 is irrelevant for a
// 48K machine, but the bank3/screen/ROM bits still need a defined value
// so the decoder's invariants hold), normal screen, ROM page 1 selected,
// and the lock bit set (spec §4.3).
func SyntheticROM1Value() byte {
	return 0x10 | 0x20
}
