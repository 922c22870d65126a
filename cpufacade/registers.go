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

// Package cpufacade defines the boundary between the control/persistence
// core and the Z80 CPU execution engine, which is out of scope for this
// module (spec §1: "the core consumes a CPU facade exposing registers,
// reset, step, and run"). Nothing in this package executes an
// instruction; it only describes the shape the core needs from whatever
// does.
package cpufacade

// Registers is the complete, directly-addressable Z80 register state
// (spec §3.2). It is a plain value type so that snapshot load/save can
// copy it wholesale without reaching into CPU internals.
type Registers struct {
	// Main set
	A, F   byte
	B, C   byte
	D, E   byte
	H, L   byte

	// Alternate set
	A1, F1 byte
	B1, C1 byte
	D1, E1 byte
	H1, L1 byte

	IX, IY uint16
	PC, SP uint16

	I byte
	R byte // full 8-bit value; the snapshot codecs split it into 7 bits + bit 7

	IFF1, IFF2 bool
	IM         byte // 0, 1, or 2
}

// AF returns the combined accumulator+flags register pair.
func (r Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F) }

// SetAF sets A and F from a combined pair.
func (r *Registers) SetAF(v uint16) { r.A = byte(v >> 8); r.F = byte(v) }

// BC returns the combined BC register pair.
func (r Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }

// SetBC sets B and C from a combined pair.
func (r *Registers) SetBC(v uint16) { r.B = byte(v >> 8); r.C = byte(v) }

// DE returns the combined DE register pair.
func (r Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }

// SetDE sets D and E from a combined pair.
func (r *Registers) SetDE(v uint16) { r.D = byte(v >> 8); r.E = byte(v) }

// HL returns the combined HL register pair.
func (r Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

// SetHL sets H and L from a combined pair.
func (r *Registers) SetHL(v uint16) { r.H = byte(v >> 8); r.L = byte(v) }

// AF1 returns the combined alternate AF' register pair.
func (r Registers) AF1() uint16 { return uint16(r.A1)<<8 | uint16(r.F1) }

// SetAF1 sets A' and F' from a combined pair.
func (r *Registers) SetAF1(v uint16) { r.A1 = byte(v >> 8); r.F1 = byte(v) }

// BC1 returns the combined alternate BC' register pair.
func (r Registers) BC1() uint16 { return uint16(r.B1)<<8 | uint16(r.C1) }

// SetBC1 sets B' and C' from a combined pair.
func (r *Registers) SetBC1(v uint16) { r.B1 = byte(v >> 8); r.C1 = byte(v) }

// DE1 returns the combined alternate DE' register pair.
func (r Registers) DE1() uint16 { return uint16(r.D1)<<8 | uint16(r.E1) }

// SetDE1 sets D' and E' from a combined pair.
func (r *Registers) SetDE1(v uint16) { r.D1 = byte(v >> 8); r.E1 = byte(v) }

// HL1 returns the combined alternate HL' register pair.
func (r Registers) HL1() uint16 { return uint16(r.H1)<<8 | uint16(r.L1) }

// SetHL1 sets H' and L' from a combined pair.
func (r *Registers) SetHL1(v uint16) { r.H1 = byte(v >> 8); r.L1 = byte(v) }
