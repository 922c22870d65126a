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

package cpufacade

// CPU is the minimal surface the core needs from a Z80 execution engine.
// Opcode dispatch and T-state timing are entirely the implementation's
// concern; the core only ever resets it, steps it, runs it until told to
// stop, and reads/writes its register state wholesale (for snapshot
// load/save).
type CPU interface {
	// Reset reinitialises the CPU to its power-on register state. Does
	// not touch memory; the instance is responsible for re-establishing
	// the paging defaults separately (spec §4.1).
	Reset()

	// Registers returns a copy of the current register state.
	Registers() Registers

	// SetRegisters overwrites the CPU's register state wholesale, as
	// required by snapshot apply.
	SetRegisters(Registers)

	// Step executes exactly one instruction and returns the number of
	// T-states it consumed.
	Step() (tStates int, err error)

	// Run executes instructions until stop is closed or step returns an
	// error. Called from the instance's dedicated emulation goroutine.
	Run(stop <-chan struct{}) error
}

// Peripherals is the minimal surface the core needs from the
// ULA/video/sound/keyboard/tape subsystems that are out of scope for
// this module (spec §1). The core only ever asks them for their
// persisted state (for snapshot save) or hands them a previously
// persisted state back (for snapshot apply); it never drives their
// internal timing.
type Peripherals interface {
	// BorderColour returns the current 3-bit border colour.
	BorderColour() byte
	SetBorderColour(byte)

	// AYRegisters returns the 16 AY-3-8912 register values for the
	// given chip index (0-based; multi-AY configurations carry up to 3
	// chips per spec §3.2).
	AYRegisters(chip int) [16]byte
	SetAYRegisters(chip int, regs [16]byte)

	// AYLatch returns the currently latched AY register index (port
	// 0xFFFD image).
	AYLatch() byte
	SetAYLatch(byte)
}
