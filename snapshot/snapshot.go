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

// Package snapshot implements the C2 component: validating parsers and
// serialisers for the SNA (48K/128K) and Z80 (v1/v2/v3) legacy formats,
// with a two-phase stage-then-apply transactional load model (spec §4.2,
// §4.3). Parsing only ever populates a StagedSnapshot value; nothing
// reaches live machine state (memory, registers, port image) until
// Apply is called, and Apply only runs once every page in the staged
// snapshot has been validated. A parse failure therefore always leaves
// the live machine untouched (spec §8).
package snapshot

import (
	"github.com/zxfleet/core/config"
	"github.com/zxfleet/core/cpufacade"
	"github.com/zxfleet/core/memory"
)

// Mode classifies which on-disk format a StagedSnapshot was parsed from,
// or is destined to be saved as.
type Mode int

const (
	Unknown Mode = iota
	SNA48
	SNA128
	Z80v1
	Z80v2
	Z80v3
)

func (m Mode) String() string {
	switch m {
	case SNA48:
		return "SNA48"
	case SNA128:
		return "SNA128"
	case Z80v1:
		return "Z80v1"
	case Z80v2:
		return "Z80v2"
	case Z80v3:
		return "Z80v3"
	}
	return "Unknown"
}

// PageKey identifies one staged 16 KiB page by storage kind and index.
type PageKey struct {
	Kind  memory.Kind
	Index int
}

// StagedSnapshot is the fully-validated, not-yet-applied representation
// of a loaded snapshot (spec §3.3). Every field here is a heap-local
// copy; Apply is the only function that writes any of it into live
// machine state.
type StagedSnapshot struct {
	Mode Mode

	Registers cpufacade.Registers
	Border    byte

	// Port7FFD is the port-7FFD image to replay through the port
	// decoder during Apply, re-establishing paging/screen/lock exactly
	// as a live I/O write would (spec §4.3). For SNA48/Z80v1 (48K-only
	// formats) this is synthesised rather than read from the file.
	Port7FFD byte

	// TRDOSActive, when true, causes Apply to map the TR-DOS ROM into
	// bank 0 after the port-7FFD image has been replayed.
	TRDOSActive bool

	Model config.Model

	// PC is the program counter to assign directly. Ignored when
	// PCFromStack is true.
	PC          uint16
	PCFromStack bool

	// Pages is the complete set of 16 KiB pages staged from the file,
	// keyed by where they belong once applied.
	Pages map[PageKey][]byte
}

// NewStaged returns an empty StagedSnapshot ready to have pages added.
func NewStaged(mode Mode, model config.Model) StagedSnapshot {
	return StagedSnapshot{
		Mode:  mode,
		Model: model,
		Pages: make(map[PageKey][]byte),
	}
}

// Apply commits a fully-staged snapshot to live machine state: it resets
// the CPU, writes every staged page into memory, replays the port-7FFD
// image through the decoder (so paging/screen/lock side-effects are
// re-established identically to a live I/O write), optionally maps the
// TR-DOS ROM, and finally assigns registers and PC.
//
// Apply is only ever called after every page has staged successfully, so
// it cannot itself fail for format reasons; the only errors it can
// return come from the memory/port layers rejecting an out-of-range page
// index, which would indicate a staging bug.
func Apply(mem *memory.Memory, dec Decoder, cpu cpufacade.CPU, staged StagedSnapshot) error {
	cpu.Reset()

	for key, data := range staged.Pages {
		if err := mem.LoadPage(key.Kind, key.Index, data); err != nil {
			return err
		}
	}

	// A live I/O write to port 7FFD is ignored once the lock bit has
	// latched, but applying a snapshot must always reprogram the port
	// to match the file, even over a previously-locked instance (spec
	// §8 scenario 2); unlock first so the replay below cannot be
	// silently dropped, then let the replayed value relatch the lock
	// itself if its own bit 5 is set.
	dec.UnlockPaging()
	dec.Write7FFD(staged.Port7FFD)

	if staged.TRDOSActive {
		mem.ActivateTRDOS()
	} else {
		mem.DeactivateTRDOS()
	}

	regs := staged.Registers
	if staged.PCFromStack {
		sp := regs.SP
		lo := mem.Read(sp)
		hi := mem.Read(sp + 1)
		regs.PC = uint16(hi)<<8 | uint16(lo)
		regs.SP = sp + 2
	} else {
		regs.PC = staged.PC
	}
	cpu.SetRegisters(regs)

	return nil
}

// Decoder is the subset of port.Decoder's behaviour Apply needs. Apply
// takes it as an interface so any implementation of these two methods
// can be passed; the SNA and Z80 savers and parsers in this package use
// package port directly.
type Decoder interface {
	Write7FFD(value byte)
	UnlockPaging()
}
