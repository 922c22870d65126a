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

// Package memory implements the C1 component of the fleet core: the
// 8-RAM-page / up-to-64-ROM-page storage model and the four 16 KiB
// address-space banks that are mapped onto it. The bank/page separation,
// and the convention of addressing storage by plain integer index rather
// than pointer chasing, follows the teacher's register/page table idiom
// (hardware/cpu/registers' data/pattern tables: fixed-size arrays, no
// reflection, explicit bounds).
package memory

import "github.com/zxfleet/core/zxerrors"

// PageSize is the size in bytes of a single RAM or ROM page.
const PageSize = 16 * 1024

// MaxRAMPages is the number of 16 KiB RAM pages a Spectrum 128K-class
// machine exposes (8 x 16 KiB = 128 KiB).
const MaxRAMPages = 8

// MaxROMPages is the upper bound on ROM pages a model may carry (spec
// §3.2: "up to 64 x 16 KiB ROM pages").
const MaxROMPages = 64

// NumBanks is the number of 16 KiB windows in the 64 KiB Z80 address
// space.
const NumBanks = 4

// Page is one 16 KiB unit of RAM or ROM storage.
type Page [PageSize]byte

// Kind distinguishes RAM from ROM storage for a bank mapping.
type Kind int

const (
	RAM Kind = iota
	ROM
)

// Mapping records which page is currently windowed into a bank.
type Mapping struct {
	Kind  Kind
	Index int
}

// Memory is the flat 64 KiB address space as seen by the CPU facade,
// translated through the current bank mapping.
type Memory struct {
	ramPages [MaxRAMPages]Page
	romPages []Page // len up to MaxROMPages, sized by the model's ROM set
	banks    [NumBanks]Mapping

	// trdos is the dedicated TR-DOS ROM page, mapped into bank 0 instead
	// of the port-7FFD-selected ROM page while the TR-DOS trap is active.
	trdos        Page
	trdosActive  bool
	preTrdosBank Mapping
}

// New returns a Memory with romPageCount ROM pages (from the model's ROM
// set) and every bank unmapped (Kind zero-valued to RAM, index 0) until
// Reset48K/Reset128K is called.
func New(romPageCount int) *Memory {
	if romPageCount < 1 {
		romPageCount = 1
	}
	if romPageCount > MaxROMPages {
		romPageCount = MaxROMPages
	}
	return &Memory{
		romPages: make([]Page, romPageCount),
	}
}

// Reset48K re-establishes the fixed 48K bank layout (spec §4.1):
// bank 0 <- ROM page 0, bank 1 <- RAM page 5, bank 2 <- RAM page 2,
// bank 3 <- RAM page 0.
func (m *Memory) Reset48K() {
	m.trdosActive = false
	m.banks[0] = Mapping{Kind: ROM, Index: 0}
	m.banks[1] = Mapping{Kind: RAM, Index: 5}
	m.banks[2] = Mapping{Kind: RAM, Index: 2}
	m.banks[3] = Mapping{Kind: RAM, Index: 0}
}

// Reset128K establishes the default 128K bank layout: identical bank
// wiring to 48K, the port-7FFD decoder is responsible for repointing
// bank 3/ROM/screen thereafter.
func (m *Memory) Reset128K() {
	m.Reset48K()
}

// BankMapping returns what is currently windowed into bank (0..3).
func (m *Memory) BankMapping(bank int) (Mapping, error) {
	if bank < 0 || bank >= NumBanks {
		return Mapping{}, zxerrors.New(zxerrors.InvalidArgument, "bank out of range: %d", bank)
	}
	return m.banks[bank], nil
}

// MapBank points bank at the given page. Used by the port decoder and by
// snapshot apply.
func (m *Memory) MapBank(bank int, k Kind, index int) error {
	if bank < 0 || bank >= NumBanks {
		return zxerrors.New(zxerrors.InvalidArgument, "bank out of range: %d", bank)
	}
	m.banks[bank] = Mapping{Kind: k, Index: index}
	return nil
}

// IsROM0 reports whether bank 0 currently has ROM windowed into it,
// including the case where the TR-DOS trap has substituted its own ROM.
func (m *Memory) IsROM0() bool {
	return m.trdosActive || m.banks[0].Kind == ROM
}

// ActivateTRDOS maps the dedicated TR-DOS ROM into bank 0 regardless of
// the port-7FFD ROM bit, remembering the previous mapping so
// DeactivateTRDOS can restore it (spec §4.1).
func (m *Memory) ActivateTRDOS() {
	if m.trdosActive {
		return
	}
	m.preTrdosBank = m.banks[0]
	m.trdosActive = true
}

// DeactivateTRDOS restores whatever was mapped into bank 0 before the
// TR-DOS trap was activated.
func (m *Memory) DeactivateTRDOS() {
	if !m.trdosActive {
		return
	}
	m.trdosActive = false
	m.banks[0] = m.preTrdosBank
}

// TRDOSActive reports whether the TR-DOS ROM trap is currently active.
func (m *Memory) TRDOSActive() bool {
	return m.trdosActive
}

// LoadTRDOSROM installs the TR-DOS ROM image (used once at instance
// construction; the TR-DOS ROM does not vary per snapshot).
func (m *Memory) LoadTRDOSROM(data []byte) error {
	if len(data) != PageSize {
		return zxerrors.New(zxerrors.InvalidArgument, "TR-DOS ROM must be exactly %d bytes, got %d", PageSize, len(data))
	}
	copy(m.trdos[:], data)
	return nil
}

// LoadPage copies data into the given RAM or ROM page, for use by
// snapshot apply. data must be exactly PageSize bytes.
func (m *Memory) LoadPage(k Kind, index int, data []byte) error {
	if len(data) != PageSize {
		return zxerrors.New(zxerrors.InvalidArgument, "page data must be exactly %d bytes, got %d", PageSize, len(data))
	}
	switch k {
	case RAM:
		if index < 0 || index >= MaxRAMPages {
			return zxerrors.New(zxerrors.InvalidArgument, "RAM page index out of range: %d", index)
		}
		copy(m.ramPages[index][:], data)
	case ROM:
		if index < 0 || index >= len(m.romPages) {
			return zxerrors.New(zxerrors.InvalidArgument, "ROM page index out of range: %d", index)
		}
		copy(m.romPages[index][:], data)
	default:
		return zxerrors.New(zxerrors.Internal, "unknown page kind: %d", k)
	}
	return nil
}

// ReadPage returns a copy of the given RAM or ROM page's contents, for
// use by snapshot save.
func (m *Memory) ReadPage(k Kind, index int) ([]byte, error) {
	switch k {
	case RAM:
		if index < 0 || index >= MaxRAMPages {
			return nil, zxerrors.New(zxerrors.InvalidArgument, "RAM page index out of range: %d", index)
		}
		out := make([]byte, PageSize)
		copy(out, m.ramPages[index][:])
		return out, nil
	case ROM:
		if index < 0 || index >= len(m.romPages) {
			return nil, zxerrors.New(zxerrors.InvalidArgument, "ROM page index out of range: %d", index)
		}
		out := make([]byte, PageSize)
		copy(out, m.romPages[index][:])
		return out, nil
	}
	return nil, zxerrors.New(zxerrors.Internal, "unknown page kind: %d", k)
}

// Read returns the byte at the given full 16-bit address, translated
// through the current bank mapping. Reads from the TR-DOS ROM when
// active and bank 0 is addressed.
func (m *Memory) Read(addr uint16) byte {
	bank := int(addr / PageSize)
	offset := addr % PageSize

	if bank == 0 && m.trdosActive {
		return m.trdos[offset]
	}

	mp := m.banks[bank]
	switch mp.Kind {
	case RAM:
		return m.ramPages[mp.Index][offset]
	case ROM:
		return m.romPages[mp.Index][offset]
	}
	return 0xFF
}

// Write stores a byte at the given full 16-bit address. Writes to a ROM
// page (including the TR-DOS ROM) are silently discarded, per spec §4.1.
func (m *Memory) Write(addr uint16, value byte) {
	bank := int(addr / PageSize)
	offset := addr % PageSize

	if bank == 0 && m.trdosActive {
		return
	}

	mp := m.banks[bank]
	if mp.Kind == ROM {
		return
	}
	m.ramPages[mp.Index][offset] = value
}

// ROMPageCount returns how many ROM pages this Memory was constructed
// with.
func (m *Memory) ROMPageCount() int {
	return len(m.romPages)
}
