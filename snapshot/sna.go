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

package snapshot

import (
	"github.com/zxfleet/core/config"
	"github.com/zxfleet/core/cpufacade"
	"github.com/zxfleet/core/memory"
	"github.com/zxfleet/core/port"
	"github.com/zxfleet/core/zxerrors"
)

const (
	sna48HeaderSize  = 27
	sna48TotalSize   = 49179
	sna128TotalSize  = 131103
	sna128PageCount  = 8
)

// ParseSNA parses a classic SNA file into a StagedSnapshot. SNA48
// (exactly sna48TotalSize bytes) and SNA128 (exactly sna128TotalSize
// bytes) are the only two recognised lengths; anything else is rejected
// as InvalidFormat before a single byte of machine state is touched
// (spec §4.2).
func ParseSNA(data []byte) (StagedSnapshot, error) {
	switch len(data) {
	case sna48TotalSize:
		return parseSNA48(data)
	case sna128TotalSize:
		return parseSNA128(data)
	default:
		return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "SNA file is %d bytes, expected %d (48K) or %d (128K)", len(data), sna48TotalSize, sna128TotalSize)
	}
}

func parseSNA48(data []byte) (StagedSnapshot, error) {
	h := data[:sna48HeaderSize]

	var regs cpufacade.Registers
	regs.I = h[0]
	regs.SetHL1(le16(h[1], h[2]))
	regs.SetDE1(le16(h[3], h[4]))
	regs.SetBC1(le16(h[5], h[6]))
	regs.SetAF1(le16(h[7], h[8]))
	regs.SetHL(le16(h[9], h[10]))
	regs.SetDE(le16(h[11], h[12]))
	regs.SetBC(le16(h[13], h[14]))
	regs.IY = le16(h[15], h[16])
	regs.IX = le16(h[17], h[18])
	iff := h[19]
	regs.IFF1 = iff&0x04 != 0
	regs.IFF2 = regs.IFF1
	regs.R = h[20]
	regs.SetAF(le16(h[21], h[22]))
	regs.SP = le16(h[23], h[24])
	regs.IM = h[25]
	border := h[26]

	staged := NewStaged(SNA48, config.Spectrum48K)
	staged.Registers = regs
	staged.Border = border & 0x07
	staged.Port7FFD = port.SyntheticROM1Value()
	staged.PCFromStack = true

	body := data[sna48HeaderSize:]
	if len(body) != 3*memory.PageSize {
		return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "SNA48 body is %d bytes, expected %d", len(body), 3*memory.PageSize)
	}
	staged.Pages[PageKey{Kind: memory.RAM, Index: 5}] = clonePage(body[0*memory.PageSize : 1*memory.PageSize])
	staged.Pages[PageKey{Kind: memory.RAM, Index: 2}] = clonePage(body[1*memory.PageSize : 2*memory.PageSize])
	staged.Pages[PageKey{Kind: memory.RAM, Index: 0}] = clonePage(body[2*memory.PageSize : 3*memory.PageSize])

	return staged, nil
}

// parseSNA128 extends the 48K layout with the 128K header trailer and the
// remaining five RAM pages. The on-disk body always places the three
// pages that correspond to the live 48K address space (banks 1/2/3)
// first, in the same order as SNA48, followed by the other five pages in
// ascending page-index order. The page occupying bank 3 is stored only
// once, in the initial three: the trailing five are the pages other than
// 5, 2 and the bank-3 page named by the header's port-7FFD byte
// (spec §4.2).
func parseSNA128(data []byte) (StagedSnapshot, error) {
	base, err := parseSNA48(data[:sna48HeaderSize+3*memory.PageSize])
	if err != nil {
		return StagedSnapshot{}, err
	}
	base.Mode = SNA128
	base.Model = config.Spectrum128K
	base.PCFromStack = false

	trailer := data[sna48HeaderSize+3*memory.PageSize:]
	if len(trailer) != 4 {
		return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "SNA128 trailer is %d bytes, expected 4", len(trailer))
	}
	base.PC = le16(trailer[0], trailer[1])
	port7FFD := trailer[2]
	trdosByte := trailer[3]
	base.Port7FFD = port7FFD
	base.TRDOSActive = trdosByte != 0

	bank3Page := int(port7FFD & 0x07)

	remaining := data[sna48HeaderSize+3*memory.PageSize+4:]
	wantRemaining := (sna128PageCount - 3) * memory.PageSize
	if len(remaining) != wantRemaining {
		return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "SNA128 extra pages block is %d bytes, expected %d", len(remaining), wantRemaining)
	}

	// The page occupying bank 3 was staged at index 0 by parseSNA48 above
	// (the "initial three pages" always land at RAM 5/2/0). When the true
	// bank-3 page isn't actually page 0, that placeholder must be moved to
	// its real index before index 0 is reassigned below, since index 0
	// may itself be one of the distinct trailing pages.
	bank3Data := base.Pages[PageKey{Kind: memory.RAM, Index: 0}]

	staged := []int{}
	for i := 0; i < sna128PageCount; i++ {
		if i == 5 || i == 2 || i == bank3Page {
			continue
		}
		staged = append(staged, i)
	}
	if len(staged) != len(remaining)/memory.PageSize {
		return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "SNA128 page count mismatch: computed %d slots for %d pages", len(staged), len(remaining)/memory.PageSize)
	}
	for i, pageIdx := range staged {
		block := remaining[i*memory.PageSize : (i+1)*memory.PageSize]
		base.Pages[PageKey{Kind: memory.RAM, Index: pageIdx}] = clonePage(block)
	}

	if bank3Page != 0 {
		base.Pages[PageKey{Kind: memory.RAM, Index: bank3Page}] = bank3Data
	}

	return base, nil
}

// SaveSNA48 serialises the current live machine state (registers, border,
// and RAM pages 5/2/(whatever sits in bank 3)) into a classic 48K SNA
// image. SNA has no room for a PC field in its header; by convention a
// save pushes PC onto the stack first and stores the resulting
// (decremented) SP, so that loading it back pops PC off naturally
// (mirrored by parseSNA48's PCFromStack staging).
func SaveSNA48(mem *memory.Memory, regs cpufacade.Registers, border byte) ([]byte, error) {
	sp := regs.SP - 2
	mem.Write(sp, byte(regs.PC))
	mem.Write(sp+1, byte(regs.PC>>8))

	out := make([]byte, 0, sna48TotalSize)
	out = append(out, regs.I)
	out = append(out, le16Bytes(regs.HL1())...)
	out = append(out, le16Bytes(regs.DE1())...)
	out = append(out, le16Bytes(regs.BC1())...)
	out = append(out, le16Bytes(regs.AF1())...)
	out = append(out, le16Bytes(regs.HL())...)
	out = append(out, le16Bytes(regs.DE())...)
	out = append(out, le16Bytes(regs.BC())...)
	out = append(out, le16Bytes(regs.IY)...)
	out = append(out, le16Bytes(regs.IX)...)
	iff := byte(0)
	if regs.IFF1 {
		iff = 0x04
	}
	out = append(out, iff)
	out = append(out, regs.R)
	out = append(out, le16Bytes(regs.AF())...)
	out = append(out, le16Bytes(sp)...)
	out = append(out, regs.IM)
	out = append(out, border&0x07)

	page5, err := mem.ReadPage(memory.RAM, 5)
	if err != nil {
		return nil, err
	}
	page2, err := mem.ReadPage(memory.RAM, 2)
	if err != nil {
		return nil, err
	}
	mp, err := mem.BankMapping(3)
	if err != nil {
		return nil, err
	}
	page3, err := mem.ReadPage(mp.Kind, mp.Index)
	if err != nil {
		return nil, err
	}

	out = append(out, page5...)
	out = append(out, page2...)
	out = append(out, page3...)

	if len(out) != sna48TotalSize {
		return nil, zxerrors.New(zxerrors.Internal, "assembled SNA48 image is %d bytes, expected %d", len(out), sna48TotalSize)
	}
	return out, nil
}

// SaveSNA128 serialises live 128K-class machine state into an SNA128
// image: the same 27-byte header as SaveSNA48 (registers, border) but
// without the stack-push trick, followed by the three banks-1/2/3 pages,
// the 4-byte extended trailer (PC, port-7FFD image, TR-DOS flag), and
// finally whichever of the remaining five RAM pages are not already
// covered by the initial three (spec §4.2).
func SaveSNA128(mem *memory.Memory, dec *port.Decoder, regs cpufacade.Registers, border byte) ([]byte, error) {
	out := make([]byte, 0, sna128TotalSize)
	out = append(out, regs.I)
	out = append(out, le16Bytes(regs.HL1())...)
	out = append(out, le16Bytes(regs.DE1())...)
	out = append(out, le16Bytes(regs.BC1())...)
	out = append(out, le16Bytes(regs.AF1())...)
	out = append(out, le16Bytes(regs.HL())...)
	out = append(out, le16Bytes(regs.DE())...)
	out = append(out, le16Bytes(regs.BC())...)
	out = append(out, le16Bytes(regs.IY)...)
	out = append(out, le16Bytes(regs.IX)...)
	iff := byte(0)
	if regs.IFF1 {
		iff = 0x04
	}
	out = append(out, iff)
	out = append(out, regs.R)
	out = append(out, le16Bytes(regs.AF())...)
	out = append(out, le16Bytes(regs.SP)...)
	out = append(out, regs.IM)
	out = append(out, border&0x07)

	page5, err := mem.ReadPage(memory.RAM, 5)
	if err != nil {
		return nil, err
	}
	page2, err := mem.ReadPage(memory.RAM, 2)
	if err != nil {
		return nil, err
	}
	bank3, err := mem.BankMapping(3)
	if err != nil {
		return nil, err
	}
	bank3Page, err := mem.ReadPage(bank3.Kind, bank3.Index)
	if err != nil {
		return nil, err
	}

	out = append(out, page5...)
	out = append(out, page2...)
	out = append(out, bank3Page...)

	out = append(out, le16Bytes(regs.PC)...)
	port7FFD := dec.Last()
	out = append(out, port7FFD)
	trdos := byte(0)
	if mem.TRDOSActive() {
		trdos = 1
	}
	out = append(out, trdos)

	for i := 0; i < sna128PageCount; i++ {
		if i == 5 || i == 2 || i == bank3.Index {
			continue
		}
		data, err := mem.ReadPage(memory.RAM, i)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}

	if len(out) != sna128TotalSize {
		return nil, zxerrors.New(zxerrors.Internal, "assembled SNA128 image is %d bytes, expected %d", len(out), sna128TotalSize)
	}
	return out, nil
}

func le16(lo, hi byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

func le16Bytes(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

func clonePage(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)
	return out
}
