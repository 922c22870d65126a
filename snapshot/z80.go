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
	z80V1HeaderSize = 30

	// z80ExtLengthV2 (23) and the two v3 lengths z80ExtLengthV3a (54) and
	// z80ExtLengthV3b (55) are the only three legal values of the
	// extended-header length field; any other value makes the file
	// unparseable (spec §4.3).
	z80ExtLengthV2   = 23
	z80ExtLengthV3a  = 54
	z80ExtLengthV3b  = 55
)

// z80Page48K maps a Z80 page id to its 48K-model storage slot. Page ids 4,
// 5 and 8 are the only ones a 48K file ever carries.
var z80Page48K = map[byte]PageKey{
	4: {Kind: memory.RAM, Index: 2},
	5: {Kind: memory.RAM, Index: 0},
	8: {Kind: memory.RAM, Index: 5},
}

// z80Page128K maps a Z80 page id to its 128K-model RAM page index. Page
// id 0 (ROM) is handled separately since this module does not take
// ownership of variable ROM content beyond the fixed per-model ROM set
// already loaded at instance construction.
var z80Page128K = map[byte]int{
	3: 0,
	4: 1,
	5: 2,
	6: 3,
	7: 4,
	8: 5,
	9: 6,
	10: 7,
}

// ParseZ80 parses a Z80 snapshot (v1, v2 or v3) into a StagedSnapshot.
// The version and the exact page layout are determined entirely from the
// header fields, per the classic Z80 format's self-describing structure
// (spec §4.3):
//
//   - PC at header offset 6 is the version discriminator: zero means an
//     extended header follows (v2/v3); nonzero means a v1 file with a
//     single, possibly-RLE-compressed, 48K memory dump appended.
//   - the extended header's own length field (2 bytes, little-endian,
//     immediately after the 30-byte v1 header) then distinguishes v2
//     (23) from the two v3 variants (54, 55).
func ParseZ80(data []byte) (StagedSnapshot, error) {
	if len(data) < z80V1HeaderSize {
		return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "Z80 file is %d bytes, shorter than the %d byte v1 header", len(data), z80V1HeaderSize)
	}
	h := data[:z80V1HeaderSize]

	var regs cpufacade.Registers
	regs.A, regs.F = h[0], h[1]
	regs.SetBC(le16(h[2], h[3]))
	regs.SetHL(le16(h[4], h[5]))
	pcField := le16(h[6], h[7])
	regs.SP = le16(h[8], h[9])
	regs.I = h[10]
	rLow := h[11]
	flags1 := h[12]
	if flags1 == 0xFF {
		flags1 = 1
	}
	regs.R = (rLow & 0x7F) | (flags1&0x01)<<7
	border := (flags1 >> 1) & 0x07
	regs.SetDE(le16(h[13], h[14]))
	regs.SetBC1(le16(h[15], h[16]))
	regs.SetDE1(le16(h[17], h[18]))
	regs.SetHL1(le16(h[19], h[20]))
	regs.A1 = h[21]
	regs.F1 = h[22]
	regs.IY = le16(h[23], h[24])
	regs.IX = le16(h[25], h[26])
	regs.IFF1 = h[27] != 0
	regs.IFF2 = h[28] != 0
	regs.IM = h[29] & 0x03

	if pcField != 0 {
		return parseZ80V1(data, regs, border, pcField)
	}
	return parseZ80Extended(data, regs, border)
}

func parseZ80V1(data []byte, regs cpufacade.Registers, border byte, pc uint16) (StagedSnapshot, error) {
	regs.PC = pc

	staged := NewStaged(Z80v1, config.Spectrum48K)
	staged.Registers = regs
	staged.Border = border
	staged.Port7FFD = port.SyntheticROM1Value()

	body := data[z80V1HeaderSize:]
	// Bit 5 of byte 12 (already folded into border's sibling flags byte
	// above) marks the single 48K dump as RLE-compressed; v1 files with
	// an uncompressed dump carry exactly 48 KiB of body.
	compressed := data[12]&0x20 != 0
	if compressed {
		// The classic v1 end marker "00 ED ED 00" terminates the stream;
		// strip it before decompressing if present.
		if len(body) >= 4 && body[len(body)-4] == 0 && body[len(body)-3] == escapeByte && body[len(body)-2] == escapeByte && body[len(body)-1] == 0 {
			body = body[:len(body)-4]
		}
		flat, err := Decompress(body, 3*memory.PageSize)
		if err != nil {
			return StagedSnapshot{}, err
		}
		body = flat
	} else if len(body) != 3*memory.PageSize {
		return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "uncompressed Z80v1 body is %d bytes, expected %d", len(body), 3*memory.PageSize)
	}

	staged.Pages[PageKey{Kind: memory.RAM, Index: 0}] = clonePage(body[0*memory.PageSize : 1*memory.PageSize])
	staged.Pages[PageKey{Kind: memory.RAM, Index: 2}] = clonePage(body[1*memory.PageSize : 2*memory.PageSize])
	staged.Pages[PageKey{Kind: memory.RAM, Index: 5}] = clonePage(body[2*memory.PageSize : 3*memory.PageSize])

	return staged, nil
}

func parseZ80Extended(data []byte, regs cpufacade.Registers, border byte) (StagedSnapshot, error) {
	rest := data[z80V1HeaderSize:]
	if len(rest) < 2 {
		return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "Z80 extended header is missing its length field")
	}
	extLen := int(le16(rest[0], rest[1]))

	var mode Mode
	switch extLen {
	case z80ExtLengthV2:
		mode = Z80v2
	case z80ExtLengthV3a, z80ExtLengthV3b:
		mode = Z80v3
	default:
		return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "Z80 extended header length %d is not a recognised value (23, 54 or 55)", extLen)
	}

	if len(rest) < 2+extLen {
		return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "Z80 file truncated: extended header declares %d bytes but only %d remain", extLen, len(rest)-2)
	}
	ext := rest[2 : 2+extLen]

	regs.PC = le16(ext[0], ext[1])
	hwMode := ext[2]

	model := config.Spectrum48K
	is48K := hwMode == 0 || hwMode == 1 || (mode == Z80v2 && hwMode <= 1) || (mode == Z80v3 && hwMode <= 3)
	if !is48K {
		model = config.Spectrum128K
	}

	staged := NewStaged(mode, model)
	staged.Registers = regs
	staged.Border = border

	if model == config.Spectrum128K {
		port7FFD := byte(0)
		if extLen >= 4 {
			port7FFD = ext[3]
		}
		staged.Port7FFD = port7FFD
	} else {
		staged.Port7FFD = port.SyntheticROM1Value()
	}

	pageBlocks := rest[2+extLen:]
	for len(pageBlocks) > 0 {
		if len(pageBlocks) < 3 {
			return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "truncated Z80 page block header")
		}
		blockLen := int(le16(pageBlocks[0], pageBlocks[1]))
		pageID := pageBlocks[2]
		pageBlocks = pageBlocks[3:]

		var raw []byte
		if blockLen == 0xFFFF {
			if len(pageBlocks) < memory.PageSize {
				return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "Z80 uncompressed page block shorter than %d bytes", memory.PageSize)
			}
			raw = clonePage(pageBlocks[:memory.PageSize])
			pageBlocks = pageBlocks[memory.PageSize:]
		} else {
			if len(pageBlocks) < blockLen {
				return StagedSnapshot{}, zxerrors.New(zxerrors.InvalidFormat, "Z80 page block declares %d bytes but only %d remain", blockLen, len(pageBlocks))
			}
			flat, err := Decompress(pageBlocks[:blockLen], memory.PageSize)
			if err != nil {
				return StagedSnapshot{}, err
			}
			raw = flat
			pageBlocks = pageBlocks[blockLen:]
		}

		key, ok := z80PageKey(model, pageID)
		if !ok {
			// Page id 0 (ROM) and ids outside the model's RAM set are
			// skipped: this module does not persist ROM content across
			// snapshots, and an id the model profile doesn't expect is
			// silently ignored rather than rejected, matching the format's
			// long history of emulator-specific extra page ids.
			continue
		}
		staged.Pages[key] = raw
	}

	return staged, nil
}

// SaveZ80 serialises live machine state into a v3 Z80 image (the 55-byte
// extended header variant): the 30-byte v1 header, the extended header
// carrying new_PC/hardware model/port-7FFD/AY state, and one compressed
// memory block per populated RAM page. Compression is attempted
// page-by-page; a page whose compressed form would be no smaller than
// the raw 16 KiB is instead written raw behind the 0xFFFF sentinel
// (spec §4.3).
func SaveZ80(mem *memory.Memory, dec *port.Decoder, peripherals cpufacade.Peripherals, model config.Model, regs cpufacade.Registers, border byte) ([]byte, error) {
	h := make([]byte, z80V1HeaderSize)
	af := regs.AF()
	h[0], h[1] = byte(af>>8), byte(af)
	bc := regs.BC()
	h[2], h[3] = byte(bc), byte(bc>>8)
	hl := regs.HL()
	h[4], h[5] = byte(hl), byte(hl>>8)
	h[6], h[7] = 0, 0 // PC field zero marks an extended-header file
	h[8], h[9] = byte(regs.SP), byte(regs.SP>>8)
	h[10] = regs.I
	h[11] = regs.R & 0x7F
	flags1 := (border&0x07)<<1 | (regs.R>>7)&0x01
	h[12] = flags1
	de := regs.DE()
	h[13], h[14] = byte(de), byte(de>>8)
	bc1 := regs.BC1()
	h[15], h[16] = byte(bc1), byte(bc1>>8)
	de1 := regs.DE1()
	h[17], h[18] = byte(de1), byte(de1>>8)
	hl1 := regs.HL1()
	h[19], h[20] = byte(hl1), byte(hl1>>8)
	h[21] = regs.A1
	h[22] = regs.F1
	h[23], h[24] = byte(regs.IY), byte(regs.IY>>8)
	h[25], h[26] = byte(regs.IX), byte(regs.IX>>8)
	if regs.IFF1 {
		h[27] = 1
	}
	if regs.IFF2 {
		h[28] = 1
	}
	h[29] = regs.IM & 0x03

	ext := make([]byte, z80ExtLengthV3b)
	ext[0], ext[1] = byte(regs.PC), byte(regs.PC>>8)
	is128K := config.Is128KPaging(model)
	if is128K {
		ext[2] = 4
		ext[3] = dec.Last()
	} else {
		ext[2] = 0
	}
	if config.HasAY(model) {
		ay := peripherals.AYRegisters(0)
		ext[6] = peripherals.AYLatch()
		copy(ext[7:23], ay[:])
	}

	out := make([]byte, 0, len(h)+2+len(ext)+16*memory.PageSize)
	out = append(out, h...)
	out = append(out, byte(len(ext)), byte(len(ext)>>8))
	out = append(out, ext...)

	var pages []PageKey
	if is128K {
		for i := 0; i < memory.MaxRAMPages; i++ {
			pages = append(pages, PageKey{Kind: memory.RAM, Index: i})
		}
	} else {
		pages = []PageKey{
			{Kind: memory.RAM, Index: 2},
			{Kind: memory.RAM, Index: 0},
			{Kind: memory.RAM, Index: 5},
		}
	}

	idByKey := invertPageMap(is128K)
	for _, key := range pages {
		raw, err := mem.ReadPage(key.Kind, key.Index)
		if err != nil {
			return nil, err
		}
		compressed := Compress(raw)
		var block []byte
		if len(compressed) >= memory.PageSize {
			block = append([]byte{0xFF, 0xFF}, raw...)
		} else {
			lenBytes := []byte{byte(len(compressed)), byte(len(compressed) >> 8)}
			block = append(lenBytes, compressed...)
		}
		out = append(out, block[0], block[1], idByKey[key])
		out = append(out, block[2:]...)
	}

	return out, nil
}

func invertPageMap(is128K bool) map[PageKey]byte {
	out := make(map[PageKey]byte)
	if is128K {
		for id, idx := range z80Page128K {
			out[PageKey{Kind: memory.RAM, Index: idx}] = id
		}
		return out
	}
	for id, key := range z80Page48K {
		out[key] = id
	}
	return out
}

func z80PageKey(model config.Model, pageID byte) (PageKey, bool) {
	if model == config.Spectrum48K {
		k, ok := z80Page48K[pageID]
		return k, ok
	}
	idx, ok := z80Page128K[pageID]
	if !ok {
		return PageKey{}, false
	}
	return PageKey{Kind: memory.RAM, Index: idx}, true
}
