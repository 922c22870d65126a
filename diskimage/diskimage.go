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

// Package diskimage implements the C3 component: the in-memory TR-DOS
// floppy geometry (cylinders/sides/tracks/sectors), the low-level format
// operation, and the TRD/SCL ingest codecs (spec §4.8, §6.4).
package diskimage

import "github.com/zxfleet/core/zxerrors"

const (
	// SectorSize is the TR-DOS sector payload size in bytes.
	SectorSize = 256

	// SectorsPerTrack is the fixed TR-DOS sector count per track.
	SectorsPerTrack = 16

	// Sides is the number of recording sides this codec supports; TR-DOS
	// floppies are always double-sided in this fleet.
	Sides = 2

	// MaxCylinders bounds disk geometry at the largest TR-DOS floppy
	// shape in common use (80 cylinders x 2 sides).
	MaxCylinders = 80

	// trackSize is the raw byte length of one track's sector payloads,
	// ignoring ID/CRC overhead (used for TRD file-size arithmetic).
	trackSize = SectorsPerTrack * SectorSize

	// fullCylinderSize is a whole cylinder (both sides) worth of raw
	// sector bytes, the unit TRD ingest rounds file sizes up to.
	fullCylinderSize = trackSize * Sides
)

// InterleavePattern is a permutation of logical sector numbers 1..16
// describing the physical order sectors are laid out on a track.
type InterleavePattern [SectorsPerTrack]byte

// Interleave patterns, in the same order and values as TR-DOS itself
// ships them; index 1 ("turbo", TR-DOS 5.04T) is the fleet default.
var InterleavePatterns = [3]InterleavePattern{
	{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
	{1, 9, 2, 10, 3, 11, 4, 12, 5, 13, 6, 14, 7, 15, 8, 16},
	{1, 12, 7, 2, 13, 8, 3, 14, 9, 4, 15, 10, 5, 16, 11, 6},
}

// DefaultInterleaveIndex selects the "turbo" pattern.
const DefaultInterleaveIndex = 1

// AddressMarkRecord is a sector's ID record: the physical coordinates
// the controller would read off a real floppy before it reads the data
// field, plus its own CRC.
type AddressMarkRecord struct {
	Cylinder   byte
	Head       byte
	Sector     byte
	LengthCode byte // 0x01 == 256 bytes, the only code this codec emits
	CRC        uint16
}

func (r *AddressMarkRecord) recalculateCRC() {
	r.CRC = crc16([]byte{r.Cylinder, r.Head, r.Sector, r.LengthCode})
}

// RawSectorBytes is a sector's data record: its payload plus CRC.
type RawSectorBytes struct {
	Data [SectorSize]byte
	CRC  uint16
}

func (s *RawSectorBytes) recalculateDataCRC() {
	s.CRC = crc16(s.Data[:])
}

// Track is one cylinder/side's worth of sectors, addressed by logical
// sector index (0-based, not the physical/interleaved sector number).
type Track struct {
	ids  [SectorsPerTrack]AddressMarkRecord
	data [SectorsPerTrack]RawSectorBytes
}

// applyInterleaveTable re-derives the track's sector numbering from an
// interleave pattern: logical position i on disk carries sector number
// pattern[i] in its ID record.
func (t *Track) applyInterleaveTable(pattern InterleavePattern) {
	for i := 0; i < SectorsPerTrack; i++ {
		t.ids[i].Sector = pattern[i]
	}
}

// IDRecord returns the ID record at logical sector position i (0-based).
func (t *Track) IDRecord(i int) *AddressMarkRecord { return &t.ids[i] }

// SectorBytes returns the data record at logical sector position i
// (0-based).
func (t *Track) SectorBytes(i int) *RawSectorBytes { return &t.data[i] }

// DiskImage is the full in-memory floppy: cylinders x sides tracks, each
// holding SectorsPerTrack sectors.
type DiskImage struct {
	cylinders int
	sides     int
	tracks    []Track
}

// New allocates a DiskImage of the given geometry without formatting it;
// callers should call Format before relying on ID records.
func New(cylinders, sides int) (*DiskImage, error) {
	if cylinders <= 0 || cylinders > MaxCylinders {
		return nil, zxerrors.New(zxerrors.InvalidFormat, "cylinder count %d exceeds MAX_CYLINDERS (%d)", cylinders, MaxCylinders)
	}
	if sides <= 0 || sides > Sides {
		return nil, zxerrors.New(zxerrors.InvalidArgument, "invalid side count: %d", sides)
	}
	return &DiskImage{
		cylinders: cylinders,
		sides:     sides,
		tracks:    make([]Track, cylinders*sides),
	}, nil
}

// Cylinders returns the disk's cylinder count.
func (d *DiskImage) Cylinders() int { return d.cylinders }

// Sides returns the disk's side count.
func (d *DiskImage) Sides() int { return d.sides }

// TrackForCylinderAndSide returns the track at (cylinder, side).
func (d *DiskImage) TrackForCylinderAndSide(cylinder, side int) (*Track, error) {
	if cylinder < 0 || cylinder >= d.cylinders || side < 0 || side >= d.sides {
		return nil, zxerrors.New(zxerrors.InvalidArgument, "track (%d,%d) out of range for a %dx%d disk", cylinder, side, d.cylinders, d.sides)
	}
	return &d.tracks[cylinder*d.sides+side], nil
}

// Track returns the track at the given flat track index (cylinder*sides
// + side), matching the original loader's linear track numbering.
func (d *DiskImage) Track(index int) (*Track, error) {
	if index < 0 || index >= len(d.tracks) {
		return nil, zxerrors.New(zxerrors.InvalidArgument, "track index %d out of range", index)
	}
	return &d.tracks[index], nil
}

// Format performs the low-level format described in spec §4.8: every
// track is reset to its default state, the interleave pattern is
// applied, and every sector's ID record is populated with cylinder/head/
// sector-number/length-code and a freshly-computed CRC. interleaveIndex
// out of [0,3) falls back to DefaultInterleaveIndex.
func (d *DiskImage) Format(interleaveIndex int) {
	if interleaveIndex < 0 || interleaveIndex >= len(InterleavePatterns) {
		interleaveIndex = DefaultInterleaveIndex
	}
	pattern := InterleavePatterns[interleaveIndex]

	for cylinder := 0; cylinder < d.cylinders; cylinder++ {
		for side := 0; side < d.sides; side++ {
			track := &d.tracks[cylinder*d.sides+side]
			*track = Track{}
			track.applyInterleaveTable(pattern)

			for sector := 0; sector < SectorsPerTrack; sector++ {
				id := &track.ids[sector]
				id.Cylinder = byte(cylinder)
				id.Head = 0
				id.LengthCode = 0x01
				id.recalculateCRC()
			}
		}
	}
}
