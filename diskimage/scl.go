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

package diskimage

import (
	"hash/crc32"

	"github.com/zxfleet/core/zxerrors"
)

// sclSignature is the fixed 8-byte magic every SCL file begins with.
const sclSignature = "SINCLAIR"

// sclCatalogEntrySize is the size in bytes of the reduced on-disk
// catalog entry SCL carries (no start sector/track, unlike a real TR-DOS
// directory entry).
const sclCatalogEntrySize = 14

// sclTrailerSize is the 4-byte CRC-32 trailer every SCL file ends with.
const sclTrailerSize = 4

// reservedCatalogSectors is the whole of track 0, set aside for the
// TR-DOS directory regardless of how many files it actually holds.
const reservedCatalogSectors = SectorsPerTrack

// sclCatalogEntry is one parsed SCL directory entry.
type sclCatalogEntry struct {
	name          [8]byte
	fileType      byte
	start         uint16
	lengthBytes   uint16
	sizeInSectors byte
}

// LoadSCL ingests an SCL archive (spec §4.8, §6.4): validates the
// signature, reads the reduced catalog, verifies the trailer CRC-32
// covers everything preceding it, checks the total payload fits in the
// 80-cylinder double-sided geometry minus the reserved track-0 catalog
// sectors, then formats a fresh 80x2 image and appends each file's
// payload sequentially from sector 16 onward.
func LoadSCL(data []byte) (*DiskImage, error) {
	const headerSize = len(sclSignature) + 1
	if len(data) < headerSize+sclTrailerSize {
		return nil, zxerrors.New(zxerrors.InvalidFormat, "SCL file is too short to contain a header and trailer")
	}
	if string(data[:8]) != sclSignature {
		return nil, zxerrors.New(zxerrors.InvalidFormat, "SCL signature mismatch")
	}
	fileCount := int(data[8])

	catalogEnd := headerSize + fileCount*sclCatalogEntrySize
	if catalogEnd+sclTrailerSize > len(data) {
		return nil, zxerrors.New(zxerrors.InvalidFormat, "SCL catalog declares %d files but the file is too short", fileCount)
	}

	entries := make([]sclCatalogEntry, fileCount)
	for i := 0; i < fileCount; i++ {
		raw := data[headerSize+i*sclCatalogEntrySize : headerSize+(i+1)*sclCatalogEntrySize]
		var e sclCatalogEntry
		copy(e.name[:], raw[0:8])
		e.fileType = raw[8]
		e.start = uint16(raw[9]) | uint16(raw[10])<<8
		e.lengthBytes = uint16(raw[11]) | uint16(raw[12])<<8
		e.sizeInSectors = raw[13]
		entries[i] = e
	}

	payload := data[catalogEnd : len(data)-sclTrailerSize]
	trailer := data[len(data)-sclTrailerSize:]
	wantCRC := uint32(trailer[0]) | uint32(trailer[1])<<8 | uint32(trailer[2])<<16 | uint32(trailer[3])<<24
	gotCRC := crc32.ChecksumIEEE(data[:len(data)-sclTrailerSize])
	if gotCRC != wantCRC {
		return nil, zxerrors.New(zxerrors.InvalidFormat, "SCL trailer CRC mismatch: file declares %#x, computed %#x", wantCRC, gotCRC)
	}

	totalSectors := 0
	for _, e := range entries {
		totalSectors += int(e.sizeInSectors)
	}
	maxDataSectors := MaxCylinders*Sides*SectorsPerTrack - reservedCatalogSectors
	if totalSectors > maxDataSectors {
		return nil, zxerrors.New(zxerrors.InvalidFormat, "SCL payload needs %d sectors, exceeds the %d available after the catalog track", totalSectors, maxDataSectors)
	}

	disk, err := New(MaxCylinders, Sides)
	if err != nil {
		return nil, err
	}
	disk.Format(DefaultInterleaveIndex)

	offset := 0
	nextSector := reservedCatalogSectors // absolute sector index; catalog occupies 0..15
	for _, e := range entries {
		need := int(e.sizeInSectors) * SectorSize
		if offset+need > len(payload) {
			return nil, zxerrors.New(zxerrors.InvalidFormat, "SCL payload shorter than the catalog declares")
		}
		for s := 0; s < int(e.sizeInSectors); s++ {
			trackNo := nextSector / SectorsPerTrack
			sectorIdx := nextSector % SectorsPerTrack
			track, err := disk.Track(trackNo)
			if err != nil {
				return nil, zxerrors.New(zxerrors.InvalidFormat, "SCL payload overruns disk geometry")
			}
			sb := track.SectorBytes(sectorIdx)
			copy(sb.Data[:], payload[offset:offset+SectorSize])
			sb.recalculateDataCRC()
			offset += SectorSize
			nextSector++
		}
	}

	return disk, nil
}
