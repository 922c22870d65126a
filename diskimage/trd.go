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

import "github.com/zxfleet/core/zxerrors"

// LoadTRD ingests a raw CHS dump (spec §4.8, §6.4): the cylinder count is
// derived from the file size (rounding up for a partially-filled
// trailing cylinder), the image is low-level formatted first since TRD
// carries no gap/sync information of its own, and every 256-byte sector
// payload is copied from its file offset into the freshly-formatted
// image, with the data CRC recomputed per sector. Short files (a
// tail-truncated trailing cylinder) are permitted; the emitted image is
// always full-sized for the cylinder count computed from the file.
func LoadTRD(data []byte, interleaveIndex int) (*DiskImage, error) {
	if len(data) == 0 {
		return nil, zxerrors.New(zxerrors.InvalidFormat, "TRD file is empty")
	}

	cylinders := len(data) / fullCylinderSize
	if len(data)%fullCylinderSize != 0 {
		cylinders++
	}
	if cylinders > MaxCylinders {
		return nil, zxerrors.New(zxerrors.InvalidFormat, "TRD image implies %d cylinders, exceeds MAX_CYLINDERS (%d)", cylinders, MaxCylinders)
	}

	disk, err := New(cylinders, Sides)
	if err != nil {
		return nil, err
	}
	disk.Format(interleaveIndex)

	tracks := cylinders * Sides
	for trackNo := 0; trackNo < tracks; trackNo++ {
		track, err := disk.Track(trackNo)
		if err != nil {
			return nil, err
		}
		for sector := 0; sector < SectorsPerTrack; sector++ {
			offset := trackNo*trackSize + sector*SectorSize
			sb := track.SectorBytes(sector)
			if offset >= len(data) {
				// Tail-truncated trailing cylinder: leave the rest of the
				// sectors as the zero-filled payload Format left them with.
				sb.recalculateDataCRC()
				continue
			}
			end := offset + SectorSize
			if end > len(data) {
				end = len(data)
			}
			copy(sb.Data[:], data[offset:end])
			sb.recalculateDataCRC()
		}
	}

	return disk, nil
}
