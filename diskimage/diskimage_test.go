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

package diskimage_test

import (
	"bytes"
	"hash/crc32"
	"testing"

	"github.com/zxfleet/core/diskimage"
	"github.com/zxfleet/core/zxerrors"
)

func TestFormatAppliesTurboInterleaveByDefault(t *testing.T) {
	disk, err := diskimage.New(40, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	disk.Format(diskimage.DefaultInterleaveIndex)

	track, err := disk.TrackForCylinderAndSide(0, 0)
	if err != nil {
		t.Fatalf("TrackForCylinderAndSide: %v", err)
	}
	want := diskimage.InterleavePatterns[diskimage.DefaultInterleaveIndex]
	for i := 0; i < diskimage.SectorsPerTrack; i++ {
		id := track.IDRecord(i)
		if id.Sector != want[i] {
			t.Errorf("sector %d has ID.Sector = %d, want %d", i, id.Sector, want[i])
		}
		if id.LengthCode != 0x01 {
			t.Errorf("sector %d LengthCode = %#x, want 0x01", i, id.LengthCode)
		}
	}
}

func TestLoadTRDRoundTripsSectorPayload(t *testing.T) {
	cylinders := 2
	data := make([]byte, cylinders*diskimage.SectorsPerTrack*diskimage.SectorSize*diskimage.Sides)
	for i := range data {
		data[i] = byte(i)
	}

	disk, err := diskimage.LoadTRD(data, diskimage.DefaultInterleaveIndex)
	if err != nil {
		t.Fatalf("LoadTRD: %v", err)
	}
	if disk.Cylinders() != cylinders {
		t.Fatalf("Cylinders() = %d, want %d", disk.Cylinders(), cylinders)
	}

	track, err := disk.Track(0)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	sb := track.SectorBytes(0)
	if !bytes.Equal(sb.Data[:], data[:diskimage.SectorSize]) {
		t.Fatal("sector 0 payload mismatch")
	}
}

func TestLoadTRDRejectsOversizedImage(t *testing.T) {
	oversized := make([]byte, (diskimage.MaxCylinders+1)*diskimage.SectorsPerTrack*diskimage.SectorSize*diskimage.Sides)
	_, err := diskimage.LoadTRD(oversized, diskimage.DefaultInterleaveIndex)
	if zxerrors.KindOf(err) != zxerrors.InvalidFormat {
		t.Fatalf("KindOf = %v, want InvalidFormat", zxerrors.KindOf(err))
	}
}

func TestLoadTRDRejectsEmptyFile(t *testing.T) {
	_, err := diskimage.LoadTRD(nil, diskimage.DefaultInterleaveIndex)
	if zxerrors.KindOf(err) != zxerrors.InvalidFormat {
		t.Fatalf("KindOf = %v, want InvalidFormat", zxerrors.KindOf(err))
	}
}

func buildSCL(t *testing.T, fileBytes []byte, sizeInSectors byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("SINCLAIR")
	buf.WriteByte(1)

	entry := make([]byte, 14)
	copy(entry[0:8], "GAME    ")
	entry[8] = 'C'
	entry[9], entry[10] = 0x00, 0x80
	entry[11], entry[12] = byte(len(fileBytes)), byte(len(fileBytes)>>8)
	entry[13] = sizeInSectors
	buf.Write(entry)

	buf.Write(fileBytes)

	crc := crc32.ChecksumIEEE(buf.Bytes())
	trailer := []byte{byte(crc), byte(crc >> 8), byte(crc >> 16), byte(crc >> 24)}
	buf.Write(trailer)

	return buf.Bytes()
}

func TestLoadSCLValidFile(t *testing.T) {
	payload := make([]byte, diskimage.SectorSize*2)
	for i := range payload {
		payload[i] = byte(i)
	}
	data := buildSCL(t, payload, 2)

	disk, err := diskimage.LoadSCL(data)
	if err != nil {
		t.Fatalf("LoadSCL: %v", err)
	}
	if disk.Cylinders() != diskimage.MaxCylinders {
		t.Fatalf("Cylinders() = %d, want %d", disk.Cylinders(), diskimage.MaxCylinders)
	}

	// file payload starts at absolute sector 16 == track 1, sector 0.
	track, err := disk.Track(1)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	sb := track.SectorBytes(0)
	if !bytes.Equal(sb.Data[:], payload[:diskimage.SectorSize]) {
		t.Fatal("first payload sector mismatch")
	}
}

func TestLoadSCLRejectsBadSignature(t *testing.T) {
	data := buildSCL(t, make([]byte, diskimage.SectorSize), 1)
	data[0] = 'X'
	// corrupting the signature also invalidates the trailer CRC, but the
	// signature check must fail first and report InvalidFormat either way.
	_, err := diskimage.LoadSCL(data)
	if zxerrors.KindOf(err) != zxerrors.InvalidFormat {
		t.Fatalf("KindOf = %v, want InvalidFormat", zxerrors.KindOf(err))
	}
}

func TestLoadSCLRejectsBadTrailerCRC(t *testing.T) {
	data := buildSCL(t, make([]byte, diskimage.SectorSize), 1)
	data[len(data)-1] ^= 0xFF
	_, err := diskimage.LoadSCL(data)
	if zxerrors.KindOf(err) != zxerrors.InvalidFormat {
		t.Fatalf("KindOf = %v, want InvalidFormat", zxerrors.KindOf(err))
	}
}

func TestLoadSCLRejectsTruncatedFile(t *testing.T) {
	_, err := diskimage.LoadSCL([]byte("SINCLAIR"))
	if zxerrors.KindOf(err) != zxerrors.InvalidFormat {
		t.Fatalf("KindOf = %v, want InvalidFormat", zxerrors.KindOf(err))
	}
}
