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

package instance

import (
	"strings"

	"github.com/zxfleet/core/diskimage"
	"github.com/zxfleet/core/events"
	"github.com/zxfleet/core/zxerrors"
)

// InsertDisk ingests data (TRD or SCL, chosen by filename extension) and
// mounts it in the given drive slot (0..3, drives A..D), going through
// the quiescence discipline since a running instance's TR-DOS trap may
// be mid-access.
func (in *Instance) InsertDisk(drive int, filename string, data []byte) error {
	if drive < 0 || drive >= driveCount {
		return zxerrors.New(zxerrors.InvalidArgument, "drive index out of range: %d", drive)
	}

	var disk *diskimage.DiskImage
	var err error
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".scl"):
		disk, err = diskimage.LoadSCL(data)
	case strings.HasSuffix(strings.ToLower(filename), ".trd"):
		disk, err = diskimage.LoadTRD(data, diskimage.DefaultInterleaveIndex)
	default:
		return zxerrors.New(zxerrors.InvalidArgument, "unrecognised disk image extension: %s", filename)
	}
	if err != nil {
		return err
	}

	err = in.withQuiescence(func() error {
		in.mu.Lock()
		in.drives[drive] = disk
		in.mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	in.publish(events.DiskInserted, drive)
	return nil
}

// EjectDisk removes whatever image is mounted in the given drive slot,
// if any.
func (in *Instance) EjectDisk(drive int) error {
	if drive < 0 || drive >= driveCount {
		return zxerrors.New(zxerrors.InvalidArgument, "drive index out of range: %d", drive)
	}

	err := in.withQuiescence(func() error {
		in.mu.Lock()
		in.drives[drive] = nil
		in.mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	in.publish(events.DiskEjected, drive)
	return nil
}

// Disk returns the image currently mounted in the given drive slot, or
// nil if it is empty.
func (in *Instance) Disk(drive int) (*diskimage.DiskImage, error) {
	if drive < 0 || drive >= driveCount {
		return nil, zxerrors.New(zxerrors.InvalidArgument, "drive index out of range: %d", drive)
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.drives[drive], nil
}
