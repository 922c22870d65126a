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
	"github.com/zxfleet/core/events"
	"github.com/zxfleet/core/snapshot"
	"github.com/zxfleet/core/zxerrors"
)

// LoadSnapshot parses data as an SNA or Z80 image and, once every page
// stages successfully, applies it to the instance's live memory, port
// decoder and CPU through the quiescence discipline. A debug-paused
// instance rejects the load outright (spec §9 Open Question
// resolution): batch-driven snapshot loads must not race a live
// debugger session.
func (in *Instance) LoadSnapshot(data []byte) error {
	if in.DebugPaused() {
		return zxerrors.New(zxerrors.InvalidState, "instance %s is debug-paused", in.ID)
	}

	staged, err := parseSnapshot(data)
	if err != nil {
		return err
	}

	err = in.withQuiescence(func() error {
		return snapshot.Apply(in.mem, in.dec, in.cpu, staged)
	})
	if err != nil {
		return err
	}

	in.publish(events.SnapshotLoaded, staged.Mode.String())
	return nil
}

// SaveSnapshot serialises the instance's current live state into the
// given format. mode must be one of SNA48, SNA128, Z80v2 or Z80v3 (Z80v1
// is a load-only legacy format: spec §4.3 only requires save support for
// the extended-header variants). Z80v2 and Z80v3 both produce a v3 file
// with the 55-byte extended header.
func (in *Instance) SaveSnapshot(mode snapshot.Mode) ([]byte, error) {
	var out []byte
	err := in.withQuiescence(func() error {
		var saveErr error
		regs := in.cpu.Registers()
		border := in.peripherals.BorderColour()

		switch mode {
		case snapshot.SNA48:
			out, saveErr = snapshot.SaveSNA48(in.mem, regs, border)
		case snapshot.SNA128:
			out, saveErr = snapshot.SaveSNA128(in.mem, in.dec, regs, border)
		case snapshot.Z80v2, snapshot.Z80v3:
			out, saveErr = snapshot.SaveZ80(in.mem, in.dec, in.peripherals, in.Model, regs, border)
		default:
			saveErr = zxerrors.New(zxerrors.InvalidArgument, "unsupported snapshot save mode: %s", mode)
		}
		return saveErr
	})
	if err != nil {
		return nil, err
	}

	in.publish(events.SnapshotSaved, mode.String())
	return out, nil
}

func parseSnapshot(data []byte) (snapshot.StagedSnapshot, error) {
	// SNA files are a fixed size (49179 or 131103 bytes); anything else is
	// attempted as Z80, whose header carries its own format discriminant.
	if len(data) == 49179 || len(data) == 131103 {
		return snapshot.ParseSNA(data)
	}
	return snapshot.ParseZ80(data)
}
