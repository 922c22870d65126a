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

package webapi

import (
	"github.com/zxfleet/core/batch"
	"github.com/zxfleet/core/config"
	"github.com/zxfleet/core/fileload"
	"github.com/zxfleet/core/manager"
	"github.com/zxfleet/core/zxerrors"
)

// DefaultExecutor implements batch.Executor for every command in the
// whitelist (spec §4.6), resolving the target instance through mgr and
// performing the same operation the single-instance REST endpoints do.
func DefaultExecutor(mgr *manager.Manager, cmd batch.Command) error {
	if cmd.Name == "create" {
		model, err := config.ParseModel(cmd.Arg1)
		if err != nil {
			return err
		}
		_, err = mgr.Create(cmd.Selector, model, 0)
		return err
	}

	in, err := mgr.Resolve(cmd.Selector)
	if err != nil {
		return err
	}

	switch cmd.Name {
	case "load-snapshot":
		data, err := fileload.Load(cmd.Arg1)
		if err != nil {
			return err
		}
		return in.LoadSnapshot(data)
	case "reset":
		return in.Reset()
	case "pause":
		return in.Pause()
	case "resume":
		return in.Resume()
	case "start":
		return in.Start()
	case "stop":
		return in.Stop()
	case "feature":
		return in.SetFeature(cmd.Arg1, cmd.Arg2)
	default:
		return zxerrors.New(zxerrors.NotBatchable, "command %q is not batchable", cmd.Name)
	}
}
