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
	"encoding/json"
	"net/http"

	"github.com/zxfleet/core/batch"
	"github.com/zxfleet/core/zxerrors"
)

type batchCommandJSON struct {
	Emulator string `json:"emulator"`
	Command  string `json:"command"`
	Arg1     string `json:"arg1,omitempty"`
	Arg2     string `json:"arg2,omitempty"`
}

type batchRequest struct {
	Commands []batchCommandJSON `json:"commands"`
}

func (s *Server) handleBatchExecute(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, zxerrors.New(zxerrors.InvalidArgument, "malformed JSON body: %s", err))
		return
	}

	cmds := make([]batch.Command, len(req.Commands))
	for i, c := range req.Commands {
		cmds[i] = batch.Command{Selector: c.Emulator, Name: c.Command, Arg1: c.Arg1, Arg2: c.Arg2}
	}

	summary, err := s.dispatcher.Run(cmds)
	if err != nil {
		// NotBatchable: the whole request is rejected at validation (spec
		// §8 scenario 5), before any command executes.
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if summary.Failed > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, summary)
}

func (s *Server) handleBatchCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"commands": {"load-snapshot", "reset", "pause", "resume", "feature", "create", "start", "stop"},
	})
}
