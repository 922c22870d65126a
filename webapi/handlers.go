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
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/zxfleet/core/config"
	"github.com/zxfleet/core/fileload"
	"github.com/zxfleet/core/instance"
	"github.com/zxfleet/core/snapshot"
	"github.com/zxfleet/core/zxerrors"
)

// instanceView is the JSON representation of an instance for list/
// describe responses.
type instanceView struct {
	ID          string `json:"id"`
	SymbolicID  string `json:"symbolic_id,omitempty"`
	Model       string `json:"model"`
	State       string `json:"state"`
	DebugPaused bool   `json:"debug_paused"`
}

func describe(in *instance.Instance) instanceView {
	return instanceView{
		ID:          in.ID,
		SymbolicID:  in.SymbolicID,
		Model:       in.Model.String(),
		State:       in.State().String(),
		DebugPaused: in.DebugPaused(),
	}
}

func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	list := s.mgr.List()
	views := make([]instanceView, len(list))
	for i, in := range list {
		views[i] = describe(in)
	}
	writeJSON(w, http.StatusOK, views)
}

type createRequest struct {
	SymbolicID string `json:"symbolic_id"`
	Model      string `json:"model"`
	RAMSize    int    `json:"ram_size"`
}

func (s *Server) handleCreateInstance(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
			writeError(w, zxerrors.New(zxerrors.InvalidArgument, "malformed JSON body: %s", err))
			return
		}
	}

	model, err := config.ParseModel(req.Model)
	if err != nil {
		writeError(w, err)
		return
	}

	in, err := s.mgr.Create(req.SymbolicID, model, req.RAMSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, describe(in))
}

func (s *Server) handleDescribeInstance(w http.ResponseWriter, r *http.Request) {
	in, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(in))
}

func (s *Server) handleRemoveInstance(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.mgr.Remove(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resolve(r *http.Request) (*instance.Instance, error) {
	return s.mgr.Resolve(mux.Vars(r)["id"])
}

func (s *Server) handleLifecycle(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := s.resolve(r)
		if err != nil {
			writeError(w, err)
			return
		}

		switch op {
		case "start":
			err = in.Start()
		case "stop":
			err = in.Stop()
		case "pause":
			err = in.Pause()
		case "resume":
			err = in.Resume()
		case "reset":
			err = in.Reset()
		default:
			err = zxerrors.New(zxerrors.Internal, "unknown lifecycle op: %s", op)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"state": in.State().String()})
	}
}

type pathRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleSnapshotLoad(w http.ResponseWriter, r *http.Request) {
	in, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req pathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, zxerrors.New(zxerrors.InvalidArgument, "malformed JSON body: %s", err))
		return
	}

	data, err := fileload.Load(req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := in.LoadSnapshot(data); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": in.State().String()})
}

func (s *Server) handleSnapshotSave(w http.ResponseWriter, r *http.Request) {
	in, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req pathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, zxerrors.New(zxerrors.InvalidArgument, "malformed JSON body: %s", err))
		return
	}

	// spec.md:93: "the output format is chosen from the live state --
	// paging-locked (bit 5 set) emits SNA48, otherwise SNA128." This reads
	// the port decoder's live lock bit, not the instance's static
	// hardware model.
	mode := snapshot.SNA128
	if in.Decoder().Locked() {
		mode = snapshot.SNA48
	}
	data, err := in.SaveSnapshot(mode)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := fileload.Save(req.Path, data); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": req.Path})
}

// driveIndex accepts either a letter A..D or a decimal index 0..3 (spec
// §6.1: "Drive param: A..D or 0..3").
func driveIndex(param string) (int, error) {
	if len(param) == 1 {
		c := strings.ToUpper(param)[0]
		if c >= 'A' && c <= 'D' {
			return int(c - 'A'), nil
		}
	}
	n, err := strconv.Atoi(param)
	if err != nil || n < 0 || n > 3 {
		return 0, zxerrors.New(zxerrors.InvalidArgument, "invalid drive: %s", param)
	}
	return n, nil
}

func (s *Server) handleDiskInsert(w http.ResponseWriter, r *http.Request) {
	in, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	drive, err := driveIndex(mux.Vars(r)["drive"])
	if err != nil {
		writeError(w, err)
		return
	}
	var req pathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, zxerrors.New(zxerrors.InvalidArgument, "malformed JSON body: %s", err))
		return
	}
	data, err := fileload.Load(req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := in.InsertDisk(drive, req.Path, data); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"drive": mux.Vars(r)["drive"]})
}

func (s *Server) handleDiskEject(w http.ResponseWriter, r *http.Request) {
	in, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	drive, err := driveIndex(mux.Vars(r)["drive"])
	if err != nil {
		writeError(w, err)
		return
	}
	if err := in.EjectDisk(drive); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"drive": mux.Vars(r)["drive"]})
}

func (s *Server) handleFeatureGet(w http.ResponseWriter, r *http.Request) {
	in, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"emulator_id": in.ID,
		"features":    in.Features(),
	})
}

type featureRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *Server) handleFeatureSet(w http.ResponseWriter, r *http.Request) {
	in, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req featureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, zxerrors.New(zxerrors.InvalidArgument, "malformed JSON body: %s", err))
		return
	}
	if req.Name == "" {
		writeError(w, zxerrors.New(zxerrors.InvalidArgument, "feature name is required"))
		return
	}
	if err := in.SetFeature(req.Name, req.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": req.Name, "value": req.Value})
}
