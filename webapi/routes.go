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
	"net/http"

	"github.com/gorilla/mux"
)

const apiBase = "/api/v1"

func (s *Server) registerRoutes(r *mux.Router) {
	api := r.PathPrefix(apiBase).Subrouter()

	api.HandleFunc("/emulator", s.handleListInstances).Methods(http.MethodGet)
	api.HandleFunc("/emulator/create", s.handleCreateInstance).Methods(http.MethodPost)
	api.HandleFunc("/emulator/{id}", s.handleDescribeInstance).Methods(http.MethodGet)
	api.HandleFunc("/emulator/{id}", s.handleRemoveInstance).Methods(http.MethodDelete)

	api.HandleFunc("/emulator/{id}/start", s.handleLifecycle("start")).Methods(http.MethodPost)
	api.HandleFunc("/emulator/{id}/stop", s.handleLifecycle("stop")).Methods(http.MethodPost)
	api.HandleFunc("/emulator/{id}/pause", s.handleLifecycle("pause")).Methods(http.MethodPost)
	api.HandleFunc("/emulator/{id}/resume", s.handleLifecycle("resume")).Methods(http.MethodPost)
	api.HandleFunc("/emulator/{id}/reset", s.handleLifecycle("reset")).Methods(http.MethodPost)

	api.HandleFunc("/emulator/{id}/snapshot/load", s.handleSnapshotLoad).Methods(http.MethodPost)
	api.HandleFunc("/emulator/{id}/snapshot/save", s.handleSnapshotSave).Methods(http.MethodPost)

	api.HandleFunc("/emulator/{id}/disk/{drive}/insert", s.handleDiskInsert).Methods(http.MethodPost)
	api.HandleFunc("/emulator/{id}/disk/{drive}/eject", s.handleDiskEject).Methods(http.MethodPost)

	api.HandleFunc("/emulator/{id}/feature", s.handleFeatureGet).Methods(http.MethodGet)
	api.HandleFunc("/emulator/{id}/feature", s.handleFeatureSet).Methods(http.MethodPost)

	api.HandleFunc("/batch/execute", s.handleBatchExecute).Methods(http.MethodPost)
	api.HandleFunc("/batch/commands", s.handleBatchCommands).Methods(http.MethodGet)

	api.HandleFunc("/openapi.json", s.handleOpenAPI).Methods(http.MethodGet)
	api.HandleFunc("/websocket", s.handleWebSocket)
}
