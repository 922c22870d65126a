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

import "net/http"

// openAPISpec is a manually maintained OpenAPI 3.0 document (spec §6.1:
// "GET /openapi.json | Manually maintained OpenAPI 3.0 spec"), covering
// the REST surface this package actually implements.
const openAPISpec = `{
  "openapi": "3.0.0",
  "info": {
    "title": "zxfleet control plane",
    "version": "1.0.0"
  },
  "paths": {
    "/api/v1/emulator": {
      "get": { "summary": "List all live instances" }
    },
    "/api/v1/emulator/create": {
      "post": { "summary": "Create an instance" }
    },
    "/api/v1/emulator/{id}": {
      "get": { "summary": "Describe an instance" },
      "delete": { "summary": "Remove an instance" }
    },
    "/api/v1/emulator/{id}/start": { "post": { "summary": "Start" } },
    "/api/v1/emulator/{id}/stop": { "post": { "summary": "Stop" } },
    "/api/v1/emulator/{id}/pause": { "post": { "summary": "Pause" } },
    "/api/v1/emulator/{id}/resume": { "post": { "summary": "Resume" } },
    "/api/v1/emulator/{id}/reset": { "post": { "summary": "Reset" } },
    "/api/v1/emulator/{id}/snapshot/load": { "post": { "summary": "Load an SNA/Z80 snapshot" } },
    "/api/v1/emulator/{id}/snapshot/save": { "post": { "summary": "Save a snapshot" } },
    "/api/v1/emulator/{id}/disk/{drive}/insert": { "post": { "summary": "Insert a TRD/SCL image" } },
    "/api/v1/emulator/{id}/disk/{drive}/eject": { "post": { "summary": "Eject a disk" } },
    "/api/v1/emulator/{id}/feature": {
      "get": { "summary": "List feature toggles" },
      "post": { "summary": "Set a feature toggle" }
    },
    "/api/v1/batch/execute": { "post": { "summary": "Execute a whitelisted batch of commands" } },
    "/api/v1/batch/commands": { "get": { "summary": "The batch command whitelist" } },
    "/api/v1/websocket": { "get": { "summary": "Subscribe to lifecycle/batch events" } }
  }
}`

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(openAPISpec))
}
