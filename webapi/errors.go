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

	"github.com/zxfleet/core/zxerrors"
)

// errorResponse is the JSON shape every error response carries (spec
// §6.1): error (category string) and message (human text).
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps a curated error's Kind to the HTTP status convention of
// spec §7.
func statusFor(kind zxerrors.Kind) int {
	switch kind {
	case zxerrors.NotFound:
		return http.StatusNotFound
	case zxerrors.InvalidArgument, zxerrors.InvalidFormat, zxerrors.InvalidState, zxerrors.NotBatchable:
		return http.StatusBadRequest
	case zxerrors.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := zxerrors.KindOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(kind))
	_ = json.NewEncoder(w).Encode(errorResponse{Error: kind.String(), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
