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

// Package webapi implements the C7 component: the REST and WebSocket
// control-plane surface of spec §6. New relative to the teacher (which
// has no network service at all), but grounded on
// original_source/core/automation/webapi for endpoint shapes, and on the
// teacher's own indirect rs/cors + go-echarts/statsview dependencies for
// the choice of a plain net/http server with a CORS middleware and a
// router (gorilla/mux) rather than a generated framework.
package webapi

import (
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/zxfleet/core/batch"
	"github.com/zxfleet/core/events"
	"github.com/zxfleet/core/logger"
	"github.com/zxfleet/core/manager"
	"github.com/zxfleet/core/zxerrors"
)

// ListenAddress is the fixed TCP 8090 any-address binding of spec §6.5.
const ListenAddress = ":8090"

// Server bundles the dependencies the HTTP/WebSocket handlers need.
type Server struct {
	mgr        *manager.Manager
	dispatcher *batch.Dispatcher
	bus        *events.Bus
	httpServer *http.Server
}

// New assembles a Server with its router and CORS middleware wired up.
func New(mgr *manager.Manager, dispatcher *batch.Dispatcher, bus *events.Bus) *Server {
	s := &Server{mgr: mgr, dispatcher: dispatcher, bus: bus}

	r := mux.NewRouter()
	s.registerRoutes(r)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		OptionsPassthrough: false,
	})

	s.httpServer = &http.Server{
		Addr:         ListenAddress,
		Handler:      corsMiddleware.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Handler returns the CORS-wrapped router, for use by tests that want to
// drive the API via httptest without binding a real port.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ProbeAndServe checks that ListenAddress is free before handing control
// to the transport framework (spec §6.5): "the binding is probed before
// handing control to the transport framework; if the port is busy the
// control plane reports the condition and terminates without exiting the
// host process." stop, when closed, closes the server at once
// (http.Server.Close), dropping any active connections.
func (s *Server) ProbeAndServe(stop <-chan struct{}) error {
	probe, err := net.Listen("tcp", ListenAddress)
	if err != nil {
		return zxerrors.New(zxerrors.Unavailable, "port %s is already in use: %v", ListenAddress, err)
	}
	probe.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-stop:
		logger.Logf("webapi", "shutting down")
		return s.httpServer.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
