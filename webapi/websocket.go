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

	"github.com/gorilla/websocket"

	"github.com/zxfleet/core/logger"
)

// upgrader accepts WebSocket connections from any origin, matching the
// REST surface's wide-open CORS policy (spec §6.1/§6.2).
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket serves ws://host:8090/api/v1/websocket (spec §6.2): on
// connect it sends a welcome frame and subscribes the connection to the
// process-wide event bus; every bus publish is forwarded as a JSON text
// frame, and inbound client frames are acknowledged with an "ACK: "
// prefix.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Logf("webapi", "websocket upgrade failed: %s", err)
		return
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("welcome to zxfleet")); err != nil {
		return
	}

	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			ack := append([]byte("ACK: "), msg...)
			if err := conn.WriteMessage(websocket.TextMessage, ack); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
