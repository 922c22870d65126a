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

// Package instance implements the C4 component: one emulator instance's
// lifecycle state machine, its dedicated emulation goroutine, and the
// quiescence discipline (pause, wait for the goroutine to acknowledge,
// mutate, resume) that every external mutation of a running instance
// must go through. The state/substate split and its integrity check
// follow the teacher's debugger/govern package; the pause/resume
// handshake follows the teacher's channel-based main loop.
package instance

import "github.com/zxfleet/core/zxerrors"

// State is one of the four lifecycle states an instance can be in (spec
// §4.4).
type State int

const (
	Initialized State = iota
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "Initialized"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case Stopped:
		return "Stopped"
	}
	return "Unknown"
}

// transitions is the closed table of legal lifecycle moves (spec §4.4).
// A transition not present here is always rejected with InvalidState.
// Paused->Paused and Stopped->Stopped are legal no-ops (spec.md:130:
// "Double-pause and double-resume are no-ops; Stop from Stopped is a
// no-op"); Running->Running is deliberately absent here even though
// Resume() checks against it, because Resume's own short-circuit
// handles the already-Running case before consulting this table (see
// instance.go) — Reset goes through withQuiescence, not this table, so
// there is no longer anything that needs a Running->Running entry.
var transitions = map[State]map[State]bool{
	Initialized: {Running: true},
	Running:     {Paused: true, Stopped: true},
	Paused:      {Running: true, Stopped: true, Paused: true},
	Stopped:     {Stopped: true},
}

// checkTransition reports whether moving from 'from' to 'to' is legal,
// mirroring the teacher's StateIntegrity check: every transition is
// validated against the table rather than inferred from ad hoc
// conditionals scattered through the call sites.
func checkTransition(from, to State) error {
	allowed, ok := transitions[from]
	if !ok || !allowed[to] {
		return zxerrors.New(zxerrors.InvalidState, "illegal lifecycle transition %s -> %s", from, to)
	}
	return nil
}
