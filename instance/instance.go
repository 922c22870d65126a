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
	"sync"

	"github.com/zxfleet/core/config"
	"github.com/zxfleet/core/cpufacade"
	"github.com/zxfleet/core/diskimage"
	"github.com/zxfleet/core/events"
	"github.com/zxfleet/core/logger"
	"github.com/zxfleet/core/memory"
	"github.com/zxfleet/core/port"
	"github.com/zxfleet/core/zxerrors"
)

// driveCount is the number of floppy drives an instance exposes (A..D).
const driveCount = 4

// Instance is one emulated machine: its own memory, port decoder, CPU/
// peripheral facades, up to four disk drives, and the dedicated
// goroutine that steps the CPU. Subordinates are owned exclusively by
// their instance (spec §9's "tree-shaped ownership" guidance); nothing
// outside this package reaches into them except through the methods
// here, all of which go through the quiescence discipline when the
// instance is running.
type Instance struct {
	ID         string
	SymbolicID string
	Model      config.Model

	mem         *memory.Memory
	dec         *port.Decoder
	cpu         cpufacade.CPU
	peripherals cpufacade.Peripherals
	bus         *events.Bus

	mu          sync.Mutex
	state       State
	debugPaused bool
	drives      [driveCount]*diskimage.DiskImage
	features    map[string]string

	stopCh   chan struct{}
	pauseReq chan struct{}
	pauseAck chan struct{}
	resumeCh chan struct{}
	runDone  chan struct{}
}

// New constructs an Initialized instance. The caller retains ownership
// of id/symbolicID uniqueness (the manager package enforces that); this
// constructor only assembles the instance's own state.
func New(id, symbolicID string, model config.Model, mem *memory.Memory, dec *port.Decoder, cpu cpufacade.CPU, peripherals cpufacade.Peripherals, bus *events.Bus) *Instance {
	return &Instance{
		ID:          id,
		SymbolicID:  symbolicID,
		Model:       model,
		mem:         mem,
		dec:         dec,
		cpu:         cpu,
		peripherals: peripherals,
		bus:         bus,
		state:       Initialized,
		features:    make(map[string]string),
	}
}

// State returns the instance's current lifecycle state.
func (in *Instance) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// DebugPaused reports whether the instance's debug-pause flag is set
// (distinct from the lifecycle Paused state; spec §9 Open Question
// resolution).
func (in *Instance) DebugPaused() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.debugPaused
}

// SetDebugPaused sets or clears the debug-pause flag.
func (in *Instance) SetDebugPaused(v bool) {
	in.mu.Lock()
	in.debugPaused = v
	in.mu.Unlock()
}

// Memory, Decoder, CPU and Peripherals expose the instance's owned
// subordinates for read-mostly inspection (state dumps, the debug
// surface); mutation still has to go through this package's methods so
// the quiescence discipline is never bypassed.
func (in *Instance) Memory() *memory.Memory          { return in.mem }
func (in *Instance) Decoder() *port.Decoder          { return in.dec }
func (in *Instance) CPU() cpufacade.CPU              { return in.cpu }
func (in *Instance) Peripherals() cpufacade.Peripherals { return in.peripherals }

func (in *Instance) publish(kind events.Kind, payload interface{}) {
	if in.bus == nil {
		return
	}
	in.bus.Publish(events.Event{Kind: kind, InstanceID: in.ID, Payload: payload})
}

// Start transitions Initialized->Running and launches the dedicated
// emulation goroutine.
func (in *Instance) Start() error {
	in.mu.Lock()
	if err := checkTransition(in.state, Running); err != nil {
		in.mu.Unlock()
		return err
	}
	in.state = Running
	in.stopCh = make(chan struct{})
	in.pauseReq = make(chan struct{})
	in.pauseAck = make(chan struct{})
	in.resumeCh = make(chan struct{})
	in.runDone = make(chan struct{})
	in.mu.Unlock()

	go in.runLoop()

	logger.Logf("instance", "%s started", in.ID)
	in.publish(events.StateChanged, Running.String())
	return nil
}

// Pause transitions Running->Paused, blocking until the emulation
// goroutine has acknowledged the pause at its per-instruction barrier
// (spec §5).
func (in *Instance) Pause() error {
	in.mu.Lock()
	if in.state == Paused {
		// spec.md:130: double-pause is a no-op, not an illegal transition.
		in.mu.Unlock()
		return nil
	}
	if err := checkTransition(in.state, Paused); err != nil {
		in.mu.Unlock()
		return err
	}
	pauseReq, pauseAck := in.pauseReq, in.pauseAck
	in.mu.Unlock()

	pauseReq <- struct{}{}
	<-pauseAck

	in.mu.Lock()
	in.state = Paused
	in.mu.Unlock()

	logger.Logf("instance", "%s paused", in.ID)
	in.publish(events.StateChanged, Paused.String())
	return nil
}

// Resume transitions Paused->Running, releasing the emulation goroutine
// from its pause barrier.
func (in *Instance) Resume() error {
	in.mu.Lock()
	if in.state == Running {
		// spec.md:130: double-resume is a no-op. Short-circuiting here is
		// required, not just a nicety: runLoop only ever receives from
		// resumeCh while parked in its pause-barrier select, so sending on
		// it while already Running would block forever.
		in.mu.Unlock()
		return nil
	}
	if in.state != Paused {
		in.mu.Unlock()
		return zxerrors.New(zxerrors.InvalidState, "illegal lifecycle transition %s -> %s", in.state, Running)
	}
	resumeCh := in.resumeCh
	in.state = Running
	in.mu.Unlock()

	resumeCh <- struct{}{}

	logger.Logf("instance", "%s resumed", in.ID)
	in.publish(events.StateChanged, Running.String())
	return nil
}

// Stop transitions Running|Paused->Stopped and signals the emulation
// goroutine to exit. If the instance was Paused, the goroutine is first
// released from its pause barrier so it can observe the stop signal.
func (in *Instance) Stop() error {
	in.mu.Lock()
	if in.state == Stopped {
		// spec.md:130: Stop from Stopped is a no-op.
		in.mu.Unlock()
		return nil
	}
	if err := checkTransition(in.state, Stopped); err != nil {
		in.mu.Unlock()
		return err
	}
	wasPaused := in.state == Paused
	in.state = Stopped
	stopCh, resumeCh := in.stopCh, in.resumeCh
	in.mu.Unlock()

	close(stopCh)
	if wasPaused {
		// runLoop is blocked selecting on resumeCh/stopCh; closing stopCh
		// above already unblocks it, so this send would deadlock. Instead
		// rely on the closed stopCh branch; nothing further to send.
		_ = resumeCh
	}

	logger.Logf("instance", "%s stopped", in.ID)
	in.publish(events.StateChanged, Stopped.String())
	return nil
}

// Reset reinitialises the CPU and restores the default memory/paging
// configuration for the instance's model, going through the quiescence
// discipline if the instance is currently running (spec §4.4).
func (in *Instance) Reset() error {
	return in.withQuiescence(func() error {
		in.cpu.Reset()
		if config.Is128KPaging(in.Model) {
			in.mem.Reset128K()
		} else {
			in.mem.Reset48K()
		}
		in.dec.UnlockPaging()
		in.dec.Write7FFD(0)
		return nil
	})
}

// withQuiescence runs fn with the instance paused if it is currently
// Running (pause -> wait for the goroutine's barrier acknowledgement ->
// run fn -> resume), or runs fn directly if the instance is already
// Paused or Initialized. Stopped instances reject every mutation.
func (in *Instance) withQuiescence(fn func() error) error {
	in.mu.Lock()
	if in.state == Stopped {
		in.mu.Unlock()
		return zxerrors.New(zxerrors.InvalidState, "instance %s is stopped", in.ID)
	}
	wasRunning := in.state == Running
	pauseReq, pauseAck, resumeCh := in.pauseReq, in.pauseAck, in.resumeCh
	in.mu.Unlock()

	if wasRunning {
		pauseReq <- struct{}{}
		<-pauseAck
	}

	err := fn()

	if wasRunning {
		resumeCh <- struct{}{}
	}
	return err
}

// runLoop is the instance's dedicated emulation goroutine: it steps the
// CPU repeatedly, checking for a pause or stop request between every
// instruction (the "per-instruction pause barrier" of spec §5).
func (in *Instance) runLoop() {
	defer close(in.runDone)

	for {
		select {
		case <-in.stopCh:
			return
		case <-in.pauseReq:
			in.pauseAck <- struct{}{}
			select {
			case <-in.resumeCh:
			case <-in.stopCh:
				return
			}
		default:
		}

		if _, err := in.cpu.Step(); err != nil {
			logger.Logf("instance", "%s emulation stopped: %s", in.ID, err)
			return
		}
	}
}
