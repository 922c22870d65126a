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

// Package events implements the process-wide, multi-producer/
// multi-subscriber publish/subscribe bus used to carry emulator lifecycle
// notifications out to WebSocket subscribers. Kind and payload shape are
// modelled on the teacher's emulation.Event enumeration, generalised from a
// single-emulation GUI notification channel to a many-instance fleet.
package events

import (
	"encoding/json"
	"sync"
)

// Kind identifies the category of a published Event.
type Kind int

// The set of event kinds the control plane can publish. StateChanged
// covers every lifecycle transition in spec §4.4; the others mirror the
// operations that mutate an instance from outside its own goroutine.
const (
	StateChanged Kind = iota
	InstanceCreated
	InstanceRemoved
	SnapshotLoaded
	SnapshotSaved
	DiskInserted
	DiskEjected
	BatchCompleted
)

func (k Kind) String() string {
	switch k {
	case StateChanged:
		return "StateChanged"
	case InstanceCreated:
		return "InstanceCreated"
	case InstanceRemoved:
		return "InstanceRemoved"
	case SnapshotLoaded:
		return "SnapshotLoaded"
	case SnapshotSaved:
		return "SnapshotSaved"
	case DiskInserted:
		return "DiskInserted"
	case DiskEjected:
		return "DiskEjected"
	case BatchCompleted:
		return "BatchCompleted"
	}
	return "Unknown"
}

// MarshalJSON renders a Kind as its string name rather than its
// underlying int, so WebSocket subscribers see "StateChanged" instead of
// a bare integer.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Event is a single notification carried on the bus.
type Event struct {
	Kind       Kind
	InstanceID string
	Payload    interface{}
}

// Topic is the single logical channel the control plane publishes
// lifecycle events to. It matches the "zx_emulator_updates_topic" name of
// the WebSocket contract in spec §6.2.
const Topic = "zx_emulator_updates_topic"

// Subscriber receives Events published after it subscribed. The channel is
// buffered; a slow subscriber that fills its buffer has further events
// dropped for it rather than blocking the publisher (publishing is
// non-blocking with respect to subscribers, per spec §5).
type Subscriber struct {
	id uint64
	ch chan Event
}

// C returns the channel the subscriber should range over.
func (s *Subscriber) C() <-chan Event {
	return s.ch
}

// Bus is the process-wide pub/sub service. The zero value is not usable;
// construct with NewBus.
type Bus struct {
	mu        sync.Mutex
	nextID    uint64
	subs      map[uint64]chan Event
	bufferLen int
}

// NewBus returns a Bus whose per-subscriber channel buffer holds bufferLen
// events before publishes for that subscriber start being dropped.
func NewBus(bufferLen int) *Bus {
	if bufferLen < 1 {
		bufferLen = 1
	}
	return &Bus{
		subs:      make(map[uint64]chan Event),
		bufferLen: bufferLen,
	}
}

// Subscribe registers a new subscriber and returns it. Callers must call
// Unsubscribe when finished to release the channel.
func (b *Bus) Subscribe() *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.bufferLen)
	b.subs[id] = ch
	return &Subscriber{id: id, ch: ch}
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(s *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[s.id]; ok {
		delete(b.subs, s.id)
		close(ch)
	}
}

// Publish delivers ev to every current subscriber. Delivery never blocks:
// a subscriber whose buffer is full simply misses the event.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount returns the number of currently registered subscribers.
// Used by the control plane to report WebSocket connection counts.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
