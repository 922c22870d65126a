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

package events_test

import (
	"testing"
	"time"

	"github.com/zxfleet/core/events"
)

func TestPublishSubscribe(t *testing.T) {
	bus := events.NewBus(4)
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	bus.Publish(events.Event{Kind: events.StateChanged, InstanceID: "emu-001", Payload: "Running"})

	select {
	case ev := <-sub.C():
		if ev.Kind != events.StateChanged || ev.InstanceID != "emu-001" {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	bus := events.NewBus(1)
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(events.Event{Kind: events.StateChanged})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := events.NewBus(4)
	sub := bus.Subscribe()
	bus.Unsubscribe(sub)

	if bus.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after unsubscribe, got %d", bus.SubscriberCount())
	}

	bus.Publish(events.Event{Kind: events.StateChanged})

	_, ok := <-sub.C()
	if ok {
		t.Errorf("expected channel to be closed after unsubscribe")
	}
}
