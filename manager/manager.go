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

// Package manager implements the C5 component: the process-wide registry
// of live emulator instances, keyed by UUID and by an optional unique
// symbolic identifier, with index-based resolution over current
// insertion order. Grounded on the teacher's database package for the
// "ordered collection with stable keys, serialised mutation" shape
// (database.Session's entries map plus SortedKeyList), adapted from a
// flat-file key/value store to an in-memory sync.RWMutex-guarded
// registry: instances are not persisted across process restarts.
package manager

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zxfleet/core/config"
	"github.com/zxfleet/core/cpufacade"
	"github.com/zxfleet/core/events"
	"github.com/zxfleet/core/instance"
	"github.com/zxfleet/core/memory"
	"github.com/zxfleet/core/port"
	"github.com/zxfleet/core/zxerrors"
)

// HardwareFactory constructs the CPU and Peripherals facade a new
// instance needs. Supplied by the caller (cmd/zxfleet's wiring code) so
// this package never has to depend on a concrete CPU/peripherals
// implementation.
type HardwareFactory func(model config.Model, mem *memory.Memory) (cpufacade.CPU, cpufacade.Peripherals)

// record is what the registry actually stores per instance: the
// instance itself plus its creation time, needed for MostRecent.
type record struct {
	inst      *instance.Instance
	createdAt time.Time
}

// Manager is the process-wide registry mapping UUID -> instance and
// symbolic ID -> UUID. The zero value is not usable; construct with New.
type Manager struct {
	mu sync.RWMutex

	byID       map[string]*record
	bySymbolic map[string]string // symbolic id -> uuid
	order      []string          // uuids in insertion order, for index resolution

	bus     *events.Bus
	factory HardwareFactory
}

// New returns an empty Manager. bus is used to publish InstanceCreated/
// InstanceRemoved events; factory builds the CPU/peripherals facade for
// each new instance.
func New(bus *events.Bus, factory HardwareFactory) *Manager {
	return &Manager{
		byID:       make(map[string]*record),
		bySymbolic: make(map[string]string),
		bus:        bus,
		factory:    factory,
	}
}

// Create constructs a new Initialized instance and registers it under a
// freshly-minted UUID (and symbolicID, if non-empty and not already
// taken). ramKB == 0 requests the model's default RAM size.
func (m *Manager) Create(symbolicID string, model config.Model, ramKB int) (*instance.Instance, error) {
	if !config.IsKnownModel(model) {
		return nil, zxerrors.New(zxerrors.InvalidArgument, "unknown model: %s", model)
	}
	if !config.ValidateRAM(model, ramKB) {
		return nil, zxerrors.New(zxerrors.InvalidArgument, "RAM size %dKB is not valid for model %s", ramKB, model)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if symbolicID != "" {
		if _, taken := m.bySymbolic[symbolicID]; taken {
			return nil, zxerrors.New(zxerrors.InvalidArgument, "symbolic id already in use: %s", symbolicID)
		}
	}

	id := uuid.NewString()
	mem := memory.New(config.ROMPages(model))
	if config.Is128KPaging(model) {
		mem.Reset128K()
	} else {
		mem.Reset48K()
	}
	dec := port.New(mem)
	cpu, periph := m.factory(model, mem)

	inst := instance.New(id, symbolicID, model, mem, dec, cpu, periph, m.bus)

	m.byID[id] = &record{inst: inst, createdAt: time.Now()}
	if symbolicID != "" {
		m.bySymbolic[symbolicID] = id
	}
	m.order = append(m.order, id)

	if m.bus != nil {
		m.bus.Publish(events.Event{Kind: events.InstanceCreated, InstanceID: id})
	}

	return inst, nil
}

// Resolve looks an instance up by UUID, by symbolic ID, or by a decimal
// index over the current insertion order of live instances (spec §4.5,
// §8 scenario 6: indices shift as instances are removed).
func (m *Manager) Resolve(selector string) (*instance.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolveLocked(selector)
}

func (m *Manager) resolveLocked(selector string) (*instance.Instance, error) {
	if id, ok := m.bySymbolic[selector]; ok {
		return m.byID[id].inst, nil
	}
	if rec, ok := m.byID[selector]; ok {
		return rec.inst, nil
	}
	if idx, err := strconv.Atoi(selector); err == nil {
		if idx < 0 || idx >= len(m.order) {
			return nil, zxerrors.New(zxerrors.NotFound, "no instance at index %d", idx)
		}
		return m.byID[m.order[idx]].inst, nil
	}
	return nil, zxerrors.New(zxerrors.NotFound, "no instance matches selector %q", selector)
}

// Remove stops the instance (if Running or Paused) and detaches it
// from both the UUID and symbolic-ID mappings.
func (m *Manager) Remove(selector string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, err := m.resolveLocked(selector)
	if err != nil {
		return err
	}

	if st := inst.State(); st == instance.Running || st == instance.Paused {
		if err := inst.Stop(); err != nil {
			return err
		}
	}

	delete(m.byID, inst.ID)
	if inst.SymbolicID != "" {
		delete(m.bySymbolic, inst.SymbolicID)
	}
	for i, id := range m.order {
		if id == inst.ID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	if m.bus != nil {
		m.bus.Publish(events.Event{Kind: events.InstanceRemoved, InstanceID: inst.ID})
	}
	return nil
}

// List returns every live instance in insertion order.
func (m *Manager) List() []*instance.Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*instance.Instance, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id].inst)
	}
	return out
}

// MostRecent returns the most recently created live instance, or nil if
// the registry is empty (spec §4.5: "used by stateless control endpoints
// when exactly one instance exists").
func (m *Manager) MostRecent() *instance.Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.order) == 0 {
		return nil
	}

	var newest *record
	for _, id := range m.order {
		rec := m.byID[id]
		if newest == nil || rec.createdAt.After(newest.createdAt) {
			newest = rec
		}
	}
	return newest.inst
}

// Count returns the number of currently registered instances.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
