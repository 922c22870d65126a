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

package batch_test

import (
	"testing"

	"github.com/zxfleet/core/batch"
	"github.com/zxfleet/core/config"
	"github.com/zxfleet/core/cpufacade"
	"github.com/zxfleet/core/events"
	"github.com/zxfleet/core/manager"
	"github.com/zxfleet/core/memory"
	"github.com/zxfleet/core/zxerrors"
)

type fakeCPU struct{ regs cpufacade.Registers }

func (c *fakeCPU) Reset()                             {}
func (c *fakeCPU) Registers() cpufacade.Registers     { return c.regs }
func (c *fakeCPU) SetRegisters(r cpufacade.Registers) { c.regs = r }
func (c *fakeCPU) Step() (int, error)                 { return 4, nil }
func (c *fakeCPU) Run(stop <-chan struct{}) error     { <-stop; return nil }

type fakePeripherals struct{ border byte }

func (p *fakePeripherals) BorderColour() byte           { return p.border }
func (p *fakePeripherals) SetBorderColour(v byte)       { p.border = v }
func (p *fakePeripherals) AYRegisters(int) [16]byte     { return [16]byte{} }
func (p *fakePeripherals) SetAYRegisters(int, [16]byte) {}
func (p *fakePeripherals) AYLatch() byte                { return 0 }
func (p *fakePeripherals) SetAYLatch(byte)              {}

func testFactory(model config.Model, mem *memory.Memory) (cpufacade.CPU, cpufacade.Peripherals) {
	return &fakeCPU{}, &fakePeripherals{}
}

func TestValidateRejectsNonWhitelistedCommand(t *testing.T) {
	cmds := []batch.Command{{Selector: "0", Name: "step"}}
	err := batch.Validate(cmds)
	if zxerrors.KindOf(err) != zxerrors.NotBatchable {
		t.Fatalf("KindOf = %v, want NotBatchable", zxerrors.KindOf(err))
	}
}

func TestRunRejectsWholeBatchOnInvalidCommand(t *testing.T) {
	mgr := manager.New(events.NewBus(8), testFactory)
	executed := 0
	exec := func(m *manager.Manager, cmd batch.Command) error {
		executed++
		return nil
	}
	d := batch.New(mgr, nil, batch.DefaultPoolSize, exec)

	cmds := []batch.Command{
		{Selector: "0", Name: "reset"},
		{Selector: "0", Name: "step"},
	}
	_, err := d.Run(cmds)
	if zxerrors.KindOf(err) != zxerrors.NotBatchable {
		t.Fatalf("KindOf = %v, want NotBatchable", zxerrors.KindOf(err))
	}
	if executed != 0 {
		t.Fatalf("executed = %d, want 0 (whole batch must be rejected before any command runs)", executed)
	}
}

// TestBatchFanOut mirrors spec scenario 4: four whitelisted commands
// across a pool of four workers, all succeeding.
func TestBatchFanOut(t *testing.T) {
	mgr := manager.New(events.NewBus(8), testFactory)
	for i := 0; i < 3; i++ {
		if _, err := mgr.Create("", config.Spectrum48K, 0); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	exec := func(m *manager.Manager, cmd batch.Command) error {
		_, err := m.Resolve(cmd.Selector)
		return err
	}
	d := batch.New(mgr, nil, 4, exec)

	cmds := []batch.Command{
		{Selector: "0", Name: "load-snapshot", Arg1: "/p/game1"},
		{Selector: "1", Name: "load-snapshot", Arg1: "/p/game2"},
		{Selector: "2", Name: "reset"},
		{Selector: "0", Name: "feature", Arg1: "sound", Arg2: "off"},
	}
	summary, err := d.Run(cmds)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 4 || summary.Succeeded != 4 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want total=4 succeeded=4 failed=0", summary)
	}
	if !summary.Success {
		t.Fatal("summary.Success should be true when failed == 0")
	}
	for i, r := range summary.Results {
		if r.Selector != cmds[i].Selector || r.Command != cmds[i].Name {
			t.Fatalf("result %d = %+v, does not echo input %+v", i, r, cmds[i])
		}
	}
}

func TestBatchIsolatesPerCommandFailure(t *testing.T) {
	mgr := manager.New(events.NewBus(8), testFactory)
	exec := func(m *manager.Manager, cmd batch.Command) error {
		if cmd.Selector == "bad" {
			return zxerrors.New(zxerrors.NotFound, "no such instance")
		}
		return nil
	}
	d := batch.New(mgr, nil, 4, exec)

	cmds := []batch.Command{
		{Selector: "bad", Name: "reset"},
		{Selector: "0", Name: "reset"},
	}
	summary, err := d.Run(cmds)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want succeeded=1 failed=1", summary)
	}
	if summary.Success {
		t.Fatal("summary.Success should be false when any command failed")
	}
	if summary.Results[0].Success {
		t.Fatal("command targeting a missing instance should fail")
	}
	if !summary.Results[1].Success {
		t.Fatal("the second command should still succeed despite the first failing")
	}
}

func TestBatchRecoversWorkerPanic(t *testing.T) {
	mgr := manager.New(events.NewBus(8), testFactory)
	exec := func(m *manager.Manager, cmd batch.Command) error {
		panic("boom")
	}
	d := batch.New(mgr, nil, 2, exec)

	summary, err := d.Run([]batch.Command{{Selector: "0", Name: "reset"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 0 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want succeeded=0 failed=1", summary)
	}
	if summary.Results[0].Error != "boom" {
		t.Fatalf("Results[0].Error = %q, want %q", summary.Results[0].Error, "boom")
	}
}
