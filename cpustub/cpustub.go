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

// Package cpustub provides a no-op implementation of cpufacade.CPU and
// cpufacade.Peripherals. A cycle-exact Z80 execution engine is explicitly
// out of scope for this module; cpustub exists only so the manager and
// the fleet binary have something concrete to hand out until a real
// engine is wired in behind the same interfaces. It plays the same role
// the teacher's gui.Stub plays for a headless run: a harmless substitute
// that satisfies the interface boundary rather than leaving it unfilled.
package cpustub

import "github.com/zxfleet/core/cpufacade"

// CPU is a Z80 stand-in that holds register state but never decodes an
// opcode. Step always reports 4 T-states (a single NOP) and never fails,
// so an instance built on it runs forever without making progress; Run
// blocks until told to stop.
type CPU struct {
	regs cpufacade.Registers
}

// New returns a freshly power-on-reset CPU stub.
func New() *CPU {
	c := &CPU{}
	c.Reset()
	return c
}

// Reset implements cpufacade.CPU.
func (c *CPU) Reset() {
	c.regs = cpufacade.Registers{IFF1: false, IFF2: false}
}

// Registers implements cpufacade.CPU.
func (c *CPU) Registers() cpufacade.Registers {
	return c.regs
}

// SetRegisters implements cpufacade.CPU.
func (c *CPU) SetRegisters(r cpufacade.Registers) {
	c.regs = r
}

// Step implements cpufacade.CPU. It does not decode or execute anything;
// it exists to let the instance's run loop and quiescence discipline be
// exercised without a real engine attached.
func (c *CPU) Step() (int, error) {
	return 4, nil
}

// Run implements cpufacade.CPU.
func (c *CPU) Run(stop <-chan struct{}) error {
	<-stop
	return nil
}

// Peripherals is the stand-in ULA/AY image: it remembers whatever was
// last written to it and nothing more.
type Peripherals struct {
	border byte
	latch  byte
	ay     [3][16]byte
}

// NewPeripherals returns a stub peripheral set with the border colour the ULA
// powers on with (black, per spec default).
func NewPeripherals() *Peripherals {
	return &Peripherals{}
}

// BorderColour implements cpufacade.Peripherals.
func (p *Peripherals) BorderColour() byte { return p.border }

// SetBorderColour implements cpufacade.Peripherals.
func (p *Peripherals) SetBorderColour(v byte) { p.border = v }

// AYRegisters implements cpufacade.Peripherals.
func (p *Peripherals) AYRegisters(chip int) [16]byte {
	if chip < 0 || chip >= len(p.ay) {
		return [16]byte{}
	}
	return p.ay[chip]
}

// SetAYRegisters implements cpufacade.Peripherals.
func (p *Peripherals) SetAYRegisters(chip int, regs [16]byte) {
	if chip < 0 || chip >= len(p.ay) {
		return
	}
	p.ay[chip] = regs
}

// AYLatch implements cpufacade.Peripherals.
func (p *Peripherals) AYLatch() byte { return p.latch }

// SetAYLatch implements cpufacade.Peripherals.
func (p *Peripherals) SetAYLatch(v byte) { p.latch = v }
