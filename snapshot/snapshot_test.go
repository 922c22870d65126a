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

package snapshot_test

import "github.com/zxfleet/core/cpufacade"

// fakeCPU is the minimal cpufacade.CPU stand-in used by the snapshot
// tests; it only ever has its registers read and overwritten by
// snapshot.Apply, never stepped.
type fakeCPU struct {
	regs       cpufacade.Registers
	resetCalls int
}

func (f *fakeCPU) Reset() {
	f.resetCalls++
	f.regs = cpufacade.Registers{}
}

func (f *fakeCPU) Registers() cpufacade.Registers { return f.regs }

func (f *fakeCPU) SetRegisters(r cpufacade.Registers) { f.regs = r }

func (f *fakeCPU) Step() (int, error) { return 4, nil }

func (f *fakeCPU) Run(stop <-chan struct{}) error {
	<-stop
	return nil
}
