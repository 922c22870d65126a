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

// Package config holds the hardware model catalogue, default feature
// flags, and the process-wide settings (listen port, batch pool size)
// that an instance or the control plane reads but never mutates on its
// own initiative. Unlike the teacher's prefs package (a live, file-backed
// preferences tree), this is deliberately a plain value type: the fleet
// has no need for preferences that persist across process restarts.
package config

import "github.com/zxfleet/core/zxerrors"

// Model identifies a ZX Spectrum hardware configuration.
type Model int

// The catalogue of models the fleet can create instances of.
const (
	Spectrum48K Model = iota
	Spectrum128K
	SpectrumPlus2
	SpectrumPlus3
)

func (m Model) String() string {
	switch m {
	case Spectrum48K:
		return "48K"
	case Spectrum128K:
		return "128K"
	case SpectrumPlus2:
		return "+2"
	case SpectrumPlus3:
		return "+3"
	}
	return "unknown"
}

// ParseModel maps a symbolic model name (as accepted over the REST API)
// to a Model. An empty string is treated as Spectrum48K, the default.
func ParseModel(name string) (Model, error) {
	switch name {
	case "", "48k", "48K":
		return Spectrum48K, nil
	case "128k", "128K":
		return Spectrum128K, nil
	case "+2", "plus2":
		return SpectrumPlus2, nil
	case "+3", "plus3":
		return SpectrumPlus3, nil
	}
	return 0, zxerrors.New(zxerrors.InvalidArgument, "unknown model: %s", name)
}

// modelProfile describes the constraints a Model imposes.
type modelProfile struct {
	ramKB    []int
	romPages int
	hasAY    bool
	has128K  bool
}

var profiles = map[Model]modelProfile{
	Spectrum48K:   {ramKB: []int{48}, romPages: 1, hasAY: false, has128K: false},
	Spectrum128K:  {ramKB: []int{128}, romPages: 2, hasAY: true, has128K: true},
	SpectrumPlus2: {ramKB: []int{128}, romPages: 2, hasAY: true, has128K: true},
	SpectrumPlus3: {ramKB: []int{128}, romPages: 4, hasAY: true, has128K: true},
}

// ValidateRAM reports whether ramKB is a size the model permits.
func ValidateRAM(m Model, ramKB int) bool {
	p, ok := profiles[m]
	if !ok {
		return false
	}
	if ramKB == 0 {
		return true // caller wants the model default
	}
	for _, v := range p.ramKB {
		if v == ramKB {
			return true
		}
	}
	return false
}

// DefaultRAM returns the model's default RAM size in KiB.
func DefaultRAM(m Model) int {
	p, ok := profiles[m]
	if !ok || len(p.ramKB) == 0 {
		return 48
	}
	return p.ramKB[0]
}

// ROMPages returns the number of 16 KiB ROM pages the model's ROM set has.
func ROMPages(m Model) int {
	return profiles[m].romPages
}

// HasAY reports whether the model has an AY-3-8912 sound chip.
func HasAY(m Model) bool {
	return profiles[m].hasAY
}

// Is128KPaging reports whether the model uses the 128K-style port-7FFD
// paging scheme (as opposed to the fixed 48K bank layout).
func Is128KPaging(m Model) bool {
	return profiles[m].has128K
}

// IsKnownModel reports whether m is in the catalogue.
func IsKnownModel(m Model) bool {
	_, ok := profiles[m]
	return ok
}
