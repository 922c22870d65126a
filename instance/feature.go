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

// Features supplements the dropped features_api.cpp functionality with a
// minimal named-string-value toggle store (sound on/off, border-flash
// suppression, and similar per-instance flags); it does not model the
// original's full FeatureManager description/mode metadata since nothing
// in this module consumes that beyond the flag's own value.

// Feature returns the current value of a named feature and whether it
// has ever been set.
func (in *Instance) Feature(name string) (string, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	v, ok := in.features[name]
	return v, ok
}

// Features returns a snapshot of every feature currently set.
func (in *Instance) Features() map[string]string {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make(map[string]string, len(in.features))
	for k, v := range in.features {
		out[k] = v
	}
	return out
}

// SetFeature sets a named feature's value, going through the quiescence
// discipline since some features (e.g. sound routing) may need to take
// effect atomically with respect to the emulation goroutine.
func (in *Instance) SetFeature(name, value string) error {
	return in.withQuiescence(func() error {
		in.mu.Lock()
		in.features[name] = value
		in.mu.Unlock()
		return nil
	})
}
