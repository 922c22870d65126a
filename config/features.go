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

package config

import "github.com/zxfleet/core/zxerrors"

// Feature names accepted by the "feature" batch command and the
// /emulator/{id}/feature REST endpoint. Grounded on the dropped
// features_api.cpp surface noted in SPEC_FULL.md.
const (
	FeatureSound       = "sound"
	FeatureSoundStereo = "sound.ay.stereo"
	FeatureTapeFast    = "tape.fastload"
	FeatureDiskFast    = "disk.fastload"
)

// Features holds the boolean feature flags carried per instance.
type Features struct {
	SoundEnabled bool
	AYStereo     bool
	TapeFastload bool
	DiskFastload bool
}

// DefaultFeatures returns the feature set a freshly created instance
// starts with.
func DefaultFeatures() Features {
	return Features{
		SoundEnabled: true,
		AYStereo:     false,
		TapeFastload: false,
		DiskFastload: false,
	}
}

// Set applies name=value to the feature set, where value is "on"/"off"
// (as sent by the batch command's two string arguments, spec §4.6
// scenario 4).
func (f *Features) Set(name, value string) error {
	on, err := parseOnOff(value)
	if err != nil {
		return err
	}
	switch name {
	case FeatureSound:
		f.SoundEnabled = on
	case FeatureSoundStereo:
		f.AYStereo = on
	case FeatureTapeFast:
		f.TapeFastload = on
	case FeatureDiskFast:
		f.DiskFastload = on
	default:
		return zxerrors.New(zxerrors.InvalidArgument, "unknown feature: %s", name)
	}
	return nil
}

func parseOnOff(value string) (bool, error) {
	switch value {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, zxerrors.New(zxerrors.InvalidArgument, "invalid feature value: %s", value)
}
