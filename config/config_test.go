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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zxfleet/core/config"
	"github.com/zxfleet/core/zxerrors"
)

func TestParseModel(t *testing.T) {
	cases := map[string]config.Model{
		"":     config.Spectrum48K,
		"48K":  config.Spectrum48K,
		"128k": config.Spectrum128K,
		"+2":   config.SpectrumPlus2,
		"+3":   config.SpectrumPlus3,
	}
	for in, want := range cases {
		got, err := config.ParseModel(in)
		if err != nil {
			t.Fatalf("ParseModel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseModel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := config.ParseModel("atari"); !zxerrors.Is(err, zxerrors.InvalidArgument) {
		t.Errorf("expected InvalidArgument for unknown model, got %v", err)
	}
}

func TestValidateRAM(t *testing.T) {
	if !config.ValidateRAM(config.Spectrum48K, 48) {
		t.Error("48 KiB should be valid for 48K model")
	}
	if config.ValidateRAM(config.Spectrum48K, 128) {
		t.Error("128 KiB should be invalid for 48K model")
	}
	if !config.ValidateRAM(config.Spectrum128K, 0) {
		t.Error("RAM size 0 (meaning: use model default) should always validate")
	}
}

func TestFeaturesSet(t *testing.T) {
	f := config.DefaultFeatures()
	if err := f.Set(config.FeatureSound, "off"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if f.SoundEnabled {
		t.Error("expected sound to be disabled")
	}

	if err := f.Set("bogus", "on"); !zxerrors.Is(err, zxerrors.InvalidArgument) {
		t.Errorf("expected InvalidArgument for unknown feature, got %v", err)
	}

	if err := f.Set(config.FeatureSound, "maybe"); !zxerrors.Is(err, zxerrors.InvalidArgument) {
		t.Errorf("expected InvalidArgument for unparseable value, got %v", err)
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zxfleet.toml")
	if err := os.WriteFile(path, []byte("batch_pool_size = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.BatchPoolSize != 8 {
		t.Errorf("expected overridden BatchPoolSize 8, got %d", s.BatchPoolSize)
	}
	if s.ListenAddr != ":8090" {
		t.Errorf("expected default ListenAddr to survive, got %q", s.ListenAddr)
	}
}

func TestLoadFileEmptyPath(t *testing.T) {
	s, err := config.LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile(\"\"): %v", err)
	}
	if s != config.Defaults() {
		t.Errorf("expected defaults for empty path")
	}
}
