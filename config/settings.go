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

import (
	"github.com/BurntSushi/toml"
)

// Settings holds the process-wide options the control plane boots with.
// All fields have sane defaults (Defaults()); an on-disk TOML file is
// optional and only overrides what it mentions.
type Settings struct {
	// ListenAddr is the REST/WebSocket bind address, spec §6.5 default
	// ":8090" (TCP 8090, IPv4 any-address).
	ListenAddr string `toml:"listen_addr"`

	// BatchPoolSize is the fixed worker-pool size for the batch command
	// dispatcher, spec §4.6 default 4.
	BatchPoolSize int `toml:"batch_pool_size"`

	// SnapshotDir and DiskImageDir name default directories for snapshot
	// and disk-image files. They are loaded from the file but nothing in
	// this module reads them: request paths are used as given.
	SnapshotDir  string `toml:"snapshot_dir"`
	DiskImageDir string `toml:"disk_image_dir"`

	// LogTail is a log-entry count. It is loaded from the file but nothing
	// in this module reads it; the default logger's ring size is fixed in
	// package logger.
	LogTail int `toml:"log_tail"`
}

// Defaults returns the settings the control plane uses when no
// configuration file is supplied.
func Defaults() Settings {
	return Settings{
		ListenAddr:    ":8090",
		BatchPoolSize: 4,
		SnapshotDir:   ".",
		DiskImageDir:  ".",
		LogTail:       1000,
	}
}

// LoadFile reads a TOML configuration file and overlays it onto Defaults.
// A missing or empty path is not an error: Defaults() is returned as-is.
func LoadFile(path string) (Settings, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
