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

// Package fileload is the single place snapshot and disk-image load/save
// operations go to turn a client-supplied path into bytes (and back). It
// understands local paths and http(s) URLs, the same scheme-switched
// loading the cartridge loader used, narrowed down to what this core
// needs: a byte slice in, a byte slice out, with no per-format
// fingerprinting.
package fileload

import (
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/zxfleet/core/logger"
	"github.com/zxfleet/core/zxerrors"
)

// Load reads the content addressed by path. An http:// or https:// path
// is fetched over the network; anything else is treated as a local
// filesystem path.
func Load(path string) ([]byte, error) {
	if path == "" {
		return nil, zxerrors.New(zxerrors.InvalidArgument, "path is empty")
	}

	scheme := ""
	if u, err := url.Parse(path); err == nil {
		scheme = u.Scheme
	}

	switch scheme {
	case "http", "https":
		logger.Logf("fileload", "fetching %s", path)
		resp, err := http.Get(path)
		if err != nil {
			return nil, zxerrors.New(zxerrors.IoError, "fetching %s: %s", path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, zxerrors.New(zxerrors.IoError, "fetching %s: status %s", path, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, zxerrors.New(zxerrors.IoError, "reading %s: %s", path, err)
		}
		return data, nil
	default:
		logger.Logf("fileload", "reading %s", path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, zxerrors.New(zxerrors.IoError, "reading %s: %s", path, err)
		}
		return data, nil
	}
}

// Save writes data to the local filesystem path. Saving to a remote URL
// is not supported; the control plane only ever saves to paths it will
// later be asked to load back from the same machine.
func Save(path string, data []byte) error {
	if path == "" {
		return zxerrors.New(zxerrors.InvalidArgument, "path is empty")
	}
	if u, err := url.Parse(path); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return zxerrors.New(zxerrors.InvalidArgument, "cannot save to a remote URL: %s", path)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return zxerrors.New(zxerrors.IoError, "writing %s: %s", path, err)
	}
	logger.Logf("fileload", "wrote %s (%d bytes)", path, len(data))
	return nil
}
