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

package zxerrors_test

import (
	"fmt"
	"testing"

	"github.com/zxfleet/core/zxerrors"
)

func TestKindOf(t *testing.T) {
	err := zxerrors.New(zxerrors.NotFound, "instance not found: %s", "emu-001")
	if zxerrors.KindOf(err) != zxerrors.NotFound {
		t.Errorf("expected NotFound, got %v", zxerrors.KindOf(err))
	}
	if !zxerrors.Is(err, zxerrors.NotFound) {
		t.Errorf("expected Is(err, NotFound) to be true")
	}
	if zxerrors.Is(err, zxerrors.Internal) {
		t.Errorf("expected Is(err, Internal) to be false")
	}
}

func TestKindOfUncurated(t *testing.T) {
	err := fmt.Errorf("plain error")
	if zxerrors.KindOf(err) != zxerrors.Internal {
		t.Errorf("expected plain error to be treated as Internal, got %v", zxerrors.KindOf(err))
	}
}

func TestDeduplication(t *testing.T) {
	inner := zxerrors.New(zxerrors.InvalidFormat, "invalid format")
	outer := zxerrors.New(zxerrors.InvalidFormat, "invalid format: %v", inner)
	if outer.Error() != "invalid format" {
		t.Errorf("expected deduplicated message, got %q", outer.Error())
	}
}

func TestKindString(t *testing.T) {
	cases := map[zxerrors.Kind]string{
		zxerrors.NotFound:        "NotFound",
		zxerrors.InvalidArgument: "InvalidArgument",
		zxerrors.InvalidState:    "InvalidState",
		zxerrors.InvalidFormat:   "InvalidFormat",
		zxerrors.NotBatchable:    "NotBatchable",
		zxerrors.IoError:         "IoError",
		zxerrors.Unavailable:     "Unavailable",
		zxerrors.Internal:        "Internal",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
