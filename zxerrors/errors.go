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

// Package zxerrors is a helper package for the plain Go error type. Errors
// constructed here are curated: each carries one of a closed set of Kind
// values so that callers anywhere in the fleet (HTTP handlers, batch
// workers, snapshot/disk codecs) can make decisions based on the kind of
// failure without string matching.
package zxerrors

import (
	"fmt"
	"strings"
)

// Kind is one of the closed taxonomy of failure categories the control
// plane can report to a client.
type Kind int

// The complete list of error kinds. Every curated error has exactly one.
const (
	NotFound Kind = iota
	InvalidArgument
	InvalidState
	InvalidFormat
	NotBatchable
	IoError
	Unavailable
	Internal
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case InvalidArgument:
		return "InvalidArgument"
	case InvalidState:
		return "InvalidState"
	case InvalidFormat:
		return "InvalidFormat"
	case NotBatchable:
		return "NotBatchable"
	case IoError:
		return "IoError"
	case Unavailable:
		return "Unavailable"
	case Internal:
		return "Internal"
	}
	return "Unknown"
}

// Values is the type used to specify arguments for a curated error message.
type Values []interface{}

// curated is the concrete error type returned by New/Errorf. External to
// this package, curated errors are referenced as plain errors (they
// implement the error interface).
type curated struct {
	kind    Kind
	message string
	values  Values
}

// New creates a curated error of the given kind.
func New(kind Kind, message string, values ...interface{}) error {
	return curated{kind: kind, message: message, values: values}
}

// Error implements the go language error interface. The message is
// normalised by removing duplicate adjacent parts, the same de-duplication
// rule a chain of wrapped curated errors accumulates under repeated
// wrapping.
func (e curated) Error() string {
	s := fmt.Errorf(e.message, e.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}
	return strings.Join(p, ": ")
}

// Kind returns the error's curated kind.
func (e curated) Kind() Kind {
	return e.kind
}

// KindOf extracts the Kind of a curated error. Plain (non-curated) errors
// are reported as Internal, on the assumption that an uncurated error
// reaching a control-plane boundary is itself a defect.
func KindOf(err error) Kind {
	if err == nil {
		return Internal
	}
	if e, ok := err.(curated); ok {
		return e.kind
	}
	return Internal
}

// Is reports whether err is a curated error of the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	e, ok := err.(curated)
	return ok && e.kind == kind
}

// Head returns the leading part of a curated error's message, or the plain
// Error() string for an uncurated error. Useful in switch statements.
func Head(err error) string {
	if e, ok := err.(curated); ok {
		return e.message
	}
	return err.Error()
}
