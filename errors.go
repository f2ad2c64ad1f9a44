/*
Copyright © 2019 the waternc authors.
This file is part of waternc.

waternc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

waternc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with waternc.  If not, see <http://www.gnu.org/licenses/>.
*/

package waternc

import "fmt"

// The conversion is all or nothing: every error kind below is fatal,
// and a failed run leaves no valid partial archive behind. Callers
// match kinds with errors.As; the converter wraps reader errors with
// the file path and archive variable name.

// A ConfigError reports a recipe stream that is unreadable, short, or
// malformed.
type ConfigError struct {
	Field string // the recipe field being read when the error occurred
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("reading recipe field %q: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// An OpenError reports an input matrix file that could not be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("opening %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// A TruncationError reports an input stream that ended before the
// expected extent was read.
type TruncationError struct {
	What string // the extent that came up short
	Year int    // calendar year being read, if the input is year-blocked
	Err  error  // underlying read error, if any
}

func (e *TruncationError) Error() string {
	s := "short read of " + e.What
	if e.Year != 0 {
		s += fmt.Sprintf(" in year %d", e.Year)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *TruncationError) Unwrap() error { return e.Err }

// A FieldError reports a malformed or missing numeric field in the
// population text table.
type FieldError struct {
	Region int // zero-based region row
	Year   int // zero-based year column within the row
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("parsing population table: region %d, year %d: %v",
		e.Region, e.Year, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// An ArchiveError reports a failure creating, defining, or writing
// the output archive.
type ArchiveError struct {
	Op  string // the definition or write step that failed
	Err error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive: %s: %v", e.Op, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }
