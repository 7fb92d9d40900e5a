/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package store

import "fmt"

// GraphError reports a structural defect in the exports-info graph: a
// handle that does not dereference to the kind of record the caller
// expected. These indicate a bug upstream in how the graph was built (see
// spec §7, "Structural errors") and are returned, not panicked, so the host
// can turn them into a fatal build error the way it does for any other
// setup failure.
type GraphError struct {
	Handle  int
	Message string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("exports-info graph: handle %d: %s", e.Handle, e.Message)
}

func newGraphError(handle int, format string, args ...any) *GraphError {
	return &GraphError{Handle: handle, Message: fmt.Sprintf(format, args...)}
}

// NewGraphError constructs a GraphError for callers outside this package
// (propagate's target resolution reports a missing dependency connection
// this way, per spec §7's "structural errors" taxonomy).
func NewGraphError(handle int, format string, args ...any) *GraphError {
	return newGraphError(handle, format, args...)
}
