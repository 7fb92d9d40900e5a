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

package propagate

import (
	O "github.com/IBM/fp-go/option"
	"webbundle.dev/xgraph/store"
)

// CanMangle returns Some(true) only when both can_mangle_provide and
// can_mangle_use are Some(true); Some(false) if either side is explicitly
// Some(false); otherwise None ("unknown, do not mangle" — a missing answer
// on either side must never collapse to an eager "yes").
func CanMangle(s *store.Store, export store.ExportInfoHandle) (O.Option[bool], error) {
	provide, err := s.CanMangleProvide(export)
	if err != nil {
		return O.None[bool](), err
	}
	use, err := s.CanMangleUse(export)
	if err != nil {
		return O.None[bool](), err
	}

	provideVal, provideOk := unwrapBool(provide)
	useVal, useOk := unwrapBool(use)

	if provideOk && !provideVal {
		return O.Some(false), nil
	}
	if useOk && !useVal {
		return O.Some(false), nil
	}
	if provideOk && useOk && provideVal && useVal {
		return O.Some(true), nil
	}
	return O.None[bool](), nil
}

func unwrapBool(o O.Option[bool]) (bool, bool) {
	if !O.IsSome(o) {
		return false, false
	}
	return O.Fold(func() bool { return false }, func(v bool) bool { return v })(o), true
}
