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

import "webbundle.dev/xgraph/store"

// GetUsedName resolves path to the sequence of names the emitter should
// actually write. Per the resolved Open Question in spec §9: once a
// segment's own usage is anything other than OnlyPropertiesUsed, the
// remaining suffix is appended *unmangled* rather than recursively
// resolved through each nested used_name — this is intentional upstream
// behavior, not an oversight, and must be preserved even though a naive
// reimplementation would expect every segment to go through the same
// mangling pass.
func GetUsedName(s *store.Store, exportsInfo store.ExportsInfoHandle, path []string, runtime RuntimeSpec) ([]string, error) {
	if len(path) == 0 {
		return nil, nil
	}
	first := path[0]
	h, err := s.GetReadOnlyExportInfo(exportsInfo, first)
	if err != nil {
		return nil, err
	}
	usedName, err := s.UsedName(h)
	if err != nil {
		return nil, err
	}
	if len(path) == 1 {
		return []string{usedName}, nil
	}

	used, err := GetUsed(s, h, runtime)
	if err != nil {
		return nil, err
	}
	if used != store.OnlyPropertiesUsed {
		return append([]string{usedName}, path[1:]...), nil
	}

	nested, err := s.NestedExportsInfo(h)
	if err != nil {
		return nil, err
	}
	nestedHandle, ok := nestedUnwrap(nested)
	if !ok {
		return append([]string{usedName}, path[1:]...), nil
	}

	rest, err := GetUsedName(s, nestedHandle, path[1:], runtime)
	if err != nil {
		return nil, err
	}
	return append([]string{usedName}, rest...), nil
}
