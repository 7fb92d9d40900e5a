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
	"fmt"

	"webbundle.dev/xgraph/set"
	"webbundle.dev/xgraph/store"
)

// ProcessExportInfo computes the referenced-export expansion for a single
// export: the list of full export-paths actually read, given its usage
// state and (if partially used) its nested namespace. An Unused export
// contributes nothing; anything used beyond OnlyPropertiesUsed contributes
// its whole prefix; OnlyPropertiesUsed recurses into the nested
// exports-info, one path segment per nested export name.
//
// defaultPointsToSelf keeps the accumulated prefix unchanged when recursing
// into an export literally named "default" (the re-export idiom
// `export { x as default }` binds the namespace's own surface onto
// `default`, so `default.y` and `y` denote the same read).
func ProcessExportInfo(
	s *store.Store,
	runtime RuntimeSpec,
	export store.ExportInfoHandle,
	prefix []string,
	defaultPointsToSelf bool,
	visited set.Set[store.ExportInfoHandle],
) ([][]string, error) {
	var out [][]string
	err := processExportInfo(s, runtime, export, prefix, defaultPointsToSelf, visited, &out)
	return out, err
}

func processExportInfo(
	s *store.Store,
	runtime RuntimeSpec,
	export store.ExportInfoHandle,
	prefix []string,
	defaultPointsToSelf bool,
	visited set.Set[store.ExportInfoHandle],
	out *[][]string,
) error {
	used, err := GetUsed(s, export, runtime)
	if err != nil {
		return err
	}
	if used == store.Unused {
		return nil
	}
	if visited.Has(export) {
		*out = append(*out, prefix)
		return nil
	}
	visited.Add(export)
	defer delete(visited, export)

	if used != store.OnlyPropertiesUsed {
		*out = append(*out, prefix)
		return nil
	}

	nested, err := s.NestedExportsInfo(export)
	if err != nil {
		return err
	}
	nestedHandle, ok := nestedUnwrap(nested)
	if !ok {
		// Used for properties but has no nested namespace to descend into:
		// treat like the whole prefix is the finest resolvable path.
		*out = append(*out, prefix)
		return nil
	}

	entries, err := s.OrderedExports(nestedHandle)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		childPrefix := prefix
		if !(defaultPointsToSelf && entry.Name == "default") {
			childPrefix = append(append([]string{}, prefix...), entry.Name)
		}
		if err := processExportInfo(s, runtime, entry.Handle, childPrefix, false, visited, out); err != nil {
			return err
		}
	}
	return nil
}

// DebugDescribeTarget renders a resolved target as "module:path" (or
// "module:*" for a whole-namespace target) for the cmd report command.
func DebugDescribeTarget(t ResolvedTarget) string {
	path, ok := unwrapPath(t.ExportPath)
	if !ok {
		return fmt.Sprintf("%d:*", t.Module)
	}
	return fmt.Sprintf("%d:%v", t.Module, path)
}
