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

import (
	"sort"

	O "github.com/IBM/fp-go/option"
)

// ExportEntry is one (name, handle) pair as returned by Exports/OrderedExports.
type ExportEntry struct {
	Name   string
	Handle ExportInfoHandle
}

// GetReadOnlyExportInfo resolves name against exportsInfo without creating a
// record: an existing entry wins, otherwise the lookup chains through
// redirect_to, and finally falls back to other_exports_info.
func (s *Store) GetReadOnlyExportInfo(exportsInfo ExportsInfoHandle, name string) (ExportInfoHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getReadOnlyExportInfoLocked(exportsInfo, name)
}

func (s *Store) getReadOnlyExportInfoLocked(exportsInfo ExportsInfoHandle, name string) (ExportInfoHandle, error) {
	rec, err := s.exportsInfo(exportsInfo)
	if err != nil {
		return 0, err
	}
	if h, ok := rec.exports[name]; ok {
		return h, nil
	}
	if target, ok := unwrap(rec.redirectTo); ok {
		return s.getReadOnlyExportInfoLocked(target, name)
	}
	return rec.otherExportsInfo, nil
}

// GetReadOnlyExportInfoRecursive walks path by descending into nested
// namespaces one segment at a time. It returns ok=false when an
// intermediate segment has no nested exports-info to descend into.
func (s *Store) GetReadOnlyExportInfoRecursive(exportsInfo ExportsInfoHandle, path []string) (ExportInfoHandle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(path) == 0 {
		return 0, false, newGraphError(int(exportsInfo), "empty export path")
	}
	current := exportsInfo
	for i, name := range path {
		h, err := s.getReadOnlyExportInfoLocked(current, name)
		if err != nil {
			return 0, false, err
		}
		if i == len(path)-1 {
			return h, true, nil
		}
		exRec, err := s.exportInfo(h)
		if err != nil {
			return 0, false, err
		}
		nested, ok := unwrap(exRec.exportsInfo)
		if !ok {
			return 0, false, nil
		}
		current = nested
	}
	return 0, false, nil
}

// Exports returns every concretely-discovered (name, handle) entry, in
// whatever order the underlying map happens to give — use OrderedExports
// when iteration order must be deterministic.
func (s *Store) Exports(exportsInfo ExportsInfoHandle) ([]ExportEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportsInfo(exportsInfo)
	if err != nil {
		return nil, err
	}
	out := make([]ExportEntry, 0, len(rec.exports))
	for name, h := range rec.exports {
		out = append(out, ExportEntry{Name: name, Handle: h})
	}
	return out, nil
}

// OrderedExports returns every entry sorted by name. This is the order
// referenced-export expansion and content hashing both depend on for
// determinism (spec §8 property 2, "ordered_exports produces identical name
// sequences").
func (s *Store) OrderedExports(exportsInfo ExportsInfoHandle) ([]ExportEntry, error) {
	entries, err := s.Exports(exportsInfo)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// IsExportProvided resolves every segment of path to its provision verdict.
// A Provided result requires every segment to be concretely provided; an
// Unknown segment propagates Unknown for the whole path; a NotProvided
// segment, or a missing nested namespace, short-circuits to "no verdict"
// (ok=false).
func (s *Store) IsExportProvided(exportsInfo ExportsInfoHandle, path []string) (ExportProvided, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	current := exportsInfo
	sawUnknown := false
	for i, name := range path {
		h, err := s.getReadOnlyExportInfoLocked(current, name)
		if err != nil {
			return 0, false, err
		}
		exRec, err := s.exportInfo(h)
		if err != nil {
			return 0, false, err
		}
		switch exRec.provided {
		case ProvidedNotProvided:
			return 0, false, nil
		case ProvidedUnknown:
			sawUnknown = true
		case ProvidedUnset:
			return 0, false, nil
		}
		if i == len(path)-1 {
			break
		}
		nested, ok := unwrap(exRec.exportsInfo)
		if !ok {
			return 0, false, nil
		}
		current = nested
	}
	if sawUnknown {
		return ExportProvidedUnknown, true, nil
	}
	return ExportProvidedProvided, true, nil
}

// CanMangleProvide and CanMangleUse are small accessors used by
// propagate.CanMangle without it needing to reach into unexported fields.

// CanMangleProvide returns the export's raw can_mangle_provide flag.
func (s *Store) CanMangleProvide(h ExportInfoHandle) (O.Option[bool], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportInfo(h)
	if err != nil {
		return O.None[bool](), err
	}
	return rec.canMangleProvide, nil
}

// CanMangleUse returns the export's raw can_mangle_use flag.
func (s *Store) CanMangleUse(h ExportInfoHandle) (O.Option[bool], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportInfo(h)
	if err != nil {
		return O.None[bool](), err
	}
	return rec.canMangleUse, nil
}

// Provided returns the export's raw four-valued provision field.
func (s *Store) Provided(h ExportInfoHandle) (Provided, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportInfo(h)
	if err != nil {
		return ProvidedUnset, err
	}
	return rec.provided, nil
}

// TerminalBinding reports whether the export resolves to a concrete local
// binding rather than a re-export.
func (s *Store) TerminalBinding(h ExportInfoHandle) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportInfo(h)
	if err != nil {
		return false, err
	}
	return rec.terminalBinding, nil
}

// UsedName returns the export's mangled emission name, falling back to its
// declared name when none has been assigned.
func (s *Store) UsedName(h ExportInfoHandle) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportInfo(h)
	if err != nil {
		return "", err
	}
	if used, ok := unwrap(rec.usedName); ok {
		return used, nil
	}
	name, _ := unwrap(rec.name)
	return name, nil
}

// UsageRaw exposes an export's raw usage fields for propagate.GetUsed to
// fold over: whether usage tracking has ever been activated, the
// runtime-independent overall state (if the build isn't runtime-partitioned),
// and the per-runtime map (nil/empty meaning "unused everywhere").
func (s *Store) UsageRaw(h ExportInfoHandle) (hasUseInfo bool, global O.Option[UsageState], perRuntime map[string]UsageState, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportInfo(h)
	if err != nil {
		return false, O.None[UsageState](), nil, err
	}
	out := make(map[string]UsageState, len(rec.usedInRuntime))
	for k, v := range rec.usedInRuntime {
		out[k] = v
	}
	return rec.hasUseInRuntimeInfo, rec.globalUsed, out, nil
}

// Targets returns the export's raw target map (keyed by the optional
// dependency-key, "" meaning "no specific key") and whether target_is_set
// has ever been written (invariant 5: an explicit empty set must be
// distinguishable from "never set").
func (s *Store) Targets(h ExportInfoHandle) (map[string]TargetItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportInfo(h)
	if err != nil {
		return nil, false, err
	}
	out := make(map[string]TargetItem, len(rec.target))
	for k, v := range rec.target {
		out[k] = v
	}
	return out, rec.targetIsSet, nil
}
