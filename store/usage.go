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
	O "github.com/IBM/fp-go/option"
)

// SetHasUseInfo activates usage tracking (has_use_in_runtime_info) on every
// known export plus other_exports_info and side_effects_only_info, so a
// later read distinguishes "never analyzed" from "analyzed, unused".
func (s *Store) SetHasUseInfo(exportsInfo ExportsInfoHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.exportsInfo(exportsInfo)
	if err != nil {
		return err
	}
	for _, eh := range rec.exports {
		if err := s.activateUseInfo(eh); err != nil {
			return err
		}
	}
	if err := s.activateUseInfo(rec.otherExportsInfo); err != nil {
		return err
	}
	return s.activateUseInfo(rec.sideEffectsOnlyInfo)
}

func (s *Store) activateUseInfo(h ExportInfoHandle) error {
	rec, err := s.exportInfo(h)
	if err != nil {
		return err
	}
	rec.hasUseInRuntimeInfo = true
	return nil
}

// forEachExport applies fn to every known export plus other_exports_info,
// returning whether any call reported a change.
func (s *Store) forEachExport(exportsInfo ExportsInfoHandle, fn func(*exportInfoRecord) bool) (bool, error) {
	rec, err := s.exportsInfo(exportsInfo)
	if err != nil {
		return false, err
	}
	changed := false
	for _, eh := range rec.exports {
		exRec, err := s.exportInfo(eh)
		if err != nil {
			return false, err
		}
		if fn(exRec) {
			changed = true
		}
	}
	other, err := s.exportInfo(rec.otherExportsInfo)
	if err != nil {
		return false, err
	}
	if fn(other) {
		changed = true
	}
	return changed, nil
}

// SetUsedWithoutInfo forces every export (and other_exports_info) to
// NoInfo for runtime and clears can_mangle_use — used when analysis gives
// up on knowing which names are read (e.g. `eval`, re-export of an
// external module).
func (s *Store) SetUsedWithoutInfo(exportsInfo ExportsInfoHandle, runtime string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forEachExport(exportsInfo, func(rec *exportInfoRecord) bool {
		changed := writeUsed(rec, NoInfo, runtime)
		if O.IsSome(rec.canMangleUse) {
			if v, _ := unwrap(rec.canMangleUse); v {
				changed = true
			}
		}
		rec.canMangleUse = O.Some(false)
		return changed
	})
}

// SetAllKnownExportsUsed raises to Used only those exports whose provided
// field is exactly Provided — it never invents usage for exports that are
// merely Unknown or not yet analyzed.
func (s *Store) SetAllKnownExportsUsed(exportsInfo ExportsInfoHandle, runtime string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forEachExport(exportsInfo, func(rec *exportInfoRecord) bool {
		if rec.provided != ProvidedProvided {
			return false
		}
		return raiseUsed(rec, Used, runtime)
	})
}

// SetUsedInUnknownWay raises any export currently below Unknown up to
// Unknown — used when a dynamic access pattern (`obj[x]`) makes it
// impossible to know exactly which names are read, but rules out "entirely
// unused".
func (s *Store) SetUsedInUnknownWay(exportsInfo ExportsInfoHandle, runtime string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forEachExport(exportsInfo, func(rec *exportInfoRecord) bool {
		return raiseUsed(rec, Unknown, runtime)
	})
}

// SetUsedForSideEffectsOnly flips side_effects_only_info from Unused to
// Used, keeping the module alive even when every named export ends up
// unused.
func (s *Store) SetUsedForSideEffectsOnly(exportsInfo ExportsInfoHandle, runtime string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.exportsInfo(exportsInfo)
	if err != nil {
		return false, err
	}
	sideRec, err := s.exportInfo(rec.sideEffectsOnlyInfo)
	if err != nil {
		return false, err
	}
	return raiseUsed(sideRec, Used, runtime), nil
}

// SetUsed writes state for runtime (empty string meaning "no runtime
// partitioning", writing global_used instead of used_in_runtime). Writing
// Unused removes the entry outright; an emptied used_in_runtime map is
// normalized back to absent (invariant 4).
func (s *Store) SetUsed(export ExportInfoHandle, state UsageState, runtime string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.exportInfo(export)
	if err != nil {
		return err
	}
	writeUsed(rec, state, runtime)
	return nil
}

// SetUsedConditionally writes state for runtime only when pred holds for
// the export's current usage state for that runtime. This is how callers
// implement a monotone raise without the store itself enforcing ordering
// globally (spec §4.1, "the store does not enforce monotonicity globally").
func (s *Store) SetUsedConditionally(export ExportInfoHandle, pred func(current UsageState) bool, state UsageState, runtime string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.exportInfo(export)
	if err != nil {
		return false, err
	}
	current := currentUsed(rec, runtime)
	if !pred(current) {
		return false, nil
	}
	writeUsed(rec, state, runtime)
	return true, nil
}

func currentUsed(rec *exportInfoRecord, runtime string) UsageState {
	if runtime == "" {
		if v, ok := unwrap(rec.globalUsed); ok {
			return v
		}
		return Unused
	}
	if v, ok := rec.usedInRuntime[runtime]; ok {
		return v
	}
	return Unused
}

// writeUsed performs the actual write + normalization (invariant 4) and
// reports whether the stored value changed.
func writeUsed(rec *exportInfoRecord, state UsageState, runtime string) bool {
	if runtime == "" {
		before, hadBefore := unwrap(rec.globalUsed)
		if state == Unused {
			rec.globalUsed = O.None[UsageState]()
		} else {
			rec.globalUsed = O.Some(state)
		}
		return !hadBefore || before != state
	}
	before, hadBefore := rec.usedInRuntime[runtime]
	if state == Unused {
		delete(rec.usedInRuntime, runtime)
	} else {
		if rec.usedInRuntime == nil {
			rec.usedInRuntime = map[string]UsageState{}
		}
		rec.usedInRuntime[runtime] = state
	}
	if len(rec.usedInRuntime) == 0 {
		rec.usedInRuntime = nil
	}
	return !hadBefore || before != state
}

// raiseUsed writes state only if it is strictly greater than the export's
// current usage for runtime, implementing the monotone-raise pattern that
// SetAllKnownExportsUsed, SetUsedInUnknownWay and SetUsedForSideEffectsOnly
// share (SetUsedWithoutInfo writes NoInfo directly via writeUsed).
func raiseUsed(rec *exportInfoRecord, state UsageState, runtime string) bool {
	if currentUsed(rec, runtime) >= state {
		return false
	}
	writeUsed(rec, state, runtime)
	return true
}
