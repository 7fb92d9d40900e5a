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

// GetExportInfo behaves like GetReadOnlyExportInfo, except that when no
// record exists for name it materializes one from other_exports_info:
// used_name, global_used, used_in_runtime, provided, terminal_binding,
// can_mangle_* and a cloned target map are all copied, with each target
// entry's export path defaulted to [name]. Two sequential calls with the
// same name are guaranteed to return the same handle (spec §8 property 2).
func (s *Store) GetExportInfo(exportsInfo ExportsInfoHandle, name string) (ExportInfoHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getExportInfoLocked(exportsInfo, name)
}

func (s *Store) getExportInfoLocked(exportsInfo ExportsInfoHandle, name string) (ExportInfoHandle, error) {
	rec, err := s.exportsInfo(exportsInfo)
	if err != nil {
		return 0, err
	}
	if h, ok := rec.exports[name]; ok {
		return h, nil
	}
	if target, ok := unwrap(rec.redirectTo); ok {
		return s.getExportInfoLocked(target, name)
	}
	template, err := s.exportInfo(rec.otherExportsInfo)
	if err != nil {
		return 0, err
	}
	h := s.newExportInfoFromTemplate(name, template)
	rec.exports[name] = h
	return h, nil
}

// newExportInfoFromTemplate clones template's fields into a freshly
// allocated, named record. Per the resolved Open Question in spec §9: when
// the template's target_is_set is true but its target map is empty, the
// cloned record's target is *not* left empty — it is replaced with the
// single default entry {export: [name]}, matching upstream's observable
// (if surprising) behavior.
func (s *Store) newExportInfoFromTemplate(name string, template *exportInfoRecord) ExportInfoHandle {
	h := ExportInfoHandle(len(s.exportInfos))
	clone := template.clone()
	clone.id = h
	clone.name = O.Some(name)
	clone.exportsInfo = O.None[ExportsInfoHandle]()
	clone.exportsInfoOwned = false

	if clone.targetIsSet && len(clone.target) == 0 {
		clone.target = map[string]TargetItem{
			defaultTargetKey: {ExportPath: O.Some([]string{name})},
		}
	} else {
		for k, v := range clone.target {
			if _, ok := unwrap(v.ExportPath); !ok {
				v.ExportPath = O.Some([]string{name})
				clone.target[k] = v
			}
		}
	}
	s.exportInfos = append(s.exportInfos, clone)
	return h
}

// SetHasProvideInfo fills every Unset provided field (on every known export
// and on other_exports_info) with NotProvided, and every unset
// can_mangle_provide with true, recursing through redirect_to. It is
// idempotent: calling it a second time changes nothing.
func (s *Store) SetHasProvideInfo(exportsInfo ExportsInfoHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setHasProvideInfoLocked(exportsInfo, map[ExportsInfoHandle]bool{})
}

func (s *Store) setHasProvideInfoLocked(h ExportsInfoHandle, visited map[ExportsInfoHandle]bool) error {
	if visited[h] {
		return nil
	}
	visited[h] = true
	rec, err := s.exportsInfo(h)
	if err != nil {
		return err
	}
	for _, eh := range rec.exports {
		if err := s.fillProvideDefaults(eh); err != nil {
			return err
		}
	}
	if err := s.fillProvideDefaults(rec.otherExportsInfo); err != nil {
		return err
	}
	if target, ok := unwrap(rec.redirectTo); ok {
		return s.setHasProvideInfoLocked(target, visited)
	}
	return nil
}

func (s *Store) fillProvideDefaults(h ExportInfoHandle) error {
	rec, err := s.exportInfo(h)
	if err != nil {
		return err
	}
	if rec.provided == ProvidedUnset {
		rec.provided = ProvidedNotProvided
	}
	if !O.IsSome(rec.canMangleProvide) {
		rec.canMangleProvide = O.Some(true)
	}
	return nil
}

// SetUnknownExportsProvided marks every non-excluded export Unknown (unless
// already Provided or Unknown), clears can_mangle_provide when
// canMangle=false, and installs target on each affected export — and, when
// exportsInfo has no redirect, on other_exports_info too, since a module
// with an unknown export surface may yield names never seen statically.
// Returns whether anything actually changed, so callers running a fixed
// point can stop repeating.
func (s *Store) SetUnknownExportsProvided(
	exportsInfo ExportsInfoHandle,
	canMangle bool,
	exclude []string,
	target TargetItem,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.exportsInfo(exportsInfo)
	if err != nil {
		return false, err
	}
	excludeSet := make(map[string]bool, len(exclude))
	for _, n := range exclude {
		excludeSet[n] = true
	}

	changed := false
	for name, eh := range rec.exports {
		if excludeSet[name] {
			c, err := s.clearCanMangleProvide(eh, canMangle)
			if err != nil {
				return false, err
			}
			changed = changed || c
			continue
		}
		c, err := s.markUnknownProvided(eh, canMangle, target)
		if err != nil {
			return false, err
		}
		changed = changed || c
	}

	if _, ok := unwrap(rec.redirectTo); !ok {
		c, err := s.markUnknownProvided(rec.otherExportsInfo, canMangle, target)
		if err != nil {
			return false, err
		}
		changed = changed || c
	}

	return changed, nil
}

// clearCanMangleProvide forces h's can_mangle_provide to false, regardless
// of whether h is excluded from the provided/target writes below: the rust
// original clears it for every export SetUnknownExportsProvided touches,
// excluded or not, and only the provided/target writes are skipped for
// excluded names.
func (s *Store) clearCanMangleProvide(h ExportInfoHandle, canMangle bool) (bool, error) {
	rec, err := s.exportInfo(h)
	if err != nil {
		return false, err
	}
	if canMangle {
		return false, nil
	}
	changed := false
	if v, ok := unwrap(rec.canMangleProvide); ok && v {
		changed = true
	}
	rec.canMangleProvide = O.Some(false)
	return changed, nil
}

func (s *Store) markUnknownProvided(h ExportInfoHandle, canMangle bool, target TargetItem) (bool, error) {
	changed, err := s.clearCanMangleProvide(h, canMangle)
	if err != nil {
		return false, err
	}
	rec, err := s.exportInfo(h)
	if err != nil {
		return false, err
	}
	if rec.provided != ProvidedProvided && rec.provided != ProvidedUnknown {
		rec.provided = ProvidedUnknown
		changed = true
	}
	rec.target[defaultTargetKey] = target
	rec.targetIsSet = true
	return changed, nil
}

// SetTarget installs target under key (the empty string meaning "no
// specific dependency-key") on export, setting target_is_set so a later
// GetExportInfo clone knows the map was explicitly written even if it ends
// up empty (invariant 5).
func (s *Store) SetTarget(export ExportInfoHandle, key string, target O.Option[TargetItem]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.exportInfo(export)
	if err != nil {
		return err
	}
	rec.targetIsSet = true
	if item, ok := unwrap(target); ok {
		rec.target[key] = item
	} else {
		delete(rec.target, key)
	}
	return nil
}

// SetProvided directly writes the four-valued provision verdict, used by
// ingest when static analysis has a concrete answer for a discovered name.
func (s *Store) SetProvided(export ExportInfoHandle, p Provided) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.exportInfo(export)
	if err != nil {
		return err
	}
	rec.provided = p
	return nil
}

// SetTerminalBinding marks export as resolving to a concrete local binding.
func (s *Store) SetTerminalBinding(export ExportInfoHandle, terminal bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.exportInfo(export)
	if err != nil {
		return err
	}
	rec.terminalBinding = terminal
	return nil
}

// SetUsedName assigns the mangled emission name.
func (s *Store) SetUsedName(export ExportInfoHandle, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.exportInfo(export)
	if err != nil {
		return err
	}
	rec.usedName = O.Some(name)
	return nil
}

// SetCanMangleProvide/SetCanMangleUse write the optional mangle flags
// explicitly (as opposed to the implicit defaulting SetHasProvideInfo does).
func (s *Store) SetCanMangleProvide(export ExportInfoHandle, v O.Option[bool]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.exportInfo(export)
	if err != nil {
		return err
	}
	rec.canMangleProvide = v
	return nil
}

func (s *Store) SetCanMangleUse(export ExportInfoHandle, v O.Option[bool]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.exportInfo(export)
	if err != nil {
		return err
	}
	rec.canMangleUse = v
	return nil
}
