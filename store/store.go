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
	"sync"

	O "github.com/IBM/fp-go/option"
)

// Store is the arena holding every ExportsInfoData and ExportInfoData
// record for a single build. Mutating operations require the exclusive
// (write) lock; query operations take the shared (read) lock, matching the
// single-owner-during-mutation discipline of spec §5.
type Store struct {
	mu           sync.RWMutex
	exportsInfos []*exportsInfoRecord
	exportInfos  []*exportInfoRecord
}

// NewStore returns an empty arena.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) newExportInfoRecord(name O.Option[string]) ExportInfoHandle {
	h := ExportInfoHandle(len(s.exportInfos))
	s.exportInfos = append(s.exportInfos, &exportInfoRecord{
		id:       h,
		name:     name,
		target:   map[string]TargetItem{},
		usedInRuntime: map[string]UsageState{},
	})
	return h
}

// CreateExportsInfo allocates a fresh ExportsInfoData together with its two
// mandatory sentinels (other_exports_info, side_effects_only_info), per
// invariant 1: every exports-info has both, and they are never deleted.
func (s *Store) CreateExportsInfo() ExportsInfoHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createExportsInfoLocked()
}

func (s *Store) createExportsInfoLocked() ExportsInfoHandle {
	other := s.newExportInfoRecord(O.None[string]())
	sideEffects := s.newExportInfoRecord(O.None[string]())
	h := ExportsInfoHandle(len(s.exportsInfos))
	s.exportsInfos = append(s.exportsInfos, &exportsInfoRecord{
		id:                  h,
		exports:             map[string]ExportInfoHandle{},
		otherExportsInfo:    other,
		sideEffectsOnlyInfo: sideEffects,
		redirectTo:          O.None[ExportsInfoHandle](),
	})
	return h
}

// CreateNestedExportsInfo materializes the nested namespace for export,
// creating it on first use and marking it owned (invariant 3:
// exports_info_owned implies exports_info is Some). Calling this on an
// export that already owns a nested namespace is a no-op that returns the
// existing handle; re-parenting an already-owned namespace is the caller's
// responsibility via Redirect, per the "ownership of nested namespaces"
// design note.
func (s *Store) CreateNestedExportsInfo(export ExportInfoHandle) (ExportsInfoHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.exportInfo(export)
	if err != nil {
		return 0, err
	}
	if rec.exportsInfoOwned {
		if h, ok := unwrap(rec.exportsInfo); ok {
			return h, nil
		}
	}
	nested := s.createExportsInfoLocked()
	rec.exportsInfo = O.Some(nested)
	rec.exportsInfoOwned = true
	return nested, nil
}

// Redirect points a namespace's redirect_to at target, representing a
// re-export-all layering (`export * from 'x'`). Invariant 2 (acyclicity) is
// enforced here: redirecting would-be-cyclically is rejected so the store
// never stores a cycle; query-time cycle detection in propagate is the
// defense against cycles that cross multiple hops through distinct
// exports-info records linked by targets, not redirects.
func (s *Store) Redirect(from, to ExportsInfoHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from == to {
		return newGraphError(int(from), "redirect_to would create a self-cycle")
	}
	seen := map[ExportsInfoHandle]bool{from: true}
	cur := to
	for {
		if seen[cur] {
			return newGraphError(int(from), "redirect_to would create a cycle through %d", cur)
		}
		seen[cur] = true
		rec, err := s.exportsInfo(cur)
		if err != nil {
			return err
		}
		next, ok := unwrap(rec.redirectTo)
		if !ok {
			break
		}
		cur = next
	}
	rec, err := s.exportsInfo(from)
	if err != nil {
		return err
	}
	rec.redirectTo = O.Some(to)
	return nil
}

func (s *Store) exportsInfo(h ExportsInfoHandle) (*exportsInfoRecord, error) {
	if h < 0 || int(h) >= len(s.exportsInfos) {
		return nil, newGraphError(int(h), "no such ExportsInfoData")
	}
	return s.exportsInfos[h], nil
}

func (s *Store) exportInfo(h ExportInfoHandle) (*exportInfoRecord, error) {
	if h < 0 || int(h) >= len(s.exportInfos) {
		return nil, newGraphError(int(h), "no such ExportInfoData")
	}
	return s.exportInfos[h], nil
}

// OtherExportsInfo returns the handle of the template ExportInfoData used
// as the default for any not-yet-discovered name.
func (s *Store) OtherExportsInfo(h ExportsInfoHandle) (ExportInfoHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportsInfo(h)
	if err != nil {
		return 0, err
	}
	return rec.otherExportsInfo, nil
}

// SideEffectsOnlyInfo returns the handle tracking whether the module must
// be retained purely for side effects.
func (s *Store) SideEffectsOnlyInfo(h ExportsInfoHandle) (ExportInfoHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportsInfo(h)
	if err != nil {
		return 0, err
	}
	return rec.sideEffectsOnlyInfo, nil
}

// RedirectTo returns the namespace this exports-info chains to, if any.
func (s *Store) RedirectTo(h ExportsInfoHandle) (O.Option[ExportsInfoHandle], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportsInfo(h)
	if err != nil {
		return O.None[ExportsInfoHandle](), err
	}
	return rec.redirectTo, nil
}

// Name returns the export's name, absent only for the two sentinels.
func (s *Store) Name(h ExportInfoHandle) (O.Option[string], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportInfo(h)
	if err != nil {
		return O.None[string](), err
	}
	return rec.name, nil
}

// NestedExportsInfo returns the export's nested namespace handle, if one
// has been created.
func (s *Store) NestedExportsInfo(h ExportInfoHandle) (O.Option[ExportsInfoHandle], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.exportInfo(h)
	if err != nil {
		return O.None[ExportsInfoHandle](), err
	}
	return rec.exportsInfo, nil
}
