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
	"hash/maphash"

	"webbundle.dev/xgraph/store"
)

// Hasher accumulates a content hash over one or more exports-info
// namespaces. Its seed is fixed once per build (NewHasher), so two builds
// that drive the store to structurally equal states hash identically
// within that build's own run (spec §8 property 8) — maphash.Seed itself
// is process-random, so digests are not meant to be compared *across*
// process runs, only within one.
type Hasher struct {
	h       *maphash.Hash
	visited map[store.ExportsInfoHandle]bool
}

// NewHasher returns a Hasher seeded once; reuse the same seed for every
// namespace hashed within a build to get comparable digests.
func NewHasher(seed maphash.Seed) *Hasher {
	h := &maphash.Hash{}
	h.SetSeed(seed)
	return &Hasher{h: h, visited: map[store.ExportsInfoHandle]bool{}}
}

// Sum64 returns the current accumulated digest.
func (hs *Hasher) Sum64() uint64 {
	return hs.h.Sum64()
}

// UpdateHash feeds exportsInfo's exports, in deterministic (name-sorted)
// order, into hs: each export's used_name or name, its current
// UsageState, provided verdict, terminal_binding, and (recursively) any
// nested namespace. A visited set on the exports-info handle prevents a
// redirect_to cycle from re-hashing the same namespace twice.
func UpdateHash(hs *Hasher, s *store.Store, exportsInfo store.ExportsInfoHandle, runtime RuntimeSpec) error {
	if hs.visited[exportsInfo] {
		return nil
	}
	hs.visited[exportsInfo] = true

	entries, err := s.OrderedExports(exportsInfo)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := hs.hashExport(s, entry.Handle, runtime); err != nil {
			return err
		}
	}

	redirect, err := s.RedirectTo(exportsInfo)
	if err != nil {
		return err
	}
	if target, ok := redirectUnwrap(redirect); ok {
		if err := UpdateHash(hs, s, target, runtime); err != nil {
			return err
		}
	}
	return nil
}

func (hs *Hasher) hashExport(s *store.Store, export store.ExportInfoHandle, runtime RuntimeSpec) error {
	usedName, err := s.UsedName(export)
	if err != nil {
		return err
	}
	hs.h.WriteString(usedName)

	used, err := GetUsed(s, export, runtime)
	if err != nil {
		return err
	}
	provided, err := s.Provided(export)
	if err != nil {
		return err
	}
	terminal, err := s.TerminalBinding(export)
	if err != nil {
		return err
	}

	var buf [3]byte
	buf[0] = byte(used)
	buf[1] = byte(provided)
	if terminal {
		buf[2] = 1
	}
	hs.h.Write(buf[:])

	nested, err := s.NestedExportsInfo(export)
	if err != nil {
		return err
	}
	if nestedHandle, ok := nestedUnwrap(nested); ok {
		return UpdateHash(hs, s, nestedHandle, runtime)
	}
	return nil
}
