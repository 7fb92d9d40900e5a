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

// Package propagate implements the stateless algorithms that run over a
// *store.Store: target resolution (re-export chasing), referenced-export
// expansion, usage/provision folds, mangle-eligibility, and content
// hashing. None of these functions hold the store's write lock across a
// suspension point; they only ever take read locks via the store's query
// methods (spec §5).
package propagate

import (
	"fmt"

	O "github.com/IBM/fp-go/option"
	"webbundle.dev/xgraph/set"
	"webbundle.dev/xgraph/store"
)

// ResolvedTarget is the concrete (module, export-path, dependency) triple a
// re-export chain resolves to. An absent ExportPath means the whole target
// namespace, not a single named export.
type ResolvedTarget struct {
	Module     store.ExportsInfoHandle
	ExportPath O.Option[[]string]
	Dependency store.DependencyID
}

// ResolveFilter may short-circuit target resolution at any hop. Returning
// false stops the chase and hands back the current target as-is.
type ResolveFilter func(target ResolvedTarget, s *store.Store) bool

// AlwaysResolve never short-circuits; use it to fully chase a re-export
// chain to its terminal binding.
func AlwaysResolve(ResolvedTarget, *store.Store) bool { return true }

// DependencyResolver is the one piece of host state target resolution
// needs: mapping a DependencyID to the exports-info of the module it
// points at. Everything else target resolution needs lives in the store.
type DependencyResolver interface {
	ResolveDependency(dep store.DependencyID) (store.ExportsInfoHandle, bool)
}

// GetTargetWithFilter resolves export's re-export chain to a concrete
// target, per spec §4.2. A circular chain (A→B→A) is never fatal: it
// yields ok=false ("no target"), matching spec §7 and S2.
func GetTargetWithFilter(s *store.Store, resolver DependencyResolver, export store.ExportInfoHandle, filter ResolveFilter) (ResolvedTarget, bool, error) {
	visited := set.NewSet[string]()
	target, has, circular, err := resolveExportInfoTarget(s, resolver, export, filter, visited)
	if err != nil {
		return ResolvedTarget{}, false, err
	}
	if circular {
		return ResolvedTarget{}, false, nil
	}
	return target, has, nil
}

// GetTarget is GetTargetWithFilter with a filter that never short-circuits.
func GetTarget(s *store.Store, resolver DependencyResolver, export store.ExportInfoHandle) (ResolvedTarget, bool, error) {
	return GetTargetWithFilter(s, resolver, export, AlwaysResolve)
}

// ValidTargetModuleFilter reports whether module is an acceptable landing
// point for FindTarget to stop at.
type ValidTargetModuleFilter func(module store.ExportsInfoHandle) bool

// FindTarget resolves export's re-export chain only until
// validModule(module) holds, then returns that landing point — useful for
// collapsing a re-export chain down to the first module satisfying some
// predicate (e.g. "is part of this chunk") without chasing all the way to
// the terminal binding.
func FindTarget(s *store.Store, resolver DependencyResolver, export store.ExportInfoHandle, validModule ValidTargetModuleFilter) (ResolvedTarget, bool, error) {
	filter := func(t ResolvedTarget, _ *store.Store) bool {
		return !validModule(t.Module)
	}
	return GetTargetWithFilter(s, resolver, export, filter)
}

// resolveExportInfoTarget is the recursive core shared by both the
// top-level GetTargetWithFilter call and the chase through each
// intermediate export-info hop. It selects the maximal-priority subset of
// h's own target map, resolves each candidate, and requires that multiple
// maximal-priority candidates agree on the same landing (module,
// export-path) — spec §4.2 step 1.
func resolveExportInfoTarget(
	s *store.Store,
	resolver DependencyResolver,
	h store.ExportInfoHandle,
	filter ResolveFilter,
	visited set.Set[string],
) (target ResolvedTarget, has bool, circular bool, err error) {
	targets, isSet, err := s.Targets(h)
	if err != nil {
		return ResolvedTarget{}, false, false, err
	}
	if !isSet || len(targets) == 0 {
		return ResolvedTarget{}, false, false, nil
	}

	maxPriority := minInt
	for _, item := range targets {
		if item.Priority > maxPriority {
			maxPriority = item.Priority
		}
	}

	var resolved []ResolvedTarget
	for _, item := range targets {
		if item.Priority != maxPriority {
			continue
		}
		// Each maximal-priority alternative gets its own copy of visited:
		// a converging diamond (two alternatives both passing through the
		// same intermediate export) is not a cycle, and must not be
		// reported as one just because a sibling branch got there first.
		rt, circ, rerr := resolveOneTarget(s, resolver, item, filter, visited.Clone())
		if rerr != nil {
			return ResolvedTarget{}, false, false, rerr
		}
		if circ {
			return ResolvedTarget{}, false, true, nil
		}
		resolved = append(resolved, rt)
	}
	if len(resolved) == 0 {
		return ResolvedTarget{}, false, false, nil
	}
	first := resolved[0]
	for _, rt := range resolved[1:] {
		if rt.Module != first.Module || !sameExportPath(rt.ExportPath, first.ExportPath) {
			// Ambiguous alternative targets that disagree: no single
			// resolution, per spec §4.2 step 1.
			return ResolvedTarget{}, false, false, nil
		}
	}
	return first, true, false, nil
}

const minInt = -1 << 62

// unwrapPath is the []string-specialized counterpart of store's unwrap
// helper: a (value, ok) view over an Option, via fp-go's Fold.
func unwrapPath(o O.Option[[]string]) ([]string, bool) {
	if !O.IsSome(o) {
		return nil, false
	}
	return O.Fold(func() []string { return nil }, func(v []string) []string { return v })(o), true
}

func sameExportPath(a, b O.Option[[]string]) bool {
	av, aok := unwrapPath(a)
	bv, bok := unwrapPath(b)
	if aok != bok {
		return false
	}
	if !aok {
		return true
	}
	if len(av) != len(bv) {
		return false
	}
	for i := range av {
		if av[i] != bv[i] {
			return false
		}
	}
	return true
}

// resolveOneTarget follows a single TargetItem's dependency edge and then
// chases the export path, one segment at a time, recursing into
// resolveExportInfoTarget at each hop. Cycle detection uses a visited set
// keyed by a stable identity for either the real handle or, when the
// lookup falls through to the shared other_exports_info sentinel, the
// (name, sentinel-handle) pair — matching the "dynamic resolution without
// mutation" design note, since GetReadOnlyExportInfo never creates a
// record for a name it hasn't seen.
func resolveOneTarget(
	s *store.Store,
	resolver DependencyResolver,
	item store.TargetItem,
	filter ResolveFilter,
	visited set.Set[string],
) (ResolvedTarget, bool, error) {
	module, ok := resolver.ResolveDependency(item.Dependency)
	if !ok {
		return ResolvedTarget{}, false, store.NewGraphError(-1, "dependency %q has no connection in the module graph", item.Dependency)
	}
	target := ResolvedTarget{Module: module, ExportPath: item.ExportPath, Dependency: item.Dependency}

	for {
		path, ok := unwrapPath(target.ExportPath)
		if !ok || len(path) == 0 {
			return target, false, nil
		}
		if !filter(target, s) {
			return target, false, nil
		}

		name := path[0]
		h, err := s.GetReadOnlyExportInfo(target.Module, name)
		if err != nil {
			return ResolvedTarget{}, false, err
		}
		other, err := s.OtherExportsInfo(target.Module)
		if err != nil {
			return ResolvedTarget{}, false, err
		}
		key := visitKey(h, name, other)
		if visited.Has(key) {
			return ResolvedTarget{}, true, nil
		}
		visited.Add(key)

		newTarget, hasNew, circular, err := resolveExportInfoTarget(s, resolver, h, filter, visited)
		if err != nil {
			return ResolvedTarget{}, false, err
		}
		if circular {
			return ResolvedTarget{}, true, nil
		}
		if !hasNew {
			return target, false, nil
		}

		if len(path) == 1 {
			target = newTarget
		} else {
			rest := append([]string{}, path[1:]...)
			tail, _ := unwrapPath(newTarget.ExportPath)
			merged := append(append([]string{}, tail...), rest...)
			target = ResolvedTarget{Module: newTarget.Module, Dependency: newTarget.Dependency, ExportPath: O.Some(merged)}
		}
		if !O.IsSome(target.ExportPath) {
			return target, false, nil
		}
	}
}

// visitKey distinguishes an ordinary handle from the shared
// other_exports_info sentinel, which many distinct (name, module) lookups
// can land on without denoting the same logical export.
func visitKey(h store.ExportInfoHandle, name string, otherExportsInfo store.ExportInfoHandle) string {
	if h == otherExportsInfo {
		return fmt.Sprintf("dyn:%s:%d", name, otherExportsInfo)
	}
	return fmt.Sprintf("h:%d", h)
}
