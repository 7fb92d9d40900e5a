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

// Package store is the exports-info arena: two interning tables, one of
// ExportsInfoData records (one per module or nested namespace) and one of
// ExportInfoData records (one per named export), addressed by stable
// integer handles rather than pointers. It owns every mutation primitive and
// lookup traversal over that arena; propagate builds stateless algorithms on
// top of it, and ingest is the only caller that populates it from scratch.
package store

import (
	O "github.com/IBM/fp-go/option"
)

// ExportsInfoHandle addresses one ExportsInfoData record: the namespace
// container for a module or for a re-exported nested namespace. Handles are
// dense, stable for the lifetime of the build, and never reused.
type ExportsInfoHandle int

// ExportInfoHandle addresses one ExportInfoData record: a single named
// export, or one of the two per-namespace sentinels (other/side-effects-only).
type ExportInfoHandle int

// InvalidHandle marks "no handle"; zero is a real, valid handle (the first
// record ever created), so callers must not rely on the zero value meaning
// absence.
const InvalidHandle = -1

// DependencyID opaquely names an edge the host's module graph can resolve
// to a target module. The core never interprets it beyond equality and
// handing it to the host's DependencyResolver.
type DependencyID string

// Provided is the four-valued provision verdict carried on ExportInfoData.
// Unset is the pre-analysis default; NotProvided/Provided/Unknown are the
// three analyzed verdicts.
type Provided int

const (
	ProvidedUnset Provided = iota
	ProvidedNotProvided
	ProvidedProvided
	ProvidedUnknown
)

func (p Provided) String() string {
	switch p {
	case ProvidedNotProvided:
		return "NotProvided"
	case ProvidedProvided:
		return "Provided"
	case ProvidedUnknown:
		return "Unknown"
	default:
		return "Unset"
	}
}

// UsageState is a total order: Unused < OnlyPropertiesUsed < NoInfo <
// Unknown < Used. Per-runtime aggregation and monotone raises both depend on
// this ordering, not just equality.
type UsageState int

const (
	Unused UsageState = iota
	OnlyPropertiesUsed
	NoInfo
	Unknown
	Used
)

func (u UsageState) String() string {
	switch u {
	case Unused:
		return "Unused"
	case OnlyPropertiesUsed:
		return "OnlyPropertiesUsed"
	case NoInfo:
		return "NoInfo"
	case Unknown:
		return "Unknown"
	case Used:
		return "Used"
	default:
		return "Unused"
	}
}

// Max returns the larger of two usage states under the total order above.
func (u UsageState) Max(other UsageState) UsageState {
	if other > u {
		return other
	}
	return u
}

// ExportProvided is the narrower three-valued answer type of
// IsExportProvided; distinct from the four-valued per-export Provided, which
// additionally tracks "not yet analyzed" (ProvidedUnset). IsExportProvided
// returns only Provided or Unknown; a NotProvided segment yields ok=false.
type ExportProvided int

const (
	ExportProvidedUnknown ExportProvided = iota
	ExportProvidedNotProvided
	ExportProvidedProvided
)

// TargetItem is one alternative resolution for a re-export: the dependency
// edge to follow, the remaining export path on the far side (absent means
// "resolves to the whole namespace"), and a priority used to pick among
// several alternative targets.
type TargetItem struct {
	Dependency DependencyID
	ExportPath O.Option[[]string]
	Priority   int
}

// defaultTargetKey distinguishes "no specific key" (the empty string) from a named
// alternative; spec §3 describes the target field as a mapping from an
// *optional* dependency-key, which this realizes directly as a Go map key.
const defaultTargetKey = ""

// ProvidedExports is the fold of a whole exports surface's provision state.
type ProvidedExports struct {
	Kind  ProvidedExportsKind
	Names []string // only meaningful when Kind == ProvidedNames
}

type ProvidedExportsKind int

const (
	ProvidedExportsUnknown ProvidedExportsKind = iota
	ProvidedExportsAll
	ProvidedExportsNames
)

// UsedExports is the fold of a whole exports surface's usage state.
type UsedExports struct {
	Kind  UsedExportsKind
	Flag  bool     // only meaningful when Kind == UsedExportsNamespace
	Names []string // only meaningful when Kind == UsedExportsNames
}

type UsedExportsKind int

const (
	UsedExportsUnknown UsedExportsKind = iota
	UsedExportsNamespace
	UsedExportsNames
)

// exportsInfoRecord is the namespace container for one module or one nested
// export (arena element; never referenced by pointer outside this package).
type exportsInfoRecord struct {
	id                  ExportsInfoHandle
	exports             map[string]ExportInfoHandle
	otherExportsInfo    ExportInfoHandle
	sideEffectsOnlyInfo ExportInfoHandle
	redirectTo          O.Option[ExportsInfoHandle]
}

// exportInfoRecord is a single named export or one of the two
// per-namespace sentinels (other_exports_info / side_effects_only_info).
type exportInfoRecord struct {
	id   ExportInfoHandle
	name O.Option[string]

	usedName O.Option[string]

	provided Provided

	canMangleProvide O.Option[bool]
	canMangleUse     O.Option[bool]

	terminalBinding bool

	exportsInfo      O.Option[ExportsInfoHandle]
	exportsInfoOwned bool

	target      map[string]TargetItem
	targetIsSet bool

	hasUseInRuntimeInfo bool
	globalUsed          O.Option[UsageState]
	usedInRuntime       map[string]UsageState
}

// unwrap is a small local helper around fp-go's Option fold, used wherever
// we need the Go-idiomatic (value, ok) shape instead of chaining combinators
// — e.g. to branch with a plain `if`. It never collapses None into a zero
// value silently: callers must check ok.
func unwrap[T any](o O.Option[T]) (T, bool) {
	var zero T
	return O.Fold(func() T { return zero }, func(v T) T { return v })(o), O.IsSome(o)
}

func (r *exportInfoRecord) clone() *exportInfoRecord {
	clone := *r
	clone.target = make(map[string]TargetItem, len(r.target))
	for k, v := range r.target {
		clone.target[k] = v
	}
	clone.usedInRuntime = make(map[string]UsageState, len(r.usedInRuntime))
	for k, v := range r.usedInRuntime {
		clone.usedInRuntime[k] = v
	}
	return &clone
}
