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

// Package ingest is the compiler host: it walks a workspace, parses each
// source file with tree-sitter, and populates a store.Store from scratch.
// Nothing else in xgraph writes a fresh ExportsInfoData; propagate only
// ever reads and folds what ingest built.
package ingest

// exportKind distinguishes the statement shape a discoveredExport came
// from, since each shape writes the store differently.
type exportKind int

const (
	// localDeclaration is `export class/function/const X`: the binding is
	// defined in this module and terminal.
	localDeclaration exportKind = iota
	// localDefault is `export default <expr>`: always named "default".
	localDefault
	// localAlias is `export { a as c }` with no "from" clause: c is bound
	// to a, a name already in this module's local scope.
	localAlias
	// namedReexport is `export { a as c } from './m'`.
	namedReexport
	// starReexport is `export * from './m'`.
	starReexport
	// namespaceReexport is `export * as ns from './m'`.
	namespaceReexport
)

// discoveredExport is one export statement's worth of facts, extracted from
// tree-sitter capture text before any store writes happen.
type discoveredExport struct {
	kind exportKind
	// name is the exported binding as seen from outside this module: the
	// alias if one was given, otherwise the declared/source name.
	name string
	// localName is the name as it exists in the *source* module, only set
	// for namedReexport (the target's ExportPath needs the unaliased name).
	localName string
	// sourceSpecifier is the raw import specifier text, only set for the
	// three re-export kinds.
	sourceSpecifier string
}

// fileFacts is everything a single source file's parse pass extracted.
type fileFacts struct {
	exports []discoveredExport
	// imports holds specifiers from plain import statements/dynamic
	// import() calls. These never feed the exports-info graph directly —
	// xgraph resolves re-exports through ExportParser's own source
	// specifiers — but when one resolves to a workspace file, ingest marks
	// that module as imported (Graph.MarkImported), so it is not reported
	// as an entry module.
	imports []string
}
