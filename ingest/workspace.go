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

package ingest

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	DS "github.com/bmatcuk/doublestar/v4"
	O "github.com/IBM/fp-go/option"

	"webbundle.dev/xgraph/cmd/config"
	"webbundle.dev/xgraph/internal/logging"
	"webbundle.dev/xgraph/internal/platform"
	"webbundle.dev/xgraph/store"
)

// defaultExcludePatterns mirrors the teacher's generate.defaultExcludePatterns
// (generate/generate.go): *.d.ts files carry no runtime bindings and never
// contribute exports-info facts, so they are skipped unless the caller opts
// back in with IngestConfig.NoDefaultExcludes.
var defaultExcludePatterns = []string{
	"**/*.d.ts",
	"**/*.test.ts",
	"**/*.test.tsx",
	"**/*.spec.ts",
	"**/*.spec.tsx",
}

// sourceExtensions is the closed set of extensions the workspace walk even
// considers handing to the parser; everything else (json, css, images) is
// skipped before a Glob match is attempted.
var sourceExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
}

// candidateExtensions is sourceExtensions in a fixed try-order, used to
// resolve an extensionless specifier join against the module keys the
// workspace walk actually discovered (those keys carry the file extension).
var candidateExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// skipDirNames are directories BuildFromWorkspace never descends into,
// matching the teacher's BuildFromWorkspace walk (lsp/types/module_graph.go).
var skipDirNames = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
}

// matchesAnyPattern reports whether file (workspace-relative, slash
// separated) matches any of patterns. Adapted from the teacher's
// matchesAnyPattern (generate/generate.go), substituting doublestar/v4's
// Match for the v1 import the teacher used.
func matchesAnyPattern(file string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := DS.Match(pattern, file); err == nil && ok {
			return true
		}
	}
	return false
}

// Graph implements propagate.DependencyResolver over the module keys
// BuildFromWorkspace discovers: a re-export's DependencyID is always the
// workspace-relative module path of the file it was resolved against.
// Unresolved specifiers (bare package imports) are never registered and so
// correctly fail ResolveDependency — the module graph has no record of a
// module it cannot see the source of.
type Graph struct {
	modules  map[string]store.ExportsInfoHandle
	order    []string
	imported map[string]bool
}

// NewGraph returns an empty module graph.
func NewGraph() *Graph {
	return &Graph{modules: map[string]store.ExportsInfoHandle{}, imported: map[string]bool{}}
}

// MarkImported records that some other module imports or re-exports from
// module. BuildFromWorkspace calls this for every resolved import/re-export
// edge it discovers; build/watch use it to tell entry modules (nothing in
// the walked workspace imports them) from internal ones.
func (g *Graph) MarkImported(module string) {
	g.imported[module] = true
}

// IsEntry reports whether module is never the target of a resolved
// import/re-export edge discovered during the workspace walk.
func (g *Graph) IsEntry(module string) bool {
	return !g.imported[module]
}

// ensure returns module's ExportsInfoHandle, creating one in s and
// recording module's discovery order the first time it is seen. Discovery
// order, not lexical order, is preserved here: Modules returns modules in
// this order, and SortedModules gives the lexical order.
func (g *Graph) ensure(s *store.Store, module string) store.ExportsInfoHandle {
	if h, ok := g.modules[module]; ok {
		return h
	}
	h := s.CreateExportsInfo()
	g.modules[module] = h
	g.order = append(g.order, module)
	return h
}

// resolveModuleKey reconciles an extensionless specifier join against the
// extension-carrying keys BuildFromWorkspace's walk actually registered,
// trying base itself, base+ext for each candidateExtensions, and
// base/index+ext last (mirroring Node/bundler module resolution order: exact
// file, then directory index). found is false when nothing discovered so
// far matches, in which case base is the caller's best remaining guess.
func (g *Graph) resolveModuleKey(base string) (resolved string, found bool) {
	if _, ok := g.modules[base]; ok {
		return base, true
	}
	for _, ext := range candidateExtensions {
		candidate := base + ext
		if _, ok := g.modules[candidate]; ok {
			return candidate, true
		}
	}
	for _, ext := range candidateExtensions {
		candidate := path.Join(base, "index"+ext)
		if _, ok := g.modules[candidate]; ok {
			return candidate, true
		}
	}
	return base, false
}

// resolveTarget resolves dx's source specifier, written inside module, to
// the module key it actually names. The extensionless join ModulePath
// returns is reconciled against the modules already discovered by the
// workspace walk via resolveModuleKey, so a re-export edge lands on the
// module that actually carries the target's exports instead of a
// same-named, extensionless phantom with an empty namespace.
func resolveTarget(g *Graph, module, specifier string, normalizer PathNormalizer) (string, bool) {
	target, ok := normalizer.ModulePath(module, specifier)
	if !ok {
		return "", false
	}
	if resolved, found := g.resolveModuleKey(target); found {
		return resolved, true
	}
	return target, true
}

// ResolveDependency implements propagate.DependencyResolver.
func (g *Graph) ResolveDependency(dep store.DependencyID) (store.ExportsInfoHandle, bool) {
	h, ok := g.modules[string(dep)]
	return h, ok
}

// Handle returns module's ExportsInfoHandle, if the workspace walk ever
// discovered it.
func (g *Graph) Handle(module string) (store.ExportsInfoHandle, bool) {
	h, ok := g.modules[module]
	return h, ok
}

// Modules returns every module key in discovery order.
func (g *Graph) Modules() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// SortedModules returns every module key in lexical order, the order a
// build/watch report prints in so output is stable across runs.
func (g *Graph) SortedModules() []string {
	out := g.Modules()
	sort.Strings(out)
	return out
}

// BuildFromWorkspace is the compiler host: it walks root with fsys,
// extracts export/import facts from every matched source file with parser,
// and populates a fresh store.Store. This is directly adapted from
// lsp/types.ModuleGraph.BuildFromWorkspace's walk-and-skip-node_modules
// shape and generate.preprocess's glob-expand/exclude-filter shape, folded
// into one pass because xgraph has no separate demo-discovery phase to
// interleave with.
func BuildFromWorkspace(
	fsys platform.FileSystem,
	root string,
	cfg config.IngestConfig,
	parser ExportParser,
	normalizer PathNormalizer,
) (*store.Store, *Graph, error) {
	s := store.NewStore()
	g := NewGraph()

	excludes := make([]string, 0, len(cfg.Exclude)+len(defaultExcludePatterns))
	excludes = append(excludes, cfg.Exclude...)
	if !cfg.NoDefaultExcludes {
		excludes = append(excludes, defaultExcludePatterns...)
	}

	files, err := discoverFiles(fsys, root, cfg.Files, excludes)
	if err != nil {
		return nil, nil, fmt.Errorf("discovering workspace files under %s: %w", root, err)
	}

	type pending struct {
		module string
		facts  fileFacts
	}
	parsed := make([]pending, 0, len(files))

	for _, rel := range files {
		content, err := fsys.ReadFile(filepath.Join(root, rel))
		if err != nil {
			logging.Debug("ingest: skipping unreadable file %q: %v", rel, err)
			continue
		}
		module := normalizer.ToSlash(rel)
		facts, err := parser.Parse(content, strings.HasSuffix(rel, "x"))
		if err != nil {
			logging.Debug("ingest: skipping unparseable file %q: %v", rel, err)
			continue
		}
		g.ensure(s, module)
		parsed = append(parsed, pending{module: module, facts: facts})
	}

	for _, p := range parsed {
		exportsInfo, _ := g.Handle(p.module)
		for _, dx := range p.facts.exports {
			if err := applyExport(s, g, exportsInfo, p.module, dx, normalizer); err != nil {
				return nil, nil, fmt.Errorf("module %s: %w", p.module, err)
			}
		}
		for _, spec := range p.facts.imports {
			if target, ok := resolveTarget(g, p.module, spec, normalizer); ok {
				g.MarkImported(target)
			}
		}
	}

	for _, module := range g.Modules() {
		h, _ := g.Handle(module)
		if err := s.SetHasProvideInfo(h); err != nil {
			return nil, nil, fmt.Errorf("module %s: finalizing provide info: %w", module, err)
		}
	}

	return s, g, nil
}

// discoverFiles expands every glob in includes against root, filters the
// result through excludes, and returns the surviving paths relative to
// root, deduplicated and sorted. When includes is empty, every source file
// under root not covered by skipDirNames/excludes is included — the
// teacher's generate command requires an explicit Files list, but xgraph's
// build/watch commands default to "the whole workspace" when none is given.
func discoverFiles(fsys platform.FileSystem, root string, includes, excludes []string) ([]string, error) {
	var all []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && skipDirNames[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceExtensions[filepath.Ext(p)] {
			return nil
		}
		rel, rerr := filepath.Rel(root, p)
		if rerr != nil {
			return rerr
		}
		all = append(all, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	var selected []string
	if len(includes) == 0 {
		selected = all
	} else {
		seen := map[string]bool{}
		for _, pattern := range includes {
			for _, rel := range all {
				if seen[rel] {
					continue
				}
				if ok, _ := DS.Match(pattern, rel); ok {
					seen[rel] = true
					selected = append(selected, rel)
				}
			}
		}
	}

	out := make([]string, 0, len(selected))
	for _, rel := range selected {
		if !matchesAnyPattern(rel, excludes) {
			out = append(out, rel)
		}
	}
	sort.Strings(out)
	return out, nil
}

// applyExport writes one discoveredExport's facts into s, keyed off
// exportsInfo (module's own namespace). Unresolvable specifiers — bare
// package imports xgraph has no resolution algorithm for, per
// PathNormalizer's doc comment — mark the export Unknown rather than
// failing the whole build: the module surface exists, xgraph just cannot
// see through it.
func applyExport(s *store.Store, g *Graph, exportsInfo store.ExportsInfoHandle, module string, dx discoveredExport, normalizer PathNormalizer) error {
	switch dx.kind {
	case localDeclaration, localDefault, localAlias:
		h, err := s.GetExportInfo(exportsInfo, dx.name)
		if err != nil {
			return err
		}
		if err := s.SetProvided(h, store.ProvidedProvided); err != nil {
			return err
		}
		return s.SetTerminalBinding(h, true)

	case namedReexport:
		h, err := s.GetExportInfo(exportsInfo, dx.name)
		if err != nil {
			return err
		}
		target, ok := resolveTarget(g, module, dx.sourceSpecifier, normalizer)
		if !ok {
			return markUnresolvedExternal(s, h)
		}
		local := dx.localName
		if local == "" {
			local = dx.name
		}
		g.ensure(s, target)
		g.MarkImported(target)
		return s.SetTarget(h, "", O.Some(store.TargetItem{
			Dependency: store.DependencyID(target),
			ExportPath: O.Some([]string{local}),
			Priority:   0,
		}))

	case starReexport:
		target, ok := resolveTarget(g, module, dx.sourceSpecifier, normalizer)
		if !ok {
			logging.Debug("ingest: module %s: export * from %q is unresolvable, skipping redirect", module, dx.sourceSpecifier)
			return nil
		}
		targetHandle := g.ensure(s, target)
		g.MarkImported(target)
		if err := s.Redirect(exportsInfo, targetHandle); err != nil {
			logging.Debug("ingest: module %s: export * from %q would create a cycle, skipping redirect: %v", module, dx.sourceSpecifier, err)
		}
		return nil

	case namespaceReexport:
		h, err := s.GetExportInfo(exportsInfo, dx.name)
		if err != nil {
			return err
		}
		if err := s.SetProvided(h, store.ProvidedProvided); err != nil {
			return err
		}
		target, ok := resolveTarget(g, module, dx.sourceSpecifier, normalizer)
		if !ok {
			return markUnresolvedExternal(s, h)
		}
		nested, err := s.CreateNestedExportsInfo(h)
		if err != nil {
			return err
		}
		targetHandle := g.ensure(s, target)
		g.MarkImported(target)
		return s.Redirect(nested, targetHandle)

	default:
		return fmt.Errorf("unknown export kind %d for %q", dx.kind, dx.name)
	}
}

// markUnresolvedExternal flips h to the "can't see through this" verdict: a
// re-export whose source specifier names a package outside the workspace
// (no ./ or ../ prefix) is still exported — propagate.IsExportProvided
// must answer Unknown for it, never NotProvided.
func markUnresolvedExternal(s *store.Store, h store.ExportInfoHandle) error {
	return s.SetProvided(h, store.ProvidedUnknown)
}
