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
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"webbundle.dev/xgraph/queries"
)

// ExportParser abstracts extracting fileFacts from source text, the same
// higher-level seam lsp/types.ExportParser draws over raw tree-sitter
// operations.
type ExportParser interface {
	// Parse extracts every export/import fact from content. tsx selects
	// the TSX grammar over plain TypeScript. A file that fails to parse
	// returns a zero fileFacts and a nil error — parse failures are
	// expected for non-TS/JS text and are not fatal to the workspace walk.
	Parse(content []byte, tsx bool) (fileFacts, error)
}

// TreeSitterExportParser implements ExportParser using the pooled
// TypeScript/TSX parsers and the query set queries.ExportGraphQueries
// provides, directly adapted from lsp/types.DefaultExportParser's
// parse-with-queries path (its regex fallback parsing is not carried over:
// xgraph has no customElements.define()-style special case to fall back
// for, and a file tree-sitter can't parse is simply skipped).
type TreeSitterExportParser struct {
	manager *queries.QueryManager

	ts map[string]*queries.QueryMatcher
	tx map[string]*queries.QueryMatcher
}

var queryNames = []string{"exports", "imports", "reexports"}

// NewTreeSitterExportParser builds every matcher ingest needs up front,
// once per build, rather than the teacher's per-file NewQueryManager call
// in ParseExportsFromContent — a workspace walk parses many files from the
// same fixed query set, so the construction cost is worth hoisting out of
// the hot loop.
func NewTreeSitterExportParser() (*TreeSitterExportParser, error) {
	manager, err := queries.NewQueryManager(queries.ExportGraphQueries())
	if err != nil {
		return nil, err
	}
	p := &TreeSitterExportParser{
		manager: manager,
		ts:      make(map[string]*queries.QueryMatcher, len(queryNames)),
		tx:      make(map[string]*queries.QueryMatcher, len(queryNames)),
	}
	for _, name := range queryNames {
		m, err := queries.NewQueryMatcher(manager, "typescript", name)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.ts[name] = m

		x, err := queries.NewQueryMatcher(manager, "tsx", name)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.tx[name] = x
	}
	return p, nil
}

// Close releases every matcher's cursor and the underlying query manager.
func (p *TreeSitterExportParser) Close() {
	for _, m := range p.ts {
		m.Close()
	}
	for _, m := range p.tx {
		m.Close()
	}
	if p.manager != nil {
		p.manager.Close()
	}
}

func (p *TreeSitterExportParser) Parse(content []byte, tsx bool) (fileFacts, error) {
	var tree *ts.Tree
	if tsx {
		parser := queries.RetrieveTSXParser()
		defer queries.PutTSXParser(parser)
		tree = parser.Parse(content, nil)
	} else {
		parser := queries.RetrieveTypeScriptParser()
		defer queries.PutTypeScriptParser(parser)
		tree = parser.Parse(content, nil)
	}
	if tree == nil {
		return fileFacts{}, nil
	}
	defer tree.Close()

	matchers := p.ts
	if tsx {
		matchers = p.tx
	}

	var facts fileFacts
	for m := range matchers["exports"].AllQueryMatches(tree.RootNode(), content) {
		if exp, ok := processExportsMatch(m, matchers["exports"], content); ok {
			facts.exports = append(facts.exports, exp)
		}
	}
	for m := range matchers["reexports"].AllQueryMatches(tree.RootNode(), content) {
		if exp, ok := processReexportsMatch(m, matchers["reexports"], content); ok {
			facts.exports = append(facts.exports, exp)
		}
	}
	for m := range matchers["imports"].AllQueryMatches(tree.RootNode(), content) {
		facts.imports = append(facts.imports, processImportsMatch(m, matchers["imports"], content)...)
	}
	return facts, nil
}

func processExportsMatch(match *ts.QueryMatch, matcher *queries.QueryMatcher, content []byte) (discoveredExport, bool) {
	var declaredName, aliasName string
	var isDefault, isLocalAlias bool
	for _, capture := range match.Captures {
		captureName := matcher.GetCaptureNameByIndex(capture.Index)
		text := strings.TrimSpace(capture.Node.Utf8Text(content))
		switch captureName {
		case "export.class.name", "export.function.name", "export.variable.name":
			declaredName = text
		case "export.default":
			isDefault = true
		case "export.name":
			declaredName = text
			isLocalAlias = true
		case "export.alias":
			aliasName = text
		}
	}
	switch {
	case isDefault:
		return discoveredExport{kind: localDefault, name: "default"}, true
	case isLocalAlias:
		name := declaredName
		if aliasName != "" {
			name = aliasName
		}
		if name == "" {
			return discoveredExport{}, false
		}
		return discoveredExport{kind: localAlias, name: name}, true
	case declaredName != "":
		return discoveredExport{kind: localDeclaration, name: declaredName}, true
	default:
		return discoveredExport{}, false
	}
}

func processReexportsMatch(match *ts.QueryMatch, matcher *queries.QueryMatcher, content []byte) (discoveredExport, bool) {
	var name, alias, source, star, namespaceName string
	for _, capture := range match.Captures {
		captureName := matcher.GetCaptureNameByIndex(capture.Index)
		text := strings.TrimSpace(capture.Node.Utf8Text(content))
		switch captureName {
		case "export.name":
			name = text
		case "export.alias":
			alias = text
		case "export.source":
			source = text
		case "export.star":
			star = text
		case "export.namespace.name":
			namespaceName = text
		}
	}
	switch {
	case source == "":
		return discoveredExport{}, false
	case namespaceName != "":
		return discoveredExport{kind: namespaceReexport, name: namespaceName, sourceSpecifier: source}, true
	case star != "":
		return discoveredExport{kind: starReexport, sourceSpecifier: source}, true
	case name != "":
		exported := name
		if alias != "" {
			exported = alias
		}
		return discoveredExport{kind: namedReexport, name: exported, localName: name, sourceSpecifier: source}, true
	default:
		return discoveredExport{}, false
	}
}

func processImportsMatch(match *ts.QueryMatch, matcher *queries.QueryMatcher, content []byte) []string {
	var out []string
	for _, capture := range match.Captures {
		captureName := matcher.GetCaptureNameByIndex(capture.Index)
		if captureName == "import.source" || captureName == "import.dynamic.source" {
			out = append(out, strings.TrimSpace(capture.Node.Utf8Text(content)))
		}
	}
	return out
}
