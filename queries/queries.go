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

// Package queries provides pooled tree-sitter parsers and embedded query
// files for extracting export/import facts from TypeScript and JavaScript
// source text.
package queries

import (
	"embed"
	"errors"
	"fmt"
	"iter"
	"path"
	"sync"
	"time"

	"github.com/pterm/pterm"
	ts "github.com/tree-sitter/go-tree-sitter"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

//go:embed */*.scm
var queryFiles embed.FS

var ErrNoQueryManager = errors.New("QueryManager is nil")

type NoCaptureError struct {
	Capture string
	Query   string
}

func (e *NoCaptureError) Error() string {
	return fmt.Sprintf("no nodes for capture %s in query %s", e.Capture, e.Query)
}

var languages = struct {
	typescript *ts.Language
	tsx        *ts.Language
}{
	ts.NewLanguage(tsTypescript.LanguageTypescript()),
	ts.NewLanguage(tsTypescript.LanguageTSX()),
}

var typescriptParserPool = sync.Pool{
	New: func() any {
		parser := ts.NewParser()
		if err := parser.SetLanguage(languages.typescript); err != nil {
			panic(fmt.Sprintf("failed to set TypeScript language: %v", err))
		}
		return parser
	},
}

var tsxParserPool = sync.Pool{
	New: func() any {
		parser := ts.NewParser()
		if err := parser.SetLanguage(languages.tsx); err != nil {
			panic(fmt.Sprintf("failed to set TSX language: %v", err))
		}
		return parser
	},
}

// RetrieveTypeScriptParser returns a pooled TypeScript parser. Call
// PutTypeScriptParser when done.
func RetrieveTypeScriptParser() *ts.Parser {
	return typescriptParserPool.Get().(*ts.Parser)
}

// PutTypeScriptParser returns a parser to the TypeScript pool.
func PutTypeScriptParser(parser *ts.Parser) {
	parser.Reset()
	typescriptParserPool.Put(parser)
}

// RetrieveTSXParser returns a pooled TSX parser. Call PutTSXParser when done.
func RetrieveTSXParser() *ts.Parser {
	return tsxParserPool.Get().(*ts.Parser)
}

// PutTSXParser returns a parser to the TSX pool.
func PutTSXParser(parser *ts.Parser) {
	parser.Reset()
	tsxParserPool.Put(parser)
}

// QuerySelector names which query files to load for a given language.
type QuerySelector struct {
	TypeScript []string
	TSX        []string
}

// ExportGraphQueries loads the query set ingest needs to discover exports,
// imports, and re-export chains.
func ExportGraphQueries() QuerySelector {
	return QuerySelector{
		TypeScript: []string{"exports", "imports", "reexports"},
		TSX:        []string{"exports", "imports", "reexports"},
	}
}

type QueryManager struct {
	typescript map[string]*ts.Query
	tsx        map[string]*ts.Query
}

func NewQueryManager(selector QuerySelector) (*QueryManager, error) {
	start := time.Now()
	qm := &QueryManager{
		typescript: make(map[string]*ts.Query),
		tsx:        make(map[string]*ts.Query),
	}

	for _, name := range selector.TypeScript {
		if err := qm.loadQuery("typescript", name); err != nil {
			qm.Close()
			return nil, fmt.Errorf("failed to load TypeScript query %s: %w", name, err)
		}
	}
	for _, name := range selector.TSX {
		if err := qm.loadQuery("tsx", name); err != nil {
			qm.Close()
			return nil, fmt.Errorf("failed to load TSX query %s: %w", name, err)
		}
	}

	pterm.Debug.Println("Constructing selected queries took", time.Since(start))
	return qm, nil
}

func (qm *QueryManager) loadQuery(language, name string) error {
	// Use path.Join (not filepath.Join) - embed.FS requires POSIX / separators.
	queryPath := path.Join(language, name+".scm")
	data, err := queryFiles.ReadFile(queryPath)
	if err != nil {
		return fmt.Errorf("failed to read query file %s: %w", queryPath, err)
	}

	var lang *ts.Language
	switch language {
	case "typescript":
		lang = languages.typescript
	case "tsx":
		lang = languages.tsx
	default:
		return fmt.Errorf("unknown language %s", language)
	}

	query, qerr := ts.NewQuery(lang, string(data))
	if qerr != nil {
		return fmt.Errorf("failed to parse query %s: %w", name, qerr)
	}

	switch language {
	case "typescript":
		qm.typescript[name] = query
	case "tsx":
		qm.tsx[name] = query
	}
	return nil
}

func (qm *QueryManager) Close() {
	for _, q := range qm.typescript {
		q.Close()
	}
	for _, q := range qm.tsx {
		q.Close()
	}
}

func (qm *QueryManager) getQuery(name, language string) (*ts.Query, error) {
	var q *ts.Query
	var ok bool
	switch language {
	case "typescript":
		q, ok = qm.typescript[name]
	case "tsx":
		q, ok = qm.tsx[name]
	}
	if !ok {
		return nil, fmt.Errorf("unknown query %s for language %s", name, language)
	}
	return q, nil
}

type CaptureInfo struct {
	NodeId    int
	Text      string
	StartByte uint
	EndByte   uint
}

type CaptureMap = map[string][]CaptureInfo

type QueryMatcher struct {
	query  *ts.Query
	cursor *ts.QueryCursor
}

func (qm QueryMatcher) Close() {
	// Queries themselves are only closed by QueryManager.Close; only the
	// per-use cursor is ours to release.
	qm.cursor.Close()
}

func (qm QueryMatcher) GetCaptureNameByIndex(index uint32) string {
	return qm.query.CaptureNames()[index]
}

func NewQueryMatcher(manager *QueryManager, language, name string) (*QueryMatcher, error) {
	if manager == nil {
		return nil, ErrNoQueryManager
	}
	query, err := manager.getQuery(name, language)
	if err != nil {
		return nil, err
	}
	cursor := ts.NewQueryCursor()
	m := QueryMatcher{query, cursor}
	return &m, nil
}

func (q QueryMatcher) AllQueryMatches(node *ts.Node, text []byte) iter.Seq[*ts.QueryMatch] {
	matches := q.cursor.Matches(q.query, node, text)
	return func(yield func(m *ts.QueryMatch) bool) {
		for {
			m := matches.Next()
			if m == nil {
				break
			}
			if !yield(m) {
				return
			}
		}
	}
}
