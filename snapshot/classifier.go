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

package snapshot

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// Classifier decides each path's PathClass from a configured set of glob
// patterns, the same matching idiom the teacher's workspace file discovery
// uses (doublestar.Match) plus a .gitignore-style exclude list
// (sabhiram/go-gitignore) for paths that should never be snapshotted at all
// — folded here into the Immutable class rather than a separate concept,
// since "never changes" and "never even considered" have the same effect on
// calc_modified_paths.
type Classifier struct {
	immutable []string
	managed   []string
	ignore    *ignore.GitIgnore
}

// DefaultIgnorePatterns mirrors the teacher's default exclude set for
// workspace file discovery (lsp/methods/textDocument/references).
var DefaultIgnorePatterns = []string{"node_modules/", ".git/"}

// NewClassifier builds a Classifier from glob patterns naming the Immutable
// and Managed classes; any path matching neither, and not excluded by
// ignorePatterns, falls into Other.
func NewClassifier(immutable, managed, ignorePatterns []string) *Classifier {
	return &Classifier{
		immutable: immutable,
		managed:   managed,
		ignore:    ignore.CompileIgnoreLines(ignorePatterns...),
	}
}

// Classify reports path's PathClass. path should be workspace-relative and
// slash-separated, matching doublestar's expected form.
func (c *Classifier) Classify(path string) PathClass {
	clean := filepath.ToSlash(path)
	if c.ignore != nil && c.ignore.MatchesPath(clean) {
		return Immutable
	}
	for _, pat := range c.immutable {
		if ok, _ := doublestar.Match(pat, clean); ok {
			return Immutable
		}
	}
	for _, pat := range c.managed {
		if ok, _ := doublestar.Match(pat, clean); ok {
			return Managed
		}
	}
	return Other
}

// ManagedRoot returns the nearest ancestor directory of path that contains a
// package.json, which the Managed strategy reads for its version string.
// It returns ok=false when no such ancestor exists within the workspace.
func ManagedRoot(fsys interface{ Exists(string) bool }, path string) (string, bool) {
	dir := filepath.Dir(filepath.Clean(path))
	for {
		candidate := filepath.Join(dir, "package.json")
		if fsys.Exists(candidate) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir || parent == "." || strings.TrimSuffix(parent, "/") == "" {
			return "", false
		}
		dir = parent
	}
}
