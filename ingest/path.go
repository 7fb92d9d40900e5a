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
	"path"
	"strings"
)

// PathNormalizer resolves the relative specifiers tree-sitter finds in
// source text into the workspace-relative module keys store.Store's
// DependencyID space is keyed by. Adapted from lsp/types.PathNormalizer,
// but resolving "../" segments against the importing module's own
// directory instead of the teacher's strip-the-prefix shortcut.
type PathNormalizer interface {
	// ToSlash normalizes a filesystem path discovered during the workspace
	// walk into a module key.
	ToSlash(p string) string
	// ModulePath resolves specifier, written inside fromModule, to a
	// workspace-relative module key. ok is false for bare specifiers
	// (no "./" or "../" prefix), which name external packages xgraph has
	// no resolution algorithm for.
	ModulePath(fromModule, specifier string) (resolved string, ok bool)
}

// DefaultPathNormalizer implements PathNormalizer using path.Join/path.Clean,
// the same POSIX-style join embed.FS and the rest of the tree-sitter query
// machinery already require (queries.loadQuery uses path.Join, not
// filepath.Join, for the identical reason).
type DefaultPathNormalizer struct{}

func (DefaultPathNormalizer) ToSlash(p string) string {
	return path.Clean(path.ToSlash(p))
}

func (DefaultPathNormalizer) ModulePath(fromModule, specifier string) (string, bool) {
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
		return "", false
	}
	dir := path.Dir(fromModule)
	return path.Clean(path.Join(dir, specifier)), true
}
