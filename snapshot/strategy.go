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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"

	"golang.org/x/mod/semver"

	"webbundle.dev/xgraph/internal/platform"
)

type packageJSON struct {
	Version string `json:"version"`
}

// evaluate computes path's current Strategy for class. exists=false means
// the path itself is gone (Stat failed) — calc_modified_paths treats that as
// Deleted outright, without even looking at class. A present-but-unreadable
// Other-class path (exists=true, content read fails) still gets a Strategy,
// built from buildStart, so it reads as always-changed rather than silently
// dropped (spec's "missing-at-snapshot-time files are treated as always
// changed").
func evaluate(fsys platform.FileSystem, class PathClass, path string, buildStart int64) (strat Strategy, exists bool) {
	if !fsys.Exists(path) {
		return Strategy{}, false
	}
	switch class {
	case Managed:
		dir, ok := ManagedRoot(fsys, path)
		if !ok {
			return Strategy{Kind: Managed}, true
		}
		raw, err := fsys.ReadFile(filepath.Join(dir, "package.json"))
		if err != nil {
			return Strategy{Kind: Managed}, true
		}
		var pkg packageJSON
		if err := json.Unmarshal(raw, &pkg); err != nil {
			return Strategy{Kind: Managed}, true
		}
		return Strategy{Kind: Managed, Version: pkg.Version}, true
	case Other:
		raw, err := fsys.ReadFile(path)
		if err != nil {
			return Strategy{Kind: Other, ModTime: buildStart}, true
		}
		sum := sha256.Sum256(raw)
		return Strategy{Kind: Other, Hash: hex.EncodeToString(sum[:])}, true
	default:
		return Strategy{}, true
	}
}

// matches reports whether current (just evaluated, always exists=true when
// called) carries the same fingerprint as prior, a previously stored
// Strategy of the same Kind.
func (prior Strategy) matches(current Strategy) bool {
	switch prior.Kind {
	case Managed:
		// Compared as semver, the same call shape validate.go uses for
		// schema-version comparisons, rather than a raw string compare —
		// this keeps "1.0" and "1.0.0" from spuriously registering as a
		// version bump.
		return semver.Compare(
			semver.Canonical("v"+prior.Version),
			semver.Canonical("v"+current.Version),
		) == 0
	case Other:
		if current.ModTime != 0 || prior.ModTime != 0 {
			// Either side fell back to a build-timestamp fingerprint:
			// never treat two distinct builds' timestamps as equal.
			return false
		}
		return prior.Hash == current.Hash
	default:
		return false
	}
}
