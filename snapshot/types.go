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

// Package snapshot computes per-path validation fingerprints ("strategies")
// and, on reload, classifies each previously-snapshotted path as Modified,
// Deleted, or Unchanged — the build cache's invalidation engine (spec §4.3).
package snapshot

// PathClass is the closed set of ways a path's strategy gets computed.
type PathClass int

const (
	// Immutable paths never change during the build's lifetime and are
	// skipped entirely — never written to the snapshot scope.
	Immutable PathClass = iota
	// Managed paths live inside a package whose directory carries a
	// declared version file; the strategy is that package's version string.
	Managed
	// Other paths fall back to a content hash, or a build-start timestamp
	// when the path exists but its contents cannot be read.
	Other
)

// Status is the verdict calc_modified_paths assigns to a previously
// snapshotted path.
type Status int

const (
	Unchanged Status = iota
	Modified
	Deleted
)

func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Strategy is the serialized fingerprint recorded for one snapshotted path.
// Kind discriminates which class produced it, so re-evaluation knows which
// comparison to run without needing separate wire types.
type Strategy struct {
	Kind    PathClass `json:"kind"`
	Version string    `json:"version,omitempty"`
	Hash    string    `json:"hash,omitempty"`
	ModTime int64     `json:"mtime,omitempty"`
}

// Result is the outcome of CalcModifiedPaths: every previously snapshotted
// path partitioned into exactly one of Modified, Deleted, or Unchanged, plus
// whether the underlying scope held any prior snapshot at all.
type Result struct {
	Modified  []string
	Deleted   []string
	Unchanged []string
	HotStart  bool
}
