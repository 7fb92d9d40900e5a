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

// Package scope implements the opaque key/value storage the snapshot engine
// persists its per-path strategy records into (spec §6, "Snapshot storage").
// A Scope carries no name: each Scope value is one flat key namespace, and
// keys written through two Scopes sharing one backing directory can collide.
package scope

import "context"

// Entry is one stored (key, value) pair as returned by Load.
type Entry struct {
	Key   string
	Value []byte
}

// Scope is an async key/value store: write-through Set (no buffering, no
// transaction — spec §5 cancellation note), point Remove, and a full Load
// enumerating everything currently stored.
type Scope interface {
	Load(ctx context.Context) ([]Entry, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
