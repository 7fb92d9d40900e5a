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

package scope

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gregjones/httpcache/diskcache"
)

// diskIndexKey is a reserved key DiskScope uses to persist the set of keys
// currently stored, since diskcache.Cache (built on peterbourgon/diskv) only
// exposes point Get/Set/Delete, not enumeration — the same limitation
// workspace.HTTPCache never has to work around, because httpcache.Transport
// only ever needs point lookups by request key.
const diskIndexKey = "\x00index"

// DiskScope is a Scope backed by github.com/gregjones/httpcache/diskcache,
// the same on-disk cache library the teacher already depends on for its HTTP
// response cache (workspace/httpcache.go) — reused here for a different
// cache namespace (export-graph snapshots) rather than hand-rolling a
// file-per-key store.
type DiskScope struct {
	mu    sync.Mutex
	cache *diskcache.Cache
}

// NewDiskScope returns a DiskScope rooted at dir, creating it on first use.
func NewDiskScope(dir string) *DiskScope {
	return &DiskScope{cache: diskcache.New(dir)}
}

func (d *DiskScope) index() ([]string, error) {
	raw, ok := d.cache.Get(diskIndexKey)
	if !ok {
		return nil, nil
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (d *DiskScope) writeIndex(keys []string) error {
	raw, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	d.cache.Set(diskIndexKey, raw)
	return nil
}

func (d *DiskScope) Load(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	keys, err := d.index()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		if v, ok := d.cache.Get(k); ok {
			out = append(out, Entry{Key: k, Value: v})
		}
	}
	return out, nil
}

func (d *DiskScope) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache.Set(key, value)
	keys, err := d.index()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if k == key {
			return nil
		}
	}
	return d.writeIndex(append(keys, key))
}

func (d *DiskScope) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache.Delete(key)
	keys, err := d.index()
	if err != nil {
		return err
	}
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return d.writeIndex(out)
}
