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
	"context"
	"encoding/json"
	"sync"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"webbundle.dev/xgraph/internal/logging"
	"webbundle.dev/xgraph/internal/platform"
	"webbundle.dev/xgraph/scope"
)

// sniffKind reads a stored Strategy's Kind discriminator directly out of its
// serialized bytes, without paying for a full json.Unmarshal — used when
// CalcModifiedPaths only needs to decide whether a path's class changed
// since it was last snapshotted.
func sniffKind(raw []byte) PathClass {
	return PathClass(gjson.GetBytes(raw, "kind").Int())
}

// Engine is the snapshot/invalidation engine: it fingerprints a set of
// input paths and, on a later rebuild, decides which of them changed
// without re-reading every file end-to-end (spec §4.3).
type Engine struct {
	fsys       platform.FileSystem
	scope      scope.Scope
	classifier *Classifier
	buildStart int64
}

// NewEngine wires an Engine to its filesystem, storage scope, and path
// classifier. buildStart is a fixed instant (milliseconds, caller-supplied
// so the engine itself never calls time.Now — Workflow-style determinism
// discipline carried into the runtime API too) used as the Other-class
// fallback fingerprint for paths unreadable at Add time.
func NewEngine(fsys platform.FileSystem, sc scope.Scope, classifier *Classifier, buildStart int64) *Engine {
	return &Engine{fsys: fsys, scope: sc, classifier: classifier, buildStart: buildStart}
}

// Add fingerprints each of paths and writes its strategy into the backing
// scope. Immutable paths and paths whose metadata lookup fails outright are
// silently skipped, per spec §4.3 and §7 ("I/O errors during snapshot:
// swallow per-path").
func (e *Engine) Add(ctx context.Context, paths []string) error {
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		class := e.classifier.Classify(p)
		if class == Immutable {
			continue
		}
		if !e.fsys.Exists(p) {
			logging.Debug("snapshot: skipping absent path %q", p)
			continue
		}
		strat, _ := evaluate(e.fsys, class, p, e.buildStart)
		raw, err := json.Marshal(strat)
		if err != nil {
			return err
		}
		if err := e.scope.Set(ctx, p, raw); err != nil {
			logging.Debug("snapshot: failed to store %q: %v", p, err)
			continue
		}
	}
	return nil
}

// Remove deletes paths' entries from the backing scope, if present.
func (e *Engine) Remove(ctx context.Context, paths []string) error {
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.scope.Remove(ctx, p); err != nil {
			logging.Debug("snapshot: failed to remove %q: %v", p, err)
		}
	}
	return nil
}

// CalcModifiedPaths loads every previously-stored (path, strategy) pair,
// re-evaluates each one concurrently, and partitions the result into
// Modified, Deleted, and Unchanged. HotStart is true iff the scope held any
// prior snapshot at all. Per-path evaluation runs via errgroup fan-out
// (spec §5, "per-path strategy computation fans out concurrently"); results
// are drained into the partition through a single mutex-guarded consumer,
// matching "an ordered consumer that serializes each insert" — ordered here
// means serialized, not that result order reflects input order, since the
// spec explicitly allows any interleaving across distinct paths.
func (e *Engine) CalcModifiedPaths(ctx context.Context) (Result, error) {
	entries, err := e.scope.Load(ctx)
	if err != nil {
		return Result{}, err
	}
	result := Result{HotStart: len(entries) > 0}
	if len(entries) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			class := e.classifier.Classify(entry.Key)
			if sniffKind(entry.Value) != Immutable && class == Immutable {
				// Reclassified as Immutable since the last snapshot: never
				// re-fingerprinted, so it can't have changed. Skip the full
				// unmarshal entirely.
				mu.Lock()
				result.Unchanged = append(result.Unchanged, entry.Key)
				mu.Unlock()
				return nil
			}

			var prior Strategy
			if err := json.Unmarshal(entry.Value, &prior); err != nil {
				return err
			}
			current, exists := evaluate(e.fsys, class, entry.Key, e.buildStart)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case gctx.Err() != nil:
				return gctx.Err()
			case !exists:
				result.Deleted = append(result.Deleted, entry.Key)
			case prior.matches(current):
				result.Unchanged = append(result.Unchanged, entry.Key)
			default:
				result.Modified = append(result.Modified, entry.Key)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return result, nil
}
