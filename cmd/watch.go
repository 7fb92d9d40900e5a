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

package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"webbundle.dev/xgraph/cmd/config"
	"webbundle.dev/xgraph/ingest"
	"webbundle.dev/xgraph/internal/logging"
	"webbundle.dev/xgraph/internal/platform"
	"webbundle.dev/xgraph/scope"
	"webbundle.dev/xgraph/snapshot"
)

// watchCmd keeps the exports-info graph current as source files change.
// Adapted from the teacher's lsp.InProcessGenerateWatcher
// (lsp/generate_watcher.go): the same grace-period-before-watching and
// debounced-rebuild shape, but driving a full ingest.BuildFromWorkspace pass
// through snapshot.Engine.CalcModifiedPaths instead of manifest generation.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the exports-info graph as workspace files change",
	Long: `watch performs one initial build, then watches every discovered source
file for changes. Each change (after a short debounce) triggers the snapshot
engine's CalcModifiedPaths; if anything actually changed, the graph is rebuilt
from the workspace and the report reprinted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watchGracePeriod mirrors the teacher's gracePeriod: give the filesystem a
// moment to settle after the initial build before registering watches, so
// the build's own file reads never show up as a false "changed" event.
const watchGracePeriod = 500 * time.Millisecond

// watchDebounce coalesces bursts of events (editors commonly emit several
// writes per save) into a single rebuild.
const watchDebounce = 300 * time.Millisecond

// maxWatchedFiles mirrors the teacher's refusal to watch unbounded file
// counts (lsp/generate_watcher.go watchFiles): fsnotify registers one watch
// per file here, and an unbounded workspace walk would exhaust the OS's
// inotify instance limits.
const maxWatchedFiles = 4000

// skipWatchDirs mirrors ingest's own skipDirNames (workspace.go): directories
// registerWatches never descends into when discovering new files to watch.
var skipWatchDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	fsys := platform.NewOSFileSystem()
	parser, err := ingest.NewTreeSitterExportParser()
	if err != nil {
		return fmt.Errorf("constructing export parser: %w", err)
	}
	defer parser.Close()
	normalizer := ingest.DefaultPathNormalizer{}

	sc, err := newSnapshotScope(cfg.Snapshot)
	if err != nil {
		return fmt.Errorf("opening snapshot scope: %w", err)
	}
	classifier := snapshot.NewClassifier(cfg.Snapshot.Immutable, cfg.Snapshot.Managed, snapshot.DefaultIgnorePatterns)
	engine := snapshot.NewEngine(fsys, sc, classifier, time.Now().UnixMilli())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rebuild := func() ([]string, error) {
		s, g, err := ingest.BuildFromWorkspace(fsys, cfg.ProjectDir, cfg.Ingest, parser, normalizer)
		if err != nil {
			return nil, fmt.Errorf("building exports-info graph: %w", err)
		}
		if err := seedUsage(s, g, cfg.Ingest.Runtimes); err != nil {
			return nil, fmt.Errorf("seeding usage flags: %w", err)
		}
		modules := g.Modules()
		if err := engine.Add(ctx, modules); err != nil {
			logging.Debug("watch: snapshotting discovered modules failed: %v", err)
		}
		reports, err := BuildReport(s, g, g, cfg.Ingest.Runtimes)
		if err != nil {
			return nil, fmt.Errorf("building report: %w", err)
		}
		if err := printReport(reports, cfg.Output); err != nil {
			return nil, err
		}
		return modules, nil
	}

	pterm.Debug.Println("Running initial build for", cfg.ProjectDir)
	modules, err := rebuild()
	if err != nil {
		return err
	}

	watcher, err := platform.NewFSNotifyFileWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	select {
	case <-time.After(watchGracePeriod):
	case <-ctx.Done():
		return nil
	}

	watched, err := registerWatches(watcher, cfg.ProjectDir, modules)
	if err != nil {
		return fmt.Errorf("registering file watches: %w", err)
	}
	pterm.Debug.Printfln("Watching %d files for changes", watched)

	return watchLoop(ctx, watcher, engine, rebuild)
}

// newSnapshotScope picks the teacher-style "persist if configured, otherwise
// keep it in memory" policy: a CacheDir turns on DiskScope (gregjones/httpcache
// diskcache-backed, per scope/disk.go); an empty one falls back to
// MemoryScope, so `watch` still works with zero configuration.
func newSnapshotScope(cfg config.SnapshotConfig) (scope.Scope, error) {
	if cfg.CacheDir == "" {
		return scope.NewMemoryScope(), nil
	}
	return scope.NewDiskScope(cfg.CacheDir), nil
}

// registerWatches walks root and adds every already-discovered module path
// (plus root's directory tree, so newly-created files are seen too) to
// watcher, mirroring the teacher's per-file fsnotify registration
// (lsp/generate_watcher.go watchFiles) rather than recursive directory
// watching, which fsnotify does not support natively.
func registerWatches(watcher platform.FileWatcher, root string, modules []string) (int, error) {
	seen := map[string]bool{}
	count := 0
	add := func(abs string) {
		if seen[abs] {
			return
		}
		seen[abs] = true
		if err := watcher.Add(abs); err != nil {
			logging.Debug("watch: failed to watch %q: %v", abs, err)
			return
		}
		count++
	}

	for _, module := range modules {
		add(filepath.Join(root, module))
		if count >= maxWatchedFiles {
			return count, fmt.Errorf("refusing to watch more than %d files, narrow ingest.files", maxWatchedFiles)
		}
	}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipWatchDirs[d.Name()] {
				return filepath.SkipDir
			}
			add(p)
			if count >= maxWatchedFiles {
				return filepath.SkipAll
			}
		}
		return nil
	})
	return count, err
}

// watchLoop drains watcher's events, debouncing bursts into a single
// CalcModifiedPaths check and, when anything actually changed, a full
// rebuild — the same debounceTimer idiom as the teacher's watchFiles loop
// (lsp/generate_watcher.go), adapted to go through the snapshot engine
// instead of regenerating unconditionally on every event.
func watchLoop(ctx context.Context, watcher platform.FileWatcher, engine *snapshot.Engine, rebuild func() ([]string, error)) error {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	fire := make(chan struct{}, 1)
	resetTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			logging.Debug("watch: file event %s %s", event.Op, event.Name)
			resetTimer()

		case err, ok := <-watcher.Errors():
			if !ok {
				return nil
			}
			logging.Debug("watch: file watcher error: %v", err)

		case <-fire:
			result, err := engine.CalcModifiedPaths(ctx)
			if err != nil {
				logging.Debug("watch: calc modified paths failed: %v", err)
				continue
			}
			if len(result.Modified) == 0 && len(result.Deleted) == 0 {
				continue
			}
			pterm.Debug.Printfln("Detected %d modified, %d deleted paths, rebuilding", len(result.Modified), len(result.Deleted))
			if err := engine.Remove(ctx, result.Deleted); err != nil {
				logging.Debug("watch: removing deleted paths from snapshot failed: %v", err)
			}
			if _, err := rebuild(); err != nil {
				pterm.Error.Printfln("rebuild failed: %v", err)
			}
		}
	}
}
