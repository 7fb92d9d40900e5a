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
package config

import "fmt"

// IngestConfig controls which files the ingest package walks and parses.
type IngestConfig struct {
	// List of files or file globs to include in the export graph.
	Files []string `mapstructure:"files" yaml:"files"`
	// List of files or file globs to exclude from the export graph.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	// Do not exclude files that are excluded by default (*.d.ts, test files).
	NoDefaultExcludes bool `mapstructure:"noDefaultExcludes" yaml:"noDefaultExcludes"`
	// Runtimes the build is partitioned for (e.g. "browser", "node"). Empty
	// means the build isn't runtime-partitioned.
	Runtimes []string `mapstructure:"runtimes" yaml:"runtimes"`
}

// SnapshotConfig controls the build cache's invalidation engine.
type SnapshotConfig struct {
	// Directory the on-disk snapshot scope is rooted at.
	CacheDir string `mapstructure:"cacheDir" yaml:"cacheDir"`
	// Additional glob patterns treated as Immutable (never re-fingerprinted).
	Immutable []string `mapstructure:"immutable" yaml:"immutable"`
	// Additional glob patterns treated as Managed (package.json version strategy).
	Managed []string `mapstructure:"managed" yaml:"managed"`
}

// OutputFormat is the closed set of report formats the build/watch
// subcommands can emit.
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// XgraphConfig is the root configuration object, bound to CLI flags,
// environment variables, and the project's config file by viper.
type XgraphConfig struct {
	ProjectDir string `mapstructure:"projectDir" yaml:"projectDir"`
	ConfigFile string `mapstructure:"configFile" yaml:"configFile"`
	// Report output format: "text" or "json".
	Output string `mapstructure:"output" yaml:"output"`
	// Ingest options.
	Ingest IngestConfig `mapstructure:"ingest" yaml:"ingest"`
	// Snapshot/cache options.
	Snapshot SnapshotConfig `mapstructure:"snapshot" yaml:"snapshot"`
	// Verbose logging output.
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

// Clone returns a deep copy of c; mutating the clone never affects c.
func (c *XgraphConfig) Clone() *XgraphConfig {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Ingest.Files != nil {
		clone.Ingest.Files = append([]string(nil), c.Ingest.Files...)
	}
	if c.Ingest.Exclude != nil {
		clone.Ingest.Exclude = append([]string(nil), c.Ingest.Exclude...)
	}
	if c.Ingest.Runtimes != nil {
		clone.Ingest.Runtimes = append([]string(nil), c.Ingest.Runtimes...)
	}
	if c.Snapshot.Immutable != nil {
		clone.Snapshot.Immutable = append([]string(nil), c.Snapshot.Immutable...)
	}
	if c.Snapshot.Managed != nil {
		clone.Snapshot.Managed = append([]string(nil), c.Snapshot.Managed...)
	}
	return &clone
}

// Validate rejects configuration combinations the CLI cannot act on. An
// empty Output defaults to text at the call site, so it is accepted here.
func (c *XgraphConfig) Validate() error {
	switch c.Output {
	case "", OutputFormatText, OutputFormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid output format %q: must be one of %q or %q", c.Output, OutputFormatText, OutputFormatJSON)
	}
}
