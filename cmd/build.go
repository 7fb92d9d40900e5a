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
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"webbundle.dev/xgraph/ingest"
	"webbundle.dev/xgraph/internal/platform"
)

// buildCmd runs one full ingest -> propagate pass over the configured
// project directory and prints the resulting exports-info report: every
// module's exports, whether each is provided, used, mangle-eligible, and
// (for re-exports) the module/path it ultimately resolves to.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the exports-info graph for the project and report it",
	Long: `build walks the configured project directory, parses every matched
TypeScript/JavaScript source file, and computes the exports-info graph: which
names each module provides, which names are used (from the workspace's own
point of view — entry modules are conservatively treated as used by
something outside the graph), and through which re-export chain each export
resolves.`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
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

	pterm.Debug.Println("Building exports-info graph for", cfg.ProjectDir)
	s, g, err := ingest.BuildFromWorkspace(fsys, cfg.ProjectDir, cfg.Ingest, parser, normalizer)
	if err != nil {
		return fmt.Errorf("building exports-info graph: %w", err)
	}
	pterm.Debug.Printfln("Discovered %d modules", len(g.Modules()))

	if err := seedUsage(s, g, cfg.Ingest.Runtimes); err != nil {
		return fmt.Errorf("seeding usage flags: %w", err)
	}

	reports, err := BuildReport(s, g, g, cfg.Ingest.Runtimes)
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}
	return printReport(reports, cfg.Output)
}
