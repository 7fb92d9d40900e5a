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
	"webbundle.dev/xgraph/ingest"
	"webbundle.dev/xgraph/store"
)

// seedUsage activates usage tracking on every module s/g built, then marks
// every entry module (one the workspace walk never saw imported) used in an
// unknown way for every configured runtime — the exports-info core has no
// opinion about what lies outside the workspace it was pointed at, so the
// CLI's own policy is the conservative one: an entry point could be read by
// literally anything downstream, so it is never eligible for
// "provably unused" the way a purely-internal module is.
//
// Internal modules are deliberately left at NoInfo: ingest never extracts
// which named bindings an import statement actually reads (see
// ingest.fileFacts's doc comment), so xgraph has no basis to claim a
// specific internal export is used, only that it was never proven used.
func seedUsage(s *store.Store, g *ingest.Graph, runtimes []string) error {
	tags := runtimes
	if len(tags) == 0 {
		tags = []string{""}
	}
	for _, module := range g.Modules() {
		h, ok := g.Handle(module)
		if !ok {
			continue
		}
		if err := s.SetHasUseInfo(h); err != nil {
			return err
		}
		if !g.IsEntry(module) {
			continue
		}
		for _, tag := range tags {
			if _, err := s.SetUsedInUnknownWay(h, tag); err != nil {
				return err
			}
		}
	}
	return nil
}
