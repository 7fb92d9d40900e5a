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
	"encoding/json"
	"fmt"

	O "github.com/IBM/fp-go/option"
	"github.com/pterm/pterm"

	"webbundle.dev/xgraph/cmd/config"
	"webbundle.dev/xgraph/ingest"
	"webbundle.dev/xgraph/propagate"
	"webbundle.dev/xgraph/set"
	"webbundle.dev/xgraph/store"
)

// ExportReport is one named export's fold across provision, usage, mangle
// eligibility, and re-export target — the row shape both build's and
// watch's report render, adapted from the teacher's list.Renderable/
// ToTableRow pattern (list/table.go) but kept as a plain struct since
// xgraph has no polymorphic renderable set to satisfy an interface for.
type ExportReport struct {
	Name      string `json:"name"`
	Provided  string `json:"provided"`
	Used      string `json:"used"`
	CanMangle string `json:"canMangle"`
	Target    string `json:"target,omitempty"`
}

// ModuleReport is one module's full export surface.
type ModuleReport struct {
	Module  string         `json:"module"`
	Entry   bool           `json:"entry"`
	Exports []ExportReport `json:"exports"`
}

// BuildReport folds s/g's current state into one ModuleReport per module,
// in lexical module order, per export in OrderedExports order — the same
// determinism §8 property 2 requires of the store itself.
func BuildReport(s *store.Store, g *ingest.Graph, resolver propagate.DependencyResolver, runtimes []string) ([]ModuleReport, error) {
	runtime := set.NewSet(runtimes...)
	var reports []ModuleReport
	for _, module := range g.SortedModules() {
		h, ok := g.Handle(module)
		if !ok {
			continue
		}
		entries, err := s.OrderedExports(h)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", module, err)
		}
		mr := ModuleReport{Module: module, Entry: g.IsEntry(module)}
		for _, entry := range entries {
			er, err := buildExportReport(s, resolver, entry, runtime)
			if err != nil {
				return nil, fmt.Errorf("module %s export %s: %w", module, entry.Name, err)
			}
			mr.Exports = append(mr.Exports, er)
		}
		reports = append(reports, mr)
	}
	return reports, nil
}

func buildExportReport(s *store.Store, resolver propagate.DependencyResolver, entry store.ExportEntry, runtime propagate.RuntimeSpec) (ExportReport, error) {
	provided, err := s.Provided(entry.Handle)
	if err != nil {
		return ExportReport{}, err
	}
	used, err := propagate.GetUsed(s, entry.Handle, runtime)
	if err != nil {
		return ExportReport{}, err
	}
	mangle, err := propagate.CanMangle(s, entry.Handle)
	if err != nil {
		return ExportReport{}, err
	}

	er := ExportReport{
		Name:      entry.Name,
		Provided:  provided.String(),
		Used:      used.String(),
		CanMangle: optionalBoolString(mangle),
	}

	if target, ok, err := propagate.GetTarget(s, resolver, entry.Handle); err != nil {
		return ExportReport{}, err
	} else if ok {
		er.Target = propagate.DebugDescribeTarget(target)
	}
	return er, nil
}

// optionalBoolString renders an Option[bool] as the report column expects:
// "unknown" for None (propagate.CanMangle's "do not mangle" default),
// "true"/"false" otherwise.
func optionalBoolString(o O.Option[bool]) string {
	return O.Fold(
		func() string { return "unknown" },
		func(v bool) string {
			if v {
				return "true"
			}
			return "false"
		},
	)(o)
}

// printReportText renders reports as the pterm table the rest of the CLI
// uses (list/table.go's formatTable idiom): one table per module, header
// row plus one row per export.
func printReportText(reports []ModuleReport) {
	for _, mr := range reports {
		label := mr.Module
		if mr.Entry {
			label += " (entry)"
		}
		pterm.DefaultBasicText.Println(label)
		rows := make([][]string, 0, len(mr.Exports)+1)
		rows = append(rows, []string{"export", "provided", "used", "mangle", "target"})
		for _, er := range mr.Exports {
			rows = append(rows, []string{er.Name, er.Provided, er.Used, er.CanMangle, er.Target})
		}
		table, err := pterm.DefaultTable.WithHasHeader(true).WithBoxed(false).WithData(pterm.TableData(rows)).Srender()
		if err != nil {
			pterm.Error.Printf("rendering report for %s: %v\n", mr.Module, err)
			continue
		}
		pterm.Println(table)
	}
}

// printReportJSON renders reports as a single JSON array, for scripting.
func printReportJSON(reports []ModuleReport) error {
	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// printReport dispatches on the configured output format.
func printReport(reports []ModuleReport, output string) error {
	switch output {
	case config.OutputFormatJSON:
		return printReportJSON(reports)
	default:
		printReportText(reports)
		return nil
	}
}
