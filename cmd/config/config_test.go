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

import (
	"strings"
	"testing"
)

func TestValidate_ValidOutputFormats(t *testing.T) {
	validFormats := []string{"", OutputFormatText, OutputFormatJSON}

	for _, format := range validFormats {
		t.Run(format, func(t *testing.T) {
			cfg := &XgraphConfig{Output: format}

			if err := cfg.Validate(); err != nil {
				t.Errorf("Expected format '%s' to be valid, got error: %v", format, err)
			}
		})
	}
}

func TestValidate_InvalidOutputFormat(t *testing.T) {
	invalidFormats := []string{"xml", "yaml", "JSON", "Text"}

	for _, format := range invalidFormats {
		t.Run(format, func(t *testing.T) {
			cfg := &XgraphConfig{Output: format}

			err := cfg.Validate()
			if err == nil {
				t.Errorf("Expected format '%s' to be rejected, but validation passed", format)
			}

			if !strings.Contains(err.Error(), format) {
				t.Errorf("Error message should mention invalid format '%s', got: %v", format, err)
			}

			if !strings.Contains(err.Error(), "text") || !strings.Contains(err.Error(), "json") {
				t.Errorf("Error message should suggest valid formats, got: %v", err)
			}
		})
	}
}

func TestValidate_EmptyConfigValid(t *testing.T) {
	cfg := &XgraphConfig{}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Empty config should be valid, got error: %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := &XgraphConfig{
		ProjectDir: ".",
		Ingest: IngestConfig{
			Files:    []string{"src/**/*.ts"},
			Runtimes: []string{"browser"},
		},
		Snapshot: SnapshotConfig{
			Immutable: []string{"vendor/**"},
		},
	}

	clone := cfg.Clone()
	clone.Ingest.Files[0] = "mutated"
	clone.Ingest.Runtimes = append(clone.Ingest.Runtimes, "node")
	clone.Snapshot.Immutable[0] = "mutated"

	if cfg.Ingest.Files[0] != "src/**/*.ts" {
		t.Errorf("clone mutated original Files slice")
	}
	if len(cfg.Ingest.Runtimes) != 1 || cfg.Ingest.Runtimes[0] != "browser" {
		t.Errorf("clone mutated original Runtimes slice")
	}
	if cfg.Snapshot.Immutable[0] != "vendor/**" {
		t.Errorf("clone mutated original Snapshot.Immutable slice")
	}
}

func TestCloneOfNil(t *testing.T) {
	var cfg *XgraphConfig
	if cfg.Clone() != nil {
		t.Error("Clone of a nil *XgraphConfig must return nil")
	}
}
