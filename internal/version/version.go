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

// Package version reports build metadata for the xgraph CLI, populated by
// -ldflags at release build time and falling back to "dev" otherwise.
package version

import "runtime/debug"

var (
	// version is overridden at build time: -ldflags "-X ...version.version=v1.2.3"
	version = "dev"
	commit  = "unknown"
)

// BuildInfo is the structured shape printed by `xgraph version -o json`.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"goVersion"`
}

// GetVersion returns the short human-readable version string.
func GetVersion() string {
	return version
}

// GetBuildInfo returns the full structured build info.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   version,
		Commit:    commit,
		GoVersion: "unknown",
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
	}
	return info
}
