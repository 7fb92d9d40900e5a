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
	"testing"

	O "github.com/IBM/fp-go/option"
	"github.com/stretchr/testify/require"

	"webbundle.dev/xgraph/internal/platform/testutil"
)

func TestModuleReport_JSONShape(t *testing.T) {
	reports := []ModuleReport{
		{
			Module: "lib.ts",
			Entry:  false,
			Exports: []ExportReport{
				{Name: "bar", Provided: "provided", Used: "used", CanMangle: "true"},
				{Name: "foo", Provided: "provided", Used: "used", CanMangle: "false", Target: "lib.ts#bar"},
			},
		},
	}

	out, err := json.MarshalIndent(reports, "", "  ")
	require.NoError(t, err)

	testutil.CheckGolden(t, "report", out, testutil.GoldenOptions{
		Dir:         "testdata/goldens",
		Extension:   ".json",
		UseJSONDiff: true,
	})
}

func TestOptionalBoolString(t *testing.T) {
	require.Equal(t, "unknown", optionalBoolString(O.None[bool]()))
	require.Equal(t, "true", optionalBoolString(O.Some(true)))
	require.Equal(t, "false", optionalBoolString(O.Some(false)))
}
