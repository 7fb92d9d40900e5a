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

package propagate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"webbundle.dev/xgraph/set"
	"webbundle.dev/xgraph/store"
)

func TestGetUsedAggregatesAcrossRuntimes(t *testing.T) {
	s := store.NewStore()
	m := s.CreateExportsInfo()
	x, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)
	require.NoError(t, s.SetHasUseInfo(m))
	require.NoError(t, s.SetUsed(x, store.OnlyPropertiesUsed, "node"))
	require.NoError(t, s.SetUsed(x, store.Used, "browser"))

	both := set.NewSet("node", "browser")
	got, err := GetUsed(s, x, both)
	require.NoError(t, err)
	assert.Equal(t, store.Used, got, "max across runtimes must win")

	nodeOnly := set.NewSet("node")
	got, err = GetUsed(s, x, nodeOnly)
	require.NoError(t, err)
	assert.Equal(t, store.OnlyPropertiesUsed, got)
}

func TestGetUsedGlobalWinsOverRuntime(t *testing.T) {
	s := store.NewStore()
	m := s.CreateExportsInfo()
	x, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)
	require.NoError(t, s.SetUsed(x, store.Used, ""))

	got, err := GetUsed(s, x, set.NewSet("node"))
	require.NoError(t, err)
	assert.Equal(t, store.Used, got)
}

func TestGetUsedExportsNamespaceWhenOtherUsed(t *testing.T) {
	s := store.NewStore()
	m := s.CreateExportsInfo()
	other, err := s.OtherExportsInfo(m)
	require.NoError(t, err)
	require.NoError(t, s.SetUsed(other, store.Unknown, ""))

	got, err := GetUsedExports(s, m, nil)
	require.NoError(t, err)
	assert.Equal(t, store.UsedExportsNamespace, got.Kind)
	assert.True(t, got.Flag)
}

func TestGetUsedExportsNamesWhenSomeUsed(t *testing.T) {
	s := store.NewStore()
	m := s.CreateExportsInfo()
	x, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)
	require.NoError(t, s.SetUsed(x, store.Used, ""))
	_, err = s.GetExportInfo(m, "y")
	require.NoError(t, err)

	got, err := GetUsedExports(s, m, nil)
	require.NoError(t, err)
	assert.Equal(t, store.UsedExportsNames, got.Kind)
	assert.Equal(t, []string{"x"}, got.Names)
}

func TestGetUsedExportsNamespaceFalseWhenOnlySideEffects(t *testing.T) {
	s := store.NewStore()
	m := s.CreateExportsInfo()
	_, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)
	require.NoError(t, s.SetUsedForSideEffectsOnly(m, ""))

	got, err := GetUsedExports(s, m, nil)
	require.NoError(t, err)
	assert.Equal(t, store.UsedExportsNamespace, got.Kind)
	assert.False(t, got.Flag)
}

func TestProcessExportInfoSkipsUnused(t *testing.T) {
	s := store.NewStore()
	m := s.CreateExportsInfo()
	x, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)

	out, err := ProcessExportInfo(s, nil, x, []string{"x"}, false, set.NewSet[store.ExportInfoHandle]())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestProcessExportInfoWholePrefixWhenFullyUsed(t *testing.T) {
	s := store.NewStore()
	m := s.CreateExportsInfo()
	x, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)
	require.NoError(t, s.SetUsed(x, store.Used, ""))

	out, err := ProcessExportInfo(s, nil, x, []string{"x"}, false, set.NewSet[store.ExportInfoHandle]())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"x"}, out[0])
}

func TestProcessExportInfoDescendsOnPropertiesUsed(t *testing.T) {
	s := store.NewStore()
	m := s.CreateExportsInfo()
	x, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)
	require.NoError(t, s.SetUsed(x, store.OnlyPropertiesUsed, ""))

	nested, err := s.CreateNestedExportsInfo(x)
	require.NoError(t, err)
	y, err := s.GetExportInfo(nested, "y")
	require.NoError(t, err)
	require.NoError(t, s.SetUsed(y, store.Used, ""))

	out, err := ProcessExportInfo(s, nil, x, []string{"x"}, false, set.NewSet[store.ExportInfoHandle]())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"x", "y"}, out[0])
}
