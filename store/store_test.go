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

package store

import (
	"testing"

	O "github.com/IBM/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleStability(t *testing.T) {
	s := NewStore()
	m := s.CreateExportsInfo()

	x, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)

	require.NoError(t, s.SetProvided(x, ProvidedProvided))
	require.NoError(t, s.SetUsed(x, Used, ""))

	x2, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)
	assert.Equal(t, x, x2, "handle must stay stable across mutation")

	p, err := s.Provided(x2)
	require.NoError(t, err)
	assert.Equal(t, ProvidedProvided, p)
}

func TestGetExportInfoDeterministic(t *testing.T) {
	newBuild := func() (*Store, ExportsInfoHandle) {
		s := NewStore()
		m := s.CreateExportsInfo()
		for _, name := range []string{"b", "a", "c"} {
			_, err := s.GetExportInfo(m, name)
			require.NoError(t, err)
		}
		return s, m
	}

	s1, m1 := newBuild()
	s2, m2 := newBuild()

	ord1, err := s1.OrderedExports(m1)
	require.NoError(t, err)
	ord2, err := s2.OrderedExports(m2)
	require.NoError(t, err)

	names1 := make([]string, len(ord1))
	for i, e := range ord1 {
		names1[i] = e.Name
	}
	names2 := make([]string, len(ord2))
	for i, e := range ord2 {
		names2[i] = e.Name
	}
	assert.Equal(t, names2, names1)
	assert.Equal(t, []string{"a", "b", "c"}, names1)
}

func TestGetExportInfoInheritsFromOtherExportsInfo(t *testing.T) {
	s := NewStore()
	m := s.CreateExportsInfo()
	other, err := s.OtherExportsInfo(m)
	require.NoError(t, err)
	require.NoError(t, s.SetProvided(other, ProvidedUnknown))
	require.NoError(t, s.SetCanMangleUse(other, O.Some(false)))

	x, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)

	p, err := s.Provided(x)
	require.NoError(t, err)
	assert.Equal(t, ProvidedUnknown, p)

	canUse, err := s.CanMangleUse(x)
	require.NoError(t, err)
	v, ok := unwrap(canUse)
	require.True(t, ok)
	assert.False(t, v)
}

func TestInheritedEmptyTargetReplacedWithDefault(t *testing.T) {
	s := NewStore()
	m := s.CreateExportsInfo()
	other, err := s.OtherExportsInfo(m)
	require.NoError(t, err)
	require.NoError(t, s.SetTarget(other, defaultTargetKey, O.None[TargetItem]()))
	// SetTarget with None deletes the (nonexistent) key but still flips
	// target_is_set, producing exactly the "true but empty" template state
	// the open question is about.

	x, err := s.GetExportInfo(m, "y")
	require.NoError(t, err)
	targets, isSet, err := s.Targets(x)
	require.NoError(t, err)
	assert.True(t, isSet)
	require.Contains(t, targets, defaultTargetKey)
	path, ok := unwrap(targets[defaultTargetKey].ExportPath)
	require.True(t, ok)
	assert.Equal(t, []string{"y"}, path)
}

func TestSetUnknownExportsProvided(t *testing.T) {
	s := NewStore()
	m := s.CreateExportsInfo()
	_, err := s.GetExportInfo(m, "a")
	require.NoError(t, err)

	changed, err := s.SetUnknownExportsProvided(m, false, nil, TargetItem{Dependency: "dep"})
	require.NoError(t, err)
	assert.True(t, changed)

	entries, err := s.OrderedExports(m)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	p, err := s.Provided(entries[0].Handle)
	require.NoError(t, err)
	assert.Equal(t, ProvidedUnknown, p)

	canMangle, err := s.CanMangleProvide(entries[0].Handle)
	require.NoError(t, err)
	v, ok := unwrap(canMangle)
	require.True(t, ok)
	assert.False(t, v)
}

func TestRedirectCycleRejected(t *testing.T) {
	s := NewStore()
	a := s.CreateExportsInfo()
	b := s.CreateExportsInfo()
	require.NoError(t, s.Redirect(a, b))
	err := s.Redirect(b, a)
	assert.Error(t, err)
}
