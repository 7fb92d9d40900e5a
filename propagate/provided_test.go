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

	O "github.com/IBM/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"webbundle.dev/xgraph/store"
)

func TestGetProvidedExportsNamesUnion(t *testing.T) {
	s := store.NewStore()
	m := s.CreateExportsInfo()
	other, err := s.OtherExportsInfo(m)
	require.NoError(t, err)
	require.NoError(t, s.SetProvided(other, store.ProvidedNotProvided))

	a, err := s.GetExportInfo(m, "a")
	require.NoError(t, err)
	require.NoError(t, s.SetProvided(a, store.ProvidedProvided))

	b, err := s.GetExportInfo(m, "b")
	require.NoError(t, err)
	require.NoError(t, s.SetProvided(b, store.ProvidedNotProvided))

	got, err := GetProvidedExports(s, m)
	require.NoError(t, err)
	assert.Equal(t, store.ProvidedExportsNames, got.Kind)
	assert.Equal(t, []string{"a"}, got.Names)
}

func TestGetProvidedExportsOtherProvidedMeansAll(t *testing.T) {
	s := store.NewStore()
	m := s.CreateExportsInfo()
	other, err := s.OtherExportsInfo(m)
	require.NoError(t, err)
	require.NoError(t, s.SetProvided(other, store.ProvidedProvided))

	got, err := GetProvidedExports(s, m)
	require.NoError(t, err)
	assert.Equal(t, store.ProvidedExportsAll, got.Kind)
}

func TestGetProvidedExportsUnknownWhenNeverAnalyzed(t *testing.T) {
	s := store.NewStore()
	m := s.CreateExportsInfo()

	got, err := GetProvidedExports(s, m)
	require.NoError(t, err)
	assert.Equal(t, store.ProvidedExportsUnknown, got.Kind)
}

func TestGetProvidedExportsRedirectUnion(t *testing.T) {
	s := store.NewStore()
	a := s.CreateExportsInfo()
	b := s.CreateExportsInfo()
	require.NoError(t, s.Redirect(a, b))

	// a's own other_exports_info must be NotProvided (not Unset) for the
	// fold to proceed to the name-union branch instead of short-circuiting
	// to Unknown.
	otherA, err := s.OtherExportsInfo(a)
	require.NoError(t, err)
	require.NoError(t, s.SetProvided(otherA, store.ProvidedNotProvided))

	x, err := s.GetExportInfo(a, "x")
	require.NoError(t, err)
	require.NoError(t, s.SetProvided(x, store.ProvidedProvided))

	otherB, err := s.OtherExportsInfo(b)
	require.NoError(t, err)
	require.NoError(t, s.SetProvided(otherB, store.ProvidedNotProvided))
	y, err := s.GetExportInfo(b, "y")
	require.NoError(t, err)
	require.NoError(t, s.SetProvided(y, store.ProvidedProvided))

	got, err := GetProvidedExports(s, a)
	require.NoError(t, err)
	assert.Equal(t, store.ProvidedExportsNames, got.Kind)
	assert.ElementsMatch(t, []string{"x", "y"}, got.Names)
}

func TestCanMangleConjunction(t *testing.T) {
	s := store.NewStore()
	m := s.CreateExportsInfo()
	x, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)

	v, err := CanMangle(s, x)
	require.NoError(t, err)
	assert.False(t, O.IsSome(v), "no explicit answer on either side must stay unknown")

	require.NoError(t, s.SetCanMangleProvide(x, O.Some(true)))
	require.NoError(t, s.SetCanMangleUse(x, O.Some(true)))
	v, err = CanMangle(s, x)
	require.NoError(t, err)
	val, ok := unwrapBool(v)
	require.True(t, ok)
	assert.True(t, val)

	require.NoError(t, s.SetCanMangleUse(x, O.Some(false)))
	v, err = CanMangle(s, x)
	require.NoError(t, err)
	val, ok = unwrapBool(v)
	require.True(t, ok)
	assert.False(t, val)
}
