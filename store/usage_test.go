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

func TestSetUsedConditionallyNeverLowers(t *testing.T) {
	s := NewStore()
	m := s.CreateExportsInfo()
	x, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)
	require.NoError(t, s.SetUsed(x, Used, "r1"))

	lt := func(want UsageState) func(UsageState) bool {
		return func(cur UsageState) bool { return cur < want }
	}

	changed, err := s.SetUsedConditionally(x, lt(OnlyPropertiesUsed), OnlyPropertiesUsed, "r1")
	require.NoError(t, err)
	assert.False(t, changed, "predicate false (Used is not < OnlyPropertiesUsed): must not downgrade")

	_, _, perRuntime, err := s.UsageRaw(x)
	require.NoError(t, err)
	assert.Equal(t, Used, perRuntime["r1"])
}

func TestUsedInRuntimeNormalized(t *testing.T) {
	s := NewStore()
	m := s.CreateExportsInfo()
	x, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)

	require.NoError(t, s.SetUsed(x, Used, "r1"))
	_, _, perRuntime, err := s.UsageRaw(x)
	require.NoError(t, err)
	assert.NotEmpty(t, perRuntime)

	require.NoError(t, s.SetUsed(x, Unused, "r1"))
	_, _, perRuntime, err = s.UsageRaw(x)
	require.NoError(t, err)
	assert.Empty(t, perRuntime, "emptied used_in_runtime must normalize to absent, not an empty map")
}

func TestRuntimeSplitNormalizes(t *testing.T) {
	// S3: set Used in r1 then Unused in r1; final state is Unused and
	// used_in_runtime is normalized to absent.
	s := NewStore()
	m := s.CreateExportsInfo()
	x, err := s.GetExportInfo(m, "x")
	require.NoError(t, err)

	require.NoError(t, s.SetUsed(x, Used, "r1"))
	require.NoError(t, s.SetUsed(x, Unused, "r1"))

	_, global, perRuntime, err := s.UsageRaw(x)
	require.NoError(t, err)
	assert.Empty(t, perRuntime)
	assert.False(t, O.IsSome(global))
}

func TestSetAllKnownExportsUsedOnlyRaisesProvided(t *testing.T) {
	s := NewStore()
	m := s.CreateExportsInfo()
	known, err := s.GetExportInfo(m, "known")
	require.NoError(t, err)
	require.NoError(t, s.SetProvided(known, ProvidedProvided))

	unknown, err := s.GetExportInfo(m, "unknown")
	require.NoError(t, err)
	require.NoError(t, s.SetProvided(unknown, ProvidedUnknown))

	changed, err := s.SetAllKnownExportsUsed(m, "")
	require.NoError(t, err)
	assert.True(t, changed)

	_, g1, _, err := s.UsageRaw(known)
	require.NoError(t, err)
	v1, ok := unwrap(g1)
	require.True(t, ok)
	assert.Equal(t, Used, v1)

	_, g2, _, err := s.UsageRaw(unknown)
	require.NoError(t, err)
	assert.False(t, O.IsSome(g2))
}
