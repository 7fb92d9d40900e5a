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
	"sort"

	"webbundle.dev/xgraph/store"
)

// GetProvidedExports folds a whole exports surface's provision state:
// ProvidedAll when other_exports_info is Provided or Unknown (the surface
// isn't statically closed, so treat it as "everything"), Unknown when
// other_exports_info was never analyzed, and otherwise the sorted, deduped
// union of every name whose verdict is Provided or Unknown with whatever redirect_to's own
// fold contributes (spec §8 property 3).
func GetProvidedExports(s *store.Store, exportsInfo store.ExportsInfoHandle) (store.ProvidedExports, error) {
	rec, err := s.OtherExportsInfo(exportsInfo)
	if err != nil {
		return store.ProvidedExports{}, err
	}
	otherProvided, err := s.Provided(rec)
	if err != nil {
		return store.ProvidedExports{}, err
	}

	switch otherProvided {
	case store.ProvidedProvided, store.ProvidedUnknown:
		return store.ProvidedExports{Kind: store.ProvidedExportsAll}, nil
	case store.ProvidedUnset:
		return store.ProvidedExports{Kind: store.ProvidedExportsUnknown}, nil
	}

	names := map[string]bool{}
	entries, err := s.OrderedExports(exportsInfo)
	if err != nil {
		return store.ProvidedExports{}, err
	}
	for _, entry := range entries {
		p, err := s.Provided(entry.Handle)
		if err != nil {
			return store.ProvidedExports{}, err
		}
		if p == store.ProvidedProvided || p == store.ProvidedUnknown {
			names[entry.Name] = true
		}
	}

	redirect, err := s.RedirectTo(exportsInfo)
	if err != nil {
		return store.ProvidedExports{}, err
	}
	if target, ok := redirectUnwrap(redirect); ok {
		redirected, err := GetProvidedExports(s, target)
		if err != nil {
			return store.ProvidedExports{}, err
		}
		switch redirected.Kind {
		case store.ProvidedExportsAll:
			return store.ProvidedExports{Kind: store.ProvidedExportsAll}, nil
		case store.ProvidedExportsNames:
			for _, n := range redirected.Names {
				names[n] = true
			}
		}
	}

	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return store.ProvidedExports{Kind: store.ProvidedExportsNames, Names: out}, nil
}

// IsExportProvided is the per-path convenience wrapper over
// store.IsExportProvided for callers that only need the three-valued
// ExportProvided answer. It returns store.IsExportProvided's result
// unchanged; ok=false means there is no verdict, and callers check it.
func IsExportProvided(s *store.Store, exportsInfo store.ExportsInfoHandle, path []string) (store.ExportProvided, bool, error) {
	return s.IsExportProvided(exportsInfo, path)
}
