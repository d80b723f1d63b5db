/*
Copyright © 2024 the model-munger authors.
This file is part of model-munger.

model-munger is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

model-munger is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with model-munger.  If not, see <http://www.gnu.org/licenses/>.
*/

package grib

import (
	"math"
	"sort"

	munger "github.com/actris-cloudnet/model-munger"
)

// GRIB2 type-of-first-fixed-surface codes (code table 4.5).
const (
	surfaceGround    = 1
	surfaceIsobaric  = 100
	surfaceMeanSea   = 101
	surfaceHeight    = 103
	surfaceBelowLand = 106
)

// paramKey identifies a GRIB2 parameter on a particular level type.
type paramKey struct {
	discipline, category, number, surface int
}

// param describes how one GRIB2 parameter maps to a field.
type param struct {
	name  string
	units string
	level munger.LevelType
}

// params maps the GRIB2 coding of the ECMWF open-data parameters that
// model-munger uses. Keys are (discipline, parameter category,
// parameter number, type of first fixed surface). Mean sea level
// pressure appears under both its ECMWF and its WMO parameter number.
var params = map[paramKey]param{
	{0, 0, 0, surfaceIsobaric}:  {"t", "K", munger.LevelIsobaric},
	{0, 0, 0, surfaceHeight}:    {"2t", "K", munger.LevelHeightAboveGround},
	{0, 0, 6, surfaceHeight}:    {"2d", "K", munger.LevelHeightAboveGround},
	{2, 0, 2, surfaceBelowLand}: {"st", "K", munger.LevelBelowLand},
	{0, 1, 0, surfaceIsobaric}:  {"q", "kg kg**-1", munger.LevelIsobaric},
	{0, 2, 2, surfaceIsobaric}:  {"u", "m s**-1", munger.LevelIsobaric},
	{0, 2, 3, surfaceIsobaric}:  {"v", "m s**-1", munger.LevelIsobaric},
	{0, 2, 2, surfaceHeight}:    {"10u", "m s**-1", munger.LevelHeightAboveGround},
	{0, 2, 3, surfaceHeight}:    {"10v", "m s**-1", munger.LevelHeightAboveGround},
	{0, 2, 8, surfaceIsobaric}:  {"w", "Pa s**-1", munger.LevelIsobaric},
	{0, 3, 5, surfaceIsobaric}:  {"gh", "gpm", munger.LevelIsobaric},
	{0, 3, 0, surfaceGround}:    {"sp", "Pa", munger.LevelSurface},
	{0, 3, 0, surfaceMeanSea}:   {"msl", "Pa", munger.LevelMeanSea},
	{0, 3, 1, surfaceMeanSea}:   {"msl", "Pa", munger.LevelMeanSea},
}

// ShortNames returns the sorted short names of all parameters in the
// parameter table, for use in index-based subset downloads.
func ShortNames() []string {
	seen := make(map[string]struct{})
	var o []string
	for _, p := range params {
		if _, ok := seen[p.name]; !ok {
			seen[p.name] = struct{}{}
			o = append(o, p.name)
		}
	}
	sort.Strings(o)
	return o
}

// lookup finds the parameter mapping for a GRIB2 message, returning
// false for parameters model-munger does not use.
func lookup(discipline, category, number, surface int) (param, bool) {
	p, ok := params[paramKey{discipline, category, number, surface}]
	return p, ok
}

// coords reconstructs evenly spaced grid coordinates [degrees] from
// the first and last coordinate of the grid definition.
func coords(first, last float64, n int) []float64 {
	o := make([]float64, n)
	if n == 1 {
		o[0] = first
		return o
	}
	step := (last - first) / float64(n-1)
	for i := range o {
		o[i] = first + float64(i)*step
	}
	return o
}

// normalizeLons maps longitudes of 180 degrees or more into the range
// [-180,180), preserving grid order.
func normalizeLons(lons []float64) []float64 {
	for i, l := range lons {
		if l >= 180 {
			lons[i] = l - 360
		}
	}
	return lons
}

// resolutionKM converts an i-direction increment [micro-degrees] to a
// great-circle distance [km] on the Earth radius assumed by the IFS.
func resolutionKM(di float64) float64 {
	return math.Abs(di) * 1e-6 / 360 * 2 * math.Pi * munger.EarthRadius * 1e-3
}
