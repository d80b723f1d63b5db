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

// Package munger extracts vertical profiles from numerical weather
// prediction model output and writes them to netCDF files, one file
// per measurement site.
package munger

import (
	"time"

	"github.com/ctessum/geom"
)

// Site is a measurement location that profiles are extracted for.
type Site struct {
	// ID is the machine-readable site identifier, e.g. "hyytiala".
	ID string

	// Name is the human-readable site name.
	Name string

	// Location holds the site coordinates: X is the longitude and
	// Y is the latitude, both in degrees.
	Location geom.Point
}

// LevelType classifies the vertical level of a model field.
type LevelType int

const (
	LevelSurface LevelType = iota
	LevelMeanSea
	LevelHeightAboveGround
	LevelBelowLand
	LevelIsobaric
)

// Field is one decoded horizontal field of model output on a regular
// latitude-longitude grid.
type Field struct {
	// Name is the ECMWF short name of the variable, e.g. "t" or "10u".
	Name string

	// Units is the unit specification of the values, in the notation
	// used by the GRIB parameter tables (e.g. "m s**-1").
	Units string

	// Level is the type of vertical level the field is valid on.
	Level LevelType

	// Pressure is the level pressure [Pa]. It is only set for
	// isobaric fields.
	Pressure float64

	// Reference is the model initialization time (UTC).
	Reference time.Time

	// Step is the forecast step [hours].
	Step int

	// Lats and Lons are the grid coordinates [degrees]. Longitudes
	// are normalized to the range [-180,180).
	Lats, Lons []float64

	// Resolution is the horizontal grid resolution [km].
	Resolution float64

	// Values holds the data in row-major [lat][lon] order.
	Values []float64
}

// At returns the value at the given latitude and longitude indices.
func (f *Field) At(latIdx, lonIdx int) float64 {
	return f.Values[latIdx*len(f.Lons)+lonIdx]
}

// ncNames maps ECMWF short names to the names used in the output files.
// Geopotential height is only used to derive other variables and has no
// output name.
var ncNames = map[string]string{
	"10u": "sfc_wind_u_10m",
	"10v": "sfc_wind_v_10m",
	"2d":  "sfc_dewpoint_temp_2m",
	"2t":  "sfc_temp_2m",
	"msl": "sfc_pressure_amsl",
	"sp":  "sfc_pressure",
	"st":  "soil_temperature",
	"t":   "temperature",
	"u":   "uwind",
	"v":   "vwind",
	"w":   "omega",
	"q":   "q",
}

// gribUnits lists the units each input field is required to have.
var gribUnits = map[string]string{
	"10u": "m s**-1",
	"10v": "m s**-1",
	"2d":  "K",
	"2t":  "K",
	"gh":  "gpm",
	"msl": "Pa",
	"q":   "kg kg**-1",
	"sp":  "Pa",
	"st":  "K",
	"t":   "K",
	"u":   "m s**-1",
	"v":   "m s**-1",
	"w":   "Pa s**-1",
}
