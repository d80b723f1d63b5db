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

package munger

// VarMeta describes the netCDF attributes of one output variable.
type VarMeta struct {
	Name         string
	Units        string
	LongName     string
	StandardName string
	Comment      string
	Dims         []string
}

// Attributes lists the output variables and their attributes, in the
// order they appear in the output files. The time coordinate variable
// is handled separately by Save.
var Attributes = []VarMeta{
	{
		Name:         "latitude",
		Units:        "degree_north",
		LongName:     "Latitude of model gridpoint",
		StandardName: "latitude",
	},
	{
		Name:         "longitude",
		Units:        "degree_east",
		LongName:     "Longitude of model gridpoint",
		StandardName: "longitude",
	},
	{
		Name:     "horizontal_resolution",
		Units:    "km",
		LongName: "Horizontal resolution of model",
	},
	{
		Name:         "sfc_pressure",
		Units:        "Pa",
		LongName:     "Surface pressure",
		StandardName: "surface_air_pressure",
		Dims:         []string{"time"},
	},
	{
		Name:     "sfc_pressure_amsl",
		Units:    "Pa",
		LongName: "Surface pressure at mean sea level",
		Dims:     []string{"time"},
	},
	{
		Name:     "sfc_temp_2m",
		Units:    "K",
		LongName: "Temperature at 2m",
		Dims:     []string{"time"},
	},
	{
		Name:     "sfc_dewpoint_temp_2m",
		Units:    "K",
		LongName: "Dew point temperature at 2m",
		Dims:     []string{"time"},
	},
	{
		Name:     "sfc_wind_u_10m",
		Units:    "m s-1",
		LongName: "Zonal wind at 10 m",
		Dims:     []string{"time"},
	},
	{
		Name:     "sfc_wind_v_10m",
		Units:    "m s-1",
		LongName: "Meridional wind at 10 m",
		Dims:     []string{"time"},
	},
	{
		Name:     "soil_temperature",
		Units:    "K",
		LongName: "Soil temperature",
		Dims:     []string{"time"},
	},
	{
		Name:         "pressure",
		Units:        "Pa",
		LongName:     "Pressure",
		StandardName: "air_pressure",
		Dims:         []string{"time", "level"},
	},
	{
		Name:         "temperature",
		Units:        "K",
		LongName:     "Temperature",
		StandardName: "air_temperature",
		Dims:         []string{"time", "level"},
	},
	{
		Name:         "uwind",
		Units:        "m s-1",
		LongName:     "Zonal wind",
		StandardName: "eastward_wind",
		Dims:         []string{"time", "level"},
	},
	{
		Name:         "vwind",
		Units:        "m s-1",
		LongName:     "Meridional wind",
		StandardName: "northward_wind",
		Dims:         []string{"time", "level"},
	},
	{
		Name:         "wwind",
		Units:        "m s-1",
		LongName:     "Vertical wind",
		StandardName: "upward_air_velocity",
		Comment:      "The vertical wind has been calculated from omega (Pa s-1), height and pressure using: w=omega*dz/dp",
		Dims:         []string{"time", "level"},
	},
	{
		Name:         "omega",
		Units:        "Pa s-1",
		LongName:     "Vertical wind in pressure coordinates",
		StandardName: "omega",
		Dims:         []string{"time", "level"},
	},
	{
		Name:         "rh",
		Units:        "1",
		LongName:     "Relative humidity",
		StandardName: "relative_humidity",
		Comment:      "With respect to liquid above 0 degrees C and with respect to ice below 0 degrees C. Calculated using Goff-Gratch formula.",
		Dims:         []string{"time", "level"},
	},
	{
		Name:         "q",
		Units:        "1",
		LongName:     "Specific humidity",
		StandardName: "specific_humidity",
		Dims:         []string{"time", "level"},
	},
	{
		Name:     "height",
		Units:    "m",
		LongName: "Height above ground",
		Comment:  "Calculated from geopotential height",
		Dims:     []string{"time", "level"},
	},
}
