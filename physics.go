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

import "math"

// physical constants
const (
	// EarthRadius is the radius of the Earth [m] as assumed in the
	// ECMWF IFS.
	EarthRadius = 6_371_229.

	// mwRatio is the ratio of the molecular weight of water vapor
	// to dry air.
	mwRatio = 0.62198

	// triplePoint is the triple point of water [K].
	triplePoint = 273.16

	hPaToPa = 100.
)

// GeometricHeight converts geopotential height [m] to geometric
// height [m].
//
// Reference: ECMWF (2023). ERA5: compute pressure and geopotential on
// model levels, geopotential height and geometric height.
// https://confluence.ecmwf.int/x/JJh0CQ
func GeometricHeight(geopotentialHeight []float64) []float64 {
	o := make([]float64, len(geopotentialHeight))
	for i, h := range geopotentialHeight {
		o[i] = EarthRadius * h / (EarthRadius - h)
	}
	return o
}

// VerticalWind converts vertical wind from pressure coordinates
// (omega [Pa s-1]) to cartesian coordinates [m s-1] using
// w = omega * dz/dp. height is height above ground [m], pressure is
// the level pressure [Pa] and sfcPressure is the surface pressure [Pa].
func VerticalWind(height, pressure []float64, sfcPressure float64, omega []float64) []float64 {
	o := make([]float64, len(omega))
	for i := range omega {
		var dz, dp float64
		if i == 0 {
			dz = height[0]
			dp = pressure[0] - sfcPressure
		} else {
			dz = height[i] - height[i-1]
			dp = pressure[i] - pressure[i-1]
		}
		o[i] = omega[i] * dz / dp
	}
	return o
}

// SaturationVaporPressure calculates the saturation vapor pressure [Pa]
// at temperature t [K] over liquid above freezing and over ice below
// freezing using the Goff-Gratch formulae.
//
// Reference: Vömel, H. (2016). Saturation vapor pressure formulations.
// http://cires1.colorado.edu/~voemel/vp.html
func SaturationVaporPressure(t float64) float64 {
	ratio := triplePoint / t
	invRatio := t / triplePoint
	if t < triplePoint {
		return hPaToPa * math.Pow(10,
			-9.09718*(ratio-1)-
				3.56654*math.Log10(ratio)+
				0.876793*(1-invRatio)+
				math.Log10(6.1071))
	}
	return hPaToPa * math.Pow(10,
		10.79574*(1-ratio)-
			5.02800*math.Log10(invRatio)+
			1.50475e-4*(1-math.Pow(10, -8.2969*(invRatio-1)))+
			0.42873e-3*(math.Pow(10, 4.76955*(1-ratio))-1)+
			0.78614)
}

// VaporPressure calculates the partial pressure of water vapor [Pa]
// from the air pressure p [Pa] and specific humidity q [kg kg-1].
//
// Reference: Cai, J. (2019). Humidity Measures.
// https://cran.r-project.org/web/packages/humidity/vignettes/humidity-measures.html
func VaporPressure(p, q float64) float64 {
	return q * p / (mwRatio + (1-mwRatio)*q)
}

// RelativeHumidity calculates relative humidity [1] with respect to
// liquid above freezing and with respect to ice below freezing.
func RelativeHumidity(pressure, temperature, q []float64) []float64 {
	o := make([]float64, len(pressure))
	for i := range pressure {
		o[i] = VaporPressure(pressure[i], q[i]) / SaturationVaporPressure(temperature[i])
	}
	return o
}
