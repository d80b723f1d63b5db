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

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// levelShortNames are the GRIB short names that are stacked into
// vertical profiles. Geopotential height ("gh") is only used to derive
// the height and vertical wind variables.
var levelShortNames = []string{"t", "u", "v", "w", "q", "gh"}

// surfaceShortNames are the GRIB short names of single-level fields.
var surfaceShortNames = []string{"sp", "msl", "2t", "2d", "10u", "10v", "st"}

// A Profile holds the vertical profiles extracted for one site: one
// time record per forecast step, each record holding one value per
// pressure level for the profile variables and a single value for the
// surface variables.
type Profile struct {
	Site Site

	// Latitude and Longitude are the coordinates of the selected
	// model gridpoint [degrees].
	Latitude, Longitude float64

	// Resolution is the horizontal resolution of the model [km].
	Resolution float64

	// Times holds the time coordinate [hours UTC since midnight of
	// the forecast date].
	Times []float64

	// Pressures holds the level pressures [Pa] in decreasing order.
	Pressures []float64

	// Series holds the surface variables, one value per time record,
	// keyed by output variable name.
	Series map[string][]float64

	// Records holds the profile variables, one slice of
	// len(Pressures) values per time record, keyed by output
	// variable name.
	Records map[string][][]float64
}

// An Extractor accumulates vertical profiles for a set of sites from
// the fields of successive forecast steps.
type Extractor struct {
	// Date is the forecast date (UTC).
	Date time.Time

	// Run is the forecast run hour (0, 6, 12 or 18 UTC).
	Run int

	// Sites are the locations profiles are extracted for.
	Sites []Site

	Log logrus.FieldLogger

	profiles       []*Profile
	pressures      []float64
	latIdx, lonIdx []int
	located        bool
}

// NewExtractor creates an Extractor for the given forecast date and
// run hour and set of sites.
func NewExtractor(date time.Time, run int, sites []Site) *Extractor {
	ex := &Extractor{
		Date:  date,
		Run:   run,
		Sites: sites,
		Log:   logrus.StandardLogger(),
	}
	for _, s := range sites {
		ex.profiles = append(ex.profiles, &Profile{
			Site:    s,
			Series:  make(map[string][]float64),
			Records: make(map[string][][]float64),
		})
	}
	return ex
}

// Profiles returns the profiles accumulated so far, in the same order
// as the sites passed to NewExtractor.
func (ex *Extractor) Profiles() []*Profile { return ex.profiles }

// AddStep appends one time record to every site profile from the
// fields of the forecast step step. The set of pressure levels is
// fixed by the first step; later steps must use the same levels.
func (ex *Extractor) AddStep(step int, fields []*Field) error {
	if len(fields) == 0 {
		return fmt.Errorf("munger: no usable fields for forecast step %d", step)
	}
	if !ex.located {
		if err := ex.locate(fields[0]); err != nil {
			return err
		}
	}

	surface := make(map[string]*Field)
	var levels []*Field
	for _, f := range fields {
		if err := ex.check(f, step); err != nil {
			return err
		}
		if f.Level == LevelIsobaric {
			levels = append(levels, f)
		} else {
			surface[f.Name] = f
		}
	}

	if ex.pressures == nil {
		seen := make(map[float64]struct{})
		for _, f := range levels {
			if _, ok := seen[f.Pressure]; !ok {
				seen[f.Pressure] = struct{}{}
				ex.pressures = append(ex.pressures, f.Pressure)
			}
		}
		if len(ex.pressures) == 0 {
			return fmt.Errorf("munger: no isobaric fields for forecast step %d", step)
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(ex.pressures)))
	}
	pIdx := make(map[float64]int)
	for i, p := range ex.pressures {
		pIdx[p] = i
	}

	for i, p := range ex.profiles {
		li, lj := ex.latIdx[i], ex.lonIdx[i]

		column := make(map[string][]float64)
		for _, name := range levelShortNames {
			column[name] = nanSlice(len(ex.pressures))
		}
		for _, f := range levels {
			k, ok := pIdx[f.Pressure]
			if !ok {
				return fmt.Errorf("munger: unexpected pressure level %g Pa in forecast step %d", f.Pressure, step)
			}
			if c, ok := column[f.Name]; ok {
				c[k] = f.At(li, lj)
			}
		}

		sfc := func(name string) float64 {
			if f, ok := surface[name]; ok {
				return f.At(li, lj)
			}
			return math.NaN()
		}

		height := GeometricHeight(column["gh"])
		sfcPressure := sfc("sp")
		wwind := VerticalWind(height, ex.pressures, sfcPressure, column["w"])
		rh := RelativeHumidity(ex.pressures, column["t"], column["q"])

		p.Times = append(p.Times, float64(ex.Run+step))
		p.Pressures = ex.pressures

		for _, name := range levelShortNames {
			if name == "gh" {
				continue
			}
			p.Records[ncNames[name]] = append(p.Records[ncNames[name]], column[name])
		}
		p.Records["height"] = append(p.Records["height"], height)
		p.Records["wwind"] = append(p.Records["wwind"], wwind)
		p.Records["rh"] = append(p.Records["rh"], rh)

		for _, name := range surfaceShortNames {
			p.Series[ncNames[name]] = append(p.Series[ncNames[name]], sfc(name))
		}
	}
	return nil
}

// locate selects the model gridpoint nearest to each site, following
// the convention of finding the closest distinct latitude and
// longitude independently.
func (ex *Extractor) locate(f *Field) error {
	if len(f.Lats) == 0 || len(f.Lons) == 0 {
		return fmt.Errorf("munger: field %s has an empty grid", f.Name)
	}
	ex.latIdx = make([]int, len(ex.Sites))
	ex.lonIdx = make([]int, len(ex.Sites))
	for i, s := range ex.Sites {
		ex.latIdx[i] = nearest(f.Lats, s.Location.Y)
		ex.lonIdx[i] = nearest(f.Lons, s.Location.X)
		p := ex.profiles[i]
		p.Latitude = f.Lats[ex.latIdx[i]]
		p.Longitude = f.Lons[ex.lonIdx[i]]
		p.Resolution = math.Round(f.Resolution)
		ex.Log.WithFields(logrus.Fields{
			"site":      s.ID,
			"latitude":  p.Latitude,
			"longitude": p.Longitude,
		}).Info("Selected gridpoint")
	}
	ex.located = true
	return nil
}

// check verifies that a field belongs to the requested forecast.
func (ex *Extractor) check(f *Field, step int) error {
	y, m, d := f.Reference.Date()
	wy, wm, wd := ex.Date.Date()
	if y != wy || m != wm || d != wd || f.Reference.Hour() != ex.Run || f.Step != step {
		return fmt.Errorf("munger: field %s has reference time %v and step %d, want %04d-%02d-%02d %02d UTC and step %d",
			f.Name, f.Reference, f.Step, wy, wm, wd, ex.Run, step)
	}
	if want, ok := gribUnits[f.Name]; ok && f.Units != want {
		return fmt.Errorf("munger: expected %s to have units %s but received %s", f.Name, want, f.Units)
	}
	return nil
}

// nearest returns the index of the grid coordinate closest to x.
func nearest(grid []float64, x float64) int {
	d := make([]float64, len(grid))
	for i, g := range grid {
		d[i] = math.Abs(g - x)
	}
	return floats.MinIdx(d)
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
