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

// Package grib decodes GRIB2 model output into fields for profile
// extraction. The actual GRIB decoding is done by
// github.com/nilsmagnus/grib; this package only maps the decoded
// messages to the parameters, levels and grids model-munger works
// with.
package grib

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/nilsmagnus/grib/griblib"

	munger "github.com/actris-cloudnet/model-munger"
)

// ReadFile decodes the fields model-munger uses from a GRIB2 file.
// Parameters and level types outside the parameter table are skipped.
func ReadFile(path string) ([]*munger.Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("grib: opening %s: %v", path, err)
	}
	defer f.Close()
	fields, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("grib: reading %s: %v", path, err)
	}
	return fields, nil
}

// Read decodes the fields model-munger uses from GRIB2 data.
func Read(r io.Reader) ([]*munger.Field, error) {
	messages, err := griblib.ReadMessages(r)
	if err != nil {
		return nil, fmt.Errorf("grib: decoding messages: %v", err)
	}
	var fields []*munger.Field
	for _, m := range messages {
		product := m.Section4.ProductDefinitionTemplate
		surface := product.FirstSurface
		p, ok := lookup(int(m.Section0.Discipline), int(product.ParameterCategory),
			int(product.ParameterNumber), int(surface.Type))
		if !ok {
			continue
		}

		var grid *griblib.Grid0
		switch g := m.Section3.Definition.(type) {
		case *griblib.Grid0:
			grid = g
		case griblib.Grid0:
			grid = &g
		default:
			return nil, fmt.Errorf("grib: unsupported grid definition template %d for parameter %s",
				m.Section3.TemplateNumber, p.name)
		}

		ref := m.Section1.ReferenceTime
		fld := &munger.Field{
			Name:  p.name,
			Units: p.units,
			Level: p.level,
			Reference: time.Date(int(ref.Year), time.Month(ref.Month), int(ref.Day),
				int(ref.Hour), int(ref.Minute), int(ref.Second), 0, time.UTC),
			Step:       int(product.ForecastTime),
			Lats:       coords(float64(grid.La1)*1e-6, float64(grid.La2)*1e-6, int(grid.Nj)),
			Lons:       normalizeLons(coords(float64(grid.Lo1)*1e-6, float64(grid.Lo2)*1e-6, int(grid.Ni))),
			Resolution: resolutionKM(float64(grid.Di)),
			Values:     m.Section7.Data,
		}
		if p.level == munger.LevelIsobaric {
			// Isobaric level values are encoded in Pa with a
			// decimal scale factor.
			fld.Pressure = float64(surface.Value) * math.Pow(10, -float64(surface.Scale))
		}
		if len(fld.Lats) == 0 || len(fld.Lons) == 0 {
			return nil, fmt.Errorf("grib: parameter %s has an empty %dx%d grid",
				p.name, len(fld.Lats), len(fld.Lons))
		}
		if len(fld.Values) != len(fld.Lats)*len(fld.Lons) {
			return nil, fmt.Errorf("grib: parameter %s has %d values for a %dx%d grid",
				p.name, len(fld.Values), len(fld.Lats), len(fld.Lons))
		}
		fields = append(fields, fld)
	}
	return fields, nil
}
