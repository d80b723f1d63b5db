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
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ctessum/cdf"
)

// Save writes the profile to a netCDF (classic format) file in the
// given directory and returns the path of the written file. The file
// is named <yyyymmdd>_<site>_<model>.nc after the forecast date.
func Save(p *Profile, date time.Time, model, dir string) (string, error) {
	fname := filepath.Join(dir, fmt.Sprintf("%s_%s_%s.nc", date.Format("20060102"), p.Site.ID, model))

	h := cdf.NewHeader([]string{"time", "level"}, []int{len(p.Times), len(p.Pressures)})

	h.AddAttribute("", "Conventions", "CF-1.8")
	h.AddAttribute("", "title", fmt.Sprintf("Model data from %s", p.Site.Name))
	h.AddAttribute("", "location", p.Site.Name)
	h.AddAttribute("", "cloudnet_file_type", "model")
	h.AddAttribute("", "year", fmt.Sprintf("%04d", date.Year()))
	h.AddAttribute("", "month", fmt.Sprintf("%02d", int(date.Month())))
	h.AddAttribute("", "day", fmt.Sprintf("%02d", date.Day()))
	h.AddAttribute("", "source", "ECMWF open data")
	h.AddAttribute("", "model_munger_version", Version)

	h.AddVariable("time", []string{"time"}, []float32{0})
	h.AddAttribute("time", "long_name", "Hours UTC")
	h.AddAttribute("time", "units", fmt.Sprintf("hours since %s 00:00:00 +00:00", date.Format("2006-01-02")))
	h.AddAttribute("time", "standard_name", "time")
	h.AddAttribute("time", "axis", "T")
	h.AddAttribute("time", "calendar", "standard")

	for _, m := range Attributes {
		h.AddVariable(m.Name, m.Dims, []float32{0})
		h.AddAttribute(m.Name, "units", m.Units)
		h.AddAttribute(m.Name, "long_name", m.LongName)
		if m.StandardName != "" {
			h.AddAttribute(m.Name, "standard_name", m.StandardName)
		}
		if m.Comment != "" {
			h.AddAttribute(m.Name, "comment", m.Comment)
		}
	}

	h.Define()
	for _, err := range h.Check() {
		return "", fmt.Errorf("munger: defining netCDF header for %s: %v", fname, err)
	}

	ff, err := os.Create(fname)
	if err != nil {
		return "", fmt.Errorf("munger: creating output file: %v", err)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return "", fmt.Errorf("munger: creating netCDF file %s: %v", fname, err)
	}

	write := func(v string, data []float32) error {
		w := f.Writer(v, nil, nil)
		n, err := w.Write(data)
		// A writer without an explicit end reports io.EOF on exactly
		// filling a fixed-size variable.
		if err == io.EOF && n == len(data) {
			err = nil
		}
		if err != nil {
			return fmt.Errorf("munger: writing variable %s to %s: %v", v, fname, err)
		}
		return nil
	}

	if err := write("time", toFloat32(p.Times)); err != nil {
		ff.Close()
		return "", err
	}
	for _, m := range Attributes {
		if err := write(m.Name, p.values(m.Name)); err != nil {
			ff.Close()
			return "", err
		}
	}
	if err := ff.Close(); err != nil {
		return "", fmt.Errorf("munger: closing output file %s: %v", fname, err)
	}
	return fname, nil
}

// values returns the flattened data of the named output variable.
func (p *Profile) values(name string) []float32 {
	switch name {
	case "latitude":
		return []float32{float32(p.Latitude)}
	case "longitude":
		return []float32{float32(p.Longitude)}
	case "horizontal_resolution":
		return []float32{float32(p.Resolution)}
	case "pressure":
		o := make([]float32, 0, len(p.Times)*len(p.Pressures))
		for range p.Times {
			o = append(o, toFloat32(p.Pressures)...)
		}
		return o
	}
	if s, ok := p.Series[name]; ok {
		return toFloat32(s)
	}
	o := make([]float32, 0, len(p.Times)*len(p.Pressures))
	for _, r := range p.Records[name] {
		o = append(o, toFloat32(r)...)
	}
	return o
}

func toFloat32(s []float64) []float32 {
	o := make([]float32, len(s))
	for i, v := range s {
		o[i] = float32(v)
	}
	return o
}
