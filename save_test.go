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
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ctessum/cdf"
)

func TestSave(t *testing.T) {
	ex := NewExtractor(testDate, 0, testSites())
	for _, step := range []int{0, 3} {
		if err := ex.AddStep(step, testFields(step)); err != nil {
			t.Fatal(err)
		}
	}
	p := ex.Profiles()[0]

	dir := t.TempDir()
	path, err := Save(p, testDate, "ecmwf-open", dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "20240505_hyytiala_ecmwf-open.nc"); path != want {
		t.Errorf("have path %s, want %s", path, want)
	}

	ff, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		t.Fatal(err)
	}

	if v := f.Header.GetAttribute("", "title"); v != "Model data from Hyytiälä" {
		t.Errorf("have title %q", v)
	}
	if v := f.Header.GetAttribute("", "year"); v != "2024" {
		t.Errorf("have year %q", v)
	}
	if v := f.Header.GetAttribute("", "month"); v != "05" {
		t.Errorf("have month %q", v)
	}
	if v := f.Header.GetAttribute("", "day"); v != "05" {
		t.Errorf("have day %q", v)
	}
	if v := f.Header.GetAttribute("", "model_munger_version"); v != Version {
		t.Errorf("have version %q, want %q", v, Version)
	}

	if dims := f.Header.Lengths("temperature"); !reflect.DeepEqual(dims, []int{2, 2}) {
		t.Errorf("have temperature lengths %v, want [2 2]", dims)
	}
	if dims := f.Header.Dimensions("temperature"); !reflect.DeepEqual(dims, []string{"time", "level"}) {
		t.Errorf("have temperature dimensions %v, want [time level]", dims)
	}
	if v := f.Header.GetAttribute("time", "units"); v != "hours since 2024-05-05 00:00:00 +00:00" {
		t.Errorf("have time units %q", v)
	}
	if v := f.Header.GetAttribute("temperature", "units"); v != "K" {
		t.Errorf("have temperature units %q", v)
	}

	read := func(v string, n int) []float32 {
		buf := make([]float32, n)
		nn, err := f.Reader(v, nil, nil).Read(buf)
		// Reading a whole fixed-size variable ends with io.EOF.
		if err != nil && !(err == io.EOF && nn == n) {
			t.Fatalf("reading %s: %v", v, err)
		}
		return buf
	}
	if v := read("time", 2); !reflect.DeepEqual(v, []float32{0, 3}) {
		t.Errorf("have time %v, want [0 3]", v)
	}
	if v := read("pressure", 4); !reflect.DeepEqual(v, []float32{100000, 50000, 100000, 50000}) {
		t.Errorf("have pressure %v", v)
	}
	if v := read("temperature", 4); !reflect.DeepEqual(v, []float32{280, 250, 280, 250}) {
		t.Errorf("have temperature %v", v)
	}
	if v := read("latitude", 1); !reflect.DeepEqual(v, []float32{62}) {
		t.Errorf("have latitude %v, want [62]", v)
	}
	if v := read("sfc_pressure", 2); !reflect.DeepEqual(v, []float32{101300, 101300}) {
		t.Errorf("have surface pressure %v", v)
	}
}
