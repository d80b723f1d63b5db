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

package ecmwf

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

var testRun = Run{Date: time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), Hour: 0}

func TestRun(t *testing.T) {
	tests := []struct {
		hour   int
		valid  bool
		stream string
		steps  []int
	}{
		{0, true, "oper", []int{0, 3, 6, 9, 12, 15, 18, 21, 24}},
		{6, true, "scda", []int{6, 9, 12, 15, 18, 21, 24}},
		{12, true, "oper", []int{12, 15, 18, 21, 24}},
		{18, true, "scda", []int{18, 21, 24}},
		{3, false, "", nil},
	}
	for _, test := range tests {
		r := Run{Date: testRun.Date, Hour: test.hour}
		if r.Valid() != test.valid {
			t.Errorf("run %d: have valid=%v, want %v", test.hour, r.Valid(), test.valid)
		}
		if !test.valid {
			continue
		}
		if r.Stream() != test.stream {
			t.Errorf("run %d: have stream %s, want %s", test.hour, r.Stream(), test.stream)
		}
		if !reflect.DeepEqual(r.Steps(), test.steps) {
			t.Errorf("run %d: have steps %v, want %v", test.hour, r.Steps(), test.steps)
		}
	}
}

func TestRunFileName(t *testing.T) {
	if have, want := testRun.FileName(3), "20240505000000-3h-oper-fc.grib2"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}
	if have, want := testRun.IndexName(3), "20240505000000-3h-oper-fc.index"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}
	r := Run{Date: testRun.Date, Hour: 6}
	if have, want := r.FileName(12), "20240505060000-12h-scda-fc.grib2"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}
}

func TestParseIndex(t *testing.T) {
	const index = `{"domain": "g", "param": "t", "levtype": "pl", "levelist": "500", "step": "3", "_offset": 0, "_length": 100}
{"domain": "g", "param": "sp", "levtype": "sfc", "step": "3", "_offset": 100, "_length": 50}

`
	entries, err := ParseIndex(strings.NewReader(index))
	if err != nil {
		t.Fatal(err)
	}
	want := []IndexEntry{
		{Param: "t", Levtype: "pl", Levelist: "500", Step: "3", Offset: 0, Length: 100},
		{Param: "sp", Levtype: "sfc", Step: "3", Offset: 100, Length: 50},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("have %+v, want %+v", entries, want)
	}

	if _, err := ParseIndex(strings.NewReader("not json")); err == nil {
		t.Error("expected an error for invalid index data")
	}
}

// testServer serves fake forecast files and their index sidecars for
// the 00 UTC run of the test date.
func testServer(t *testing.T, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/20240505/00z/ifs/0p25/oper/") {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, ".index") {
			fmt.Fprintf(w, `{"param": "t", "levtype": "pl", "levelist": "500", "_offset": 2, "_length": 3}`+"\n")
			return
		}
		if rng := r.Header.Get("Range"); rng != "" {
			if rng != "bytes=2-4" {
				t.Errorf("unexpected range %s", rng)
			}
			w.WriteHeader(http.StatusPartialContent)
			w.Write([]byte(body[2:5]))
			return
		}
		w.Write([]byte(body))
	}))
}

func TestDownload(t *testing.T) {
	server := testServer(t, "0123456789")
	defer server.Close()

	c := NewClient()
	c.Root = server.URL
	dir := t.TempDir()

	paths, err := c.Download(context.Background(), testRun, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != len(testRun.Steps()) {
		t.Fatalf("have %d paths, want %d", len(paths), len(testRun.Steps()))
	}
	if want := filepath.Join(dir, "20240505000000-0h-oper-fc.grib2"); paths[0] != want {
		t.Errorf("have %s, want %s", paths[0], want)
	}
	for _, path := range paths {
		b, err := ioutil.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "0123456789" {
			t.Errorf("%s: have %q", path, b)
		}
	}

	// A second download should not fetch anything.
	server.Close()
	if _, err := c.Download(context.Background(), testRun, dir); err != nil {
		t.Errorf("redownload with existing files: %v", err)
	}
}

func TestDownloadSubset(t *testing.T) {
	server := testServer(t, "0123456789")
	defer server.Close()

	c := NewClient()
	c.Root = server.URL
	dir := t.TempDir()

	paths, err := c.DownloadSubset(context.Background(), testRun, []string{"t"}, dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range paths {
		b, err := ioutil.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "234" {
			t.Errorf("%s: have %q, want %q", path, b, "234")
		}
	}

	// No matching parameters is an error.
	if _, err := c.DownloadSubset(context.Background(), testRun, []string{"xyzzy"}, t.TempDir()); err == nil {
		t.Error("expected an error for parameters missing from the index")
	}
}

func TestDownloadSubsetMissingIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".index") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	c := NewClient()
	c.Root = server.URL
	dir := t.TempDir()

	// Without index sidecars the whole files should be fetched.
	paths, err := c.DownloadSubset(context.Background(), testRun, []string{"t"}, dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range paths {
		b, err := ioutil.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "0123456789" {
			t.Errorf("%s: have %q, want the whole file", path, b)
		}
	}
}

func TestDownloadNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := NewClient()
	c.Root = server.URL
	dir := t.TempDir()
	if _, err := c.Download(context.Background(), testRun, dir); err == nil {
		t.Fatal("expected an error for a missing forecast")
	}
	// The partial download should have been cleaned up.
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("have %d leftover files, want 0", len(files))
	}
}

func TestDownloadInvalidRun(t *testing.T) {
	c := NewClient()
	r := Run{Date: testRun.Date, Hour: 5}
	if _, err := c.Download(context.Background(), r, t.TempDir()); err == nil {
		t.Error("expected an error for an invalid run hour")
	}
	if _, err := c.DownloadSubset(context.Background(), r, []string{"t"}, os.TempDir()); err == nil {
		t.Error("expected an error for an invalid run hour")
	}
}
