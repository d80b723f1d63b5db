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

package hash

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
)

func TestMD5(t *testing.T) {
	sum, err := MD5(strings.NewReader("The quick brown fox jumps over the lazy dog"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "9e107d9d372bb6826bd81d3542a419d6"; sum != want {
		t.Errorf("have %s, want %s", sum, want)
	}
}

func TestMD5File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if err := ioutil.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	sum, err := MD5File(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "d41d8cd98f00b204e9800998ecf8427e"; sum != want {
		t.Errorf("have %s, want %s", sum, want)
	}
	if _, err := MD5File(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
