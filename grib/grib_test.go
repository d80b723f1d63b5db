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
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.grib2")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestReadGarbage(t *testing.T) {
	if _, err := Read(strings.NewReader("this is not a GRIB2 file")); err == nil {
		t.Error("expected an error for invalid data")
	}
}
