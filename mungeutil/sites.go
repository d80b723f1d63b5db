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

package mungeutil

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/geom"

	munger "github.com/actris-cloudnet/model-munger"
)

// sitesFile is the TOML schema of a sites file:
//
//	[[site]]
//	id = "hyytiala"
//	name = "Hyytiälä"
//	latitude = 61.844
//	longitude = 24.287
type sitesFile struct {
	Site []struct {
		ID        string  `toml:"id"`
		Name      string  `toml:"name"`
		Latitude  float64 `toml:"latitude"`
		Longitude float64 `toml:"longitude"`
	} `toml:"site"`
}

// ReadSitesFile reads a list of sites from a TOML file.
func ReadSitesFile(path string) ([]munger.Site, error) {
	var f sitesFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("model-munger: reading sites file %s: %v", path, err)
	}
	if len(f.Site) == 0 {
		return nil, fmt.Errorf("model-munger: sites file %s contains no sites", path)
	}
	var o []munger.Site
	for _, s := range f.Site {
		if s.ID == "" {
			return nil, fmt.Errorf("model-munger: sites file %s contains a site without an id", path)
		}
		o = append(o, munger.Site{
			ID:       s.ID,
			Name:     s.Name,
			Location: geom.Point{X: s.Longitude, Y: s.Latitude},
		})
	}
	return o, nil
}
