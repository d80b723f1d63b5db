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
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	munger "github.com/actris-cloudnet/model-munger"
	"github.com/actris-cloudnet/model-munger/cloudnet"
	"github.com/actris-cloudnet/model-munger/ecmwf"
	"github.com/actris-cloudnet/model-munger/grib"
)

// Munge downloads one forecast run, extracts the vertical profiles at
// the configured sites, writes one netCDF file per site and optionally
// submits the files to the Cloudnet data portal.
func Munge(ctx context.Context, cfg *viper.Viper) error {
	log := logrus.StandardLogger()

	date, err := getDate(cfg)
	if err != nil {
		return err
	}
	run := cfg.GetInt("run")
	ecmwfRun := ecmwf.Run{Date: date, Hour: run}
	if !ecmwfRun.Valid() {
		return fmt.Errorf("model-munger: invalid run hour %d; must be 0, 6, 12 or 18", run)
	}

	sites, err := getSites(ctx, cfg)
	if err != nil {
		return err
	}
	sites, err = selectSites(sites, cfg)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"date":  date.Format("2006-01-02"),
		"run":   run,
		"sites": len(sites),
	}).Info("Munging")

	downloadDir := os.ExpandEnv(cfg.GetString("DownloadDir"))
	outputDir := os.ExpandEnv(cfg.GetString("OutputDir"))
	for _, dir := range []string{downloadDir, outputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("model-munger: creating directory: %v", err)
		}
	}

	client := ecmwf.NewClient()
	client.Root = cfg.GetString("Ecmwf.Root")
	var paths []string
	if cfg.GetBool("range-requests") {
		paths, err = client.DownloadSubset(ctx, ecmwfRun, grib.ShortNames(), downloadDir)
	} else {
		paths, err = client.Download(ctx, ecmwfRun, downloadDir)
	}
	if err != nil {
		return err
	}

	ex := munger.NewExtractor(date, run, sites)
	for i, step := range ecmwfRun.Steps() {
		fields, err := grib.ReadFile(paths[i])
		if err != nil {
			return err
		}
		if err := ex.AddStep(step, fields); err != nil {
			return err
		}
	}

	model := cfg.GetString("Model")
	var portal *cloudnet.Client
	if cfg.GetBool("submit") {
		portal = cloudnet.NewClient()
		portal.URL = cfg.GetString("Cloudnet.URL")
		portal.Username = cfg.GetString("Cloudnet.Username")
		portal.Password = cfg.GetString("Cloudnet.Password")
		portal.Model = model
	}
	for _, p := range ex.Profiles() {
		path, err := munger.Save(p, date, model, outputDir)
		if err != nil {
			return err
		}
		log.WithField("file", path).Info("Wrote profile")
		if portal != nil {
			if err := portal.Submit(ctx, path, p.Site, date); err != nil {
				return err
			}
		}
	}
	return nil
}

// getDate parses the configured forecast date, defaulting to today
// (UTC).
func getDate(cfg *viper.Viper) (time.Time, error) {
	s := cfg.GetString("date")
	if s == "" {
		y, m, d := time.Now().UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("model-munger: parsing date: %v", err)
	}
	return date, nil
}

// getSites returns the sites profiles can be extracted for, either from
// the configured TOML file or from the Cloudnet data portal.
func getSites(ctx context.Context, cfg *viper.Viper) ([]munger.Site, error) {
	if f := os.ExpandEnv(cfg.GetString("SitesFile")); f != "" {
		return ReadSitesFile(f)
	}
	portal := cloudnet.NewClient()
	portal.URL = cfg.GetString("Cloudnet.URL")
	return portal.Sites(ctx)
}

// selectSites filters sites down to the configured site identifiers.
// An unknown identifier is an error.
func selectSites(sites []munger.Site, cfg *viper.Viper) ([]munger.Site, error) {
	wanted, err := cast.ToStringSliceE(cfg.Get("sites"))
	if err != nil {
		return nil, fmt.Errorf("model-munger: parsing sites: %v", err)
	}
	if len(wanted) == 0 {
		return sites, nil
	}
	byID := make(map[string]munger.Site)
	for _, s := range sites {
		byID[s.ID] = s
	}
	var o []munger.Site
	var invalid []string
	for _, id := range wanted {
		if s, ok := byID[id]; ok {
			o = append(o, s)
		} else {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("model-munger: invalid sites: %s", strings.Join(invalid, ", "))
	}
	return o, nil
}
