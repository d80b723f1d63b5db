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

// Package mungeutil holds the command-line interface of model-munger.
package mungeutil

import (
	"context"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	munger "github.com/actris-cloudnet/model-munger"
	"github.com/actris-cloudnet/model-munger/cloudnet"
	"github.com/actris-cloudnet/model-munger/ecmwf"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to model-munger.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "date",
			usage: `
              date specifies the forecast date to process in YYYY-MM-DD
              format. The default is today (UTC).`,
			shorthand:  "d",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "run",
			usage: `
              run specifies the forecast run hour: 0, 6, 12 or 18 UTC.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "sites",
			usage: `
              sites specifies the site identifiers to extract profiles
              for. The default is all sites with coordinates.`,
			shorthand:  "s",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "submit",
			usage: `
              submit specifies whether to submit the written files to the
              Cloudnet data portal.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "range-requests",
			usage: `
              range-requests specifies whether to download only the needed
              GRIB2 messages using the index sidecar files and HTTP range
              requests instead of whole forecast files.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Model",
			usage: `
              Model is the model identifier used in output file names
              and data portal submissions.`,
			defaultVal: "ecmwf-open",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "DownloadDir",
			usage: `
              DownloadDir is the directory the forecast files are
              downloaded into.`,
			defaultVal: "data",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory the netCDF output files are
              written into.`,
			defaultVal: "output",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SitesFile",
			usage: `
              SitesFile is the path to a TOML file listing the sites to
              extract profiles for. If empty, the site list is fetched
              from the Cloudnet data portal.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sitesCmd.Flags()},
		},
		{
			name: "Ecmwf.Root",
			usage: `
              Ecmwf.Root is the root URL of the ECMWF open-data
              dissemination server.`,
			defaultVal: ecmwf.DefaultRoot,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Cloudnet.URL",
			usage: `
              Cloudnet.URL is the base address of the Cloudnet data portal.`,
			defaultVal: cloudnet.DefaultURL,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sitesCmd.Flags()},
		},
		{
			name: "Cloudnet.Username",
			usage: `
              Cloudnet.Username is the basic auth username for the data
              portal model-upload endpoints.`,
			defaultVal: "admin",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Cloudnet.Password",
			usage: `
              Cloudnet.Password is the basic auth password for the data
              portal model-upload endpoints.`,
			defaultVal: "admin",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("MUNGER")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(sitesCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("model-munger: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "model-munger",
	Short: "Extract vertical profiles from NWP model output.",
	Long: `model-munger downloads ECMWF open-data forecast files, extracts
vertical profiles of the model variables at the Cloudnet measurement
sites and writes one netCDF file per site, optionally submitting the
files to the Cloudnet data portal.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'MUNGER_var' where 'var' is
the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of model-munger.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("model-munger v%s\n", munger.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download a forecast and extract profiles.",
	Long: `run downloads the GRIB2 files of one forecast run, extracts the
vertical profiles at the requested sites and writes one netCDF file
per site.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Munge(context.Background(), Cfg)
	},
	DisableAutoGenTag: true,
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the available sites.",
	Long: `sites prints the identifiers, names and coordinates of the sites
profiles can be extracted for.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sites, err := getSites(context.Background(), Cfg)
		if err != nil {
			return err
		}
		for _, s := range sites {
			cmd.Printf("%-20s %8.3f %8.3f  %s\n", s.ID, s.Location.Y, s.Location.X, s.Name)
		}
		return nil
	},
	DisableAutoGenTag: true,
}
