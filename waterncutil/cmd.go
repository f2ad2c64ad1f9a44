/*
Copyright © 2019 the waternc authors.
This file is part of waternc.

waternc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

waternc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with waternc.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package waterncutil wires the waternc converter into a command-line
// interface.
package waterncutil

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/waternc"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to waternc.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "output",
			usage: `
              output overrides the archive path given in the recipe.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "format",
			usage: `
              format selects the recipe encoding. 'tokens' is the
              whitespace-separated stream emitted by the GCAM driver,
              'toml' is the TOML form, and 'auto' chooses by file
              extension.`,
			defaultVal: "auto",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "quiet",
			usage: `
              quiet suppresses per-file progress logging.`,
			shorthand:  "q",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("WATERNC")

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
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(convertCmd)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "waternc",
	Short: "Convert GCAM water matrices to a NetCDF archive.",
	Long: `waternc converts the flat matrix files written by the GCAM water
downscaling pipeline into a single self-describing NetCDF archive.
Use the convert subcommand with a recipe file describing one model
scenario.

Configuration can be changed with command-line arguments or by setting
environment variables in the format 'WATERNC_var' where 'var' is the
name of the variable to be set.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of waternc.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("waternc v%s\n", waternc.Version)
	},
	DisableAutoGenTag: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert [recipe]",
	Short: "Run the conversion described by a recipe.",
	Long: `convert reads the recipe, reads every input matrix it names, and
writes the output archive. Passing '-' as the recipe path reads the
token-stream form from standard input. A recipe path token equal to
'no-data' marks a gridded quantity as intentionally absent; its
archive variable is filled with NaN.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Convert(Cfg, args[0])
	},
	DisableAutoGenTag: true,
}

// Convert runs the conversion described by the recipe at path
// using the options in cfg.
func Convert(cfg *viper.Viper, path string) error {
	if cast.ToBool(cfg.Get("quiet")) {
		logrus.SetLevel(logrus.WarnLevel)
	}
	c, err := readRecipe(path, cast.ToString(cfg.Get("format")))
	if err != nil {
		return err
	}
	if out := cast.ToString(cfg.Get("output")); out != "" {
		c.OutFile = out
	}
	conv := waternc.NewConverter(c)
	d, err := conv.Run()
	if err != nil {
		return err
	}
	conv.Log.WithFields(logrus.Fields{"file": c.OutFile}).Info("writing archive")
	return d.WriteFile(c.OutFile)
}

// readRecipe reads the recipe at path in the given format ("tokens",
// "toml", or "auto" to choose by extension). The path '-' reads the
// token form from standard input.
func readRecipe(path, format string) (*waternc.Config, error) {
	if path == "-" {
		return waternc.ReadConfig(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &waternc.ConfigError{Field: "recipe", Err: err}
	}
	defer f.Close()
	if format == "auto" {
		if strings.HasSuffix(path, ".toml") {
			format = "toml"
		} else {
			format = "tokens"
		}
	}
	switch format {
	case "toml":
		return waternc.ReadConfigTOML(f)
	case "tokens":
		return waternc.ReadConfig(f)
	}
	return nil, &waternc.ConfigError{
		Field: "format",
		Err:   fmt.Errorf("unknown recipe format %q", format),
	}
}

// ExitStatus maps an error chain to the process exit status. Success
// is 0; each error kind has a distinct status so that the calling
// pipeline can tell what went wrong. Errors that match no kind come
// from the command-line layer and are treated as usage errors.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var (
		cfgErr   *waternc.ConfigError
		openErr  *waternc.OpenError
		truncErr *waternc.TruncationError
		fieldErr *waternc.FieldError
		archErr  *waternc.ArchiveError
	)
	switch {
	case errors.As(err, &cfgErr):
		return 3
	case errors.As(err, &openErr):
		return 4
	case errors.As(err, &truncErr):
		return 5
	case errors.As(err, &fieldErr):
		return 6
	case errors.As(err, &archErr):
		return 7
	}
	return 2
}
