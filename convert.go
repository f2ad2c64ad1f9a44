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

package waternc

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// A Converter runs the conversion described by one recipe: it reads
// every input matrix in the recipe's fixed order and assembles the
// normalized Dataset. Each reader call allocates its own buffers, so
// a Converter has no state beyond its configuration and may be run
// from any goroutine, though a single Run processes its inputs
// strictly sequentially.
type Converter struct {
	Config   *Config
	Geometry Geometry

	// Log receives per-file progress information.
	Log logrus.FieldLogger
}

// NewConverter returns a Converter for recipe c using the default
// geometry and the standard logger.
func NewConverter(c *Config) *Converter {
	return &Converter{
		Config:   c,
		Geometry: DefaultGeometry(),
		Log:      logrus.StandardLogger(),
	}
}

// skipYears returns the number of leading throwaway records in the
// five-year matrix for quantity q. The scarcity index files come from
// a different upstream producer with one fewer unused leading year;
// this is a fact about the input format, not a bug to normalize away.
func skipYears(q string) int {
	if q == "scarcity" {
		return 1
	}
	return 2
}

// Run reads every input named by the recipe and returns the
// normalized dataset, ready for (*Dataset).WriteFile. The first
// failure aborts the run; nothing read so far is retained.
func (c *Converter) Run() (*Dataset, error) {
	g := c.Geometry
	d := &Dataset{
		Geometry:   g,
		Forcing:    c.Config.Forcing,
		Population: c.Config.Population,
		Grids:      make(map[string]*sparse.DenseArray, len(Quantities)),
		Basins:     make(map[string]*sparse.DenseArray, len(Quantities)),
		Regions:    make(map[string]*sparse.DenseArray, len(Quantities)),
	}

	for _, q := range Quantities {
		in := c.Config.Grid[q]
		if in.Missing() {
			c.Log.WithFields(logrus.Fields{"variable": GridVar[q]}).
				Info("no data for gridded quantity; filling with NaN")
			d.Grids[q] = NaNGrid(g)
			continue
		}
		c.Log.WithFields(logrus.Fields{"file": in.Path(), "variable": GridVar[q]}).
			Info("reading gridded quantity")
		arr, err := c.readGrid(q, in.Path())
		if err != nil {
			return nil, err
		}
		d.Grids[q] = arr
	}

	c.Log.WithFields(logrus.Fields{"file": c.Config.PopFile, "variable": "population"}).
		Info("reading population table")
	f, err := os.Open(c.Config.PopFile)
	if err != nil {
		return nil, &OpenError{Path: c.Config.PopFile, Err: err}
	}
	d.Pop, err = ReadPopulation(bufio.NewReader(f), g)
	f.Close()
	if err != nil {
		return nil, wrapRead("population", c.Config.PopFile, err)
	}

	for _, q := range Quantities {
		path := c.Config.Basin[q]
		c.Log.WithFields(logrus.Fields{"file": path, "variable": BasinVar[q]}).
			Info("reading basin table")
		tbl, err := c.readTable(BasinVar[q], path, g.NBasin)
		if err != nil {
			return nil, err
		}
		d.Basins[q] = tbl
	}

	for _, q := range Quantities {
		path := c.Config.Region[q]
		c.Log.WithFields(logrus.Fields{"file": path, "variable": RegionVar[q]}).
			Info("reading region table")
		tbl, err := c.readTable(RegionVar[q], path, g.NRgn)
		if err != nil {
			return nil, err
		}
		d.Regions[q] = tbl
	}

	return d, nil
}

// readGrid reads one gridded quantity. The supply input holds monthly
// flow rates that need aggregating; the other quantities are already
// at five-year intervals.
func (c *Converter) readGrid(q, path string) (*sparse.DenseArray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	defer f.Close()
	var arr *sparse.DenseArray
	if q == "supply" {
		arr, err = ReadMonthlyGrid(bufio.NewReader(f), c.Geometry)
	} else {
		arr, err = ReadFiveYearGrid(bufio.NewReader(f), c.Geometry, skipYears(q))
	}
	if err != nil {
		return nil, wrapRead(GridVar[q], path, err)
	}
	return arr, nil
}

// readTable reads one packed binary basin or region table with nrow
// rows per time step.
func (c *Converter) readTable(name, path string, nrow int) (*sparse.DenseArray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	defer f.Close()
	tbl, err := ReadTable(bufio.NewReader(f), c.Geometry.NYear, nrow)
	if err != nil {
		return nil, wrapRead(name, path, err)
	}
	return tbl, nil
}

// wrapRead tags a reader error with the archive variable name and the
// file it came from, keeping the typed error in the chain.
func wrapRead(name, path string, err error) error {
	return fmt.Errorf("waternc: reading %s from %s: %w", name, path, err)
}
