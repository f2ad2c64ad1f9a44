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

// Package waternc converts the flat matrix files produced by the GCAM
// water downscaling pipeline into a single self-describing NetCDF
// archive. Each input file has its own physical layout and unit
// convention; the readers in this package normalize all of them to a
// common [time][lat][lon] or [time][row] arrangement, and the archive
// writer emits the normalized arrays with named dimensions, units, and
// run-level metadata.
package waternc

import "github.com/ctessum/sparse"

// Version gives the version number of this version of waternc.
const Version = "1.0.0"

// Geometry describes the shape shared by all inputs and the output
// archive: a 0.5°×0.5° global grid, a set of five-year time steps, and
// the fixed region and basin counts. The fields are parameters rather
// than constants so that readers and the writer can be exercised on
// small synthetic shapes.
type Geometry struct {
	NLat int // latitude cells, southernmost first
	NLon int // longitude cells, westernmost first

	NYear     int // time steps in the archive
	StartYear int // first archive year
	StepYear  int // years between archive time steps

	// Calendar span of the monthly input files. Years outside
	// [StartYear, StartYear+(NYear-1)*StepYear] are read and discarded.
	FirstYear int
	LastYear  int

	NRgn   int // geopolitical regions
	NBasin int // water basins
}

// DefaultGeometry returns the geometry of the GCAM water outputs:
// 360×720 cells, 18 time steps covering 2010–2095, 63 regions, and
// 235 basins.
func DefaultGeometry() Geometry {
	return Geometry{
		NLat:      360,
		NLon:      720,
		NYear:     18,
		StartYear: 2010,
		StepYear:  5,
		FirstYear: 2001,
		LastYear:  2095,
		NRgn:      63,
		NBasin:    235,
	}
}

// keepYear reports whether calendar year y lands on an archive time
// step.
func (g Geometry) keepYear(y int) bool {
	return y >= g.StartYear && (y-g.StartYear)%g.StepYear == 0
}

// timeIndex returns the archive time step for calendar year y.
// y must satisfy keepYear.
func (g Geometry) timeIndex(y int) int { return (y - g.StartYear) / g.StepYear }

// LatCenters returns the cell-center latitudes, southernmost first.
func (g Geometry) LatCenters() []float32 {
	v := make([]float32, g.NLat)
	d := 180 / float64(g.NLat)
	for i := range v {
		v[i] = float32(-90 + (float64(i)+0.5)*d)
	}
	return v
}

// LonCenters returns the cell-center longitudes, westernmost first.
func (g Geometry) LonCenters() []float32 {
	v := make([]float32, g.NLon)
	d := 360 / float64(g.NLon)
	for i := range v {
		v[i] = float32(-180 + (float64(i)+0.5)*d)
	}
	return v
}

// TimeValues returns the calendar year of each archive time step.
func (g Geometry) TimeValues() []float32 {
	v := make([]float32, g.NYear)
	for i := range v {
		v[i] = float32(g.StartYear + i*g.StepYear)
	}
	return v
}

// Quantities lists the eight water quantities in their recipe order.
// The gridded inputs, the basin tables, and the region tables all
// follow this order.
var Quantities = []string{
	"supply",
	"irrigation",
	"livestock",
	"electricity",
	"manufacturing",
	"total",
	"domestic",
	"scarcity",
}

// GridVar, BasinVar, and RegionVar map a quantity to its archive
// variable name. The irregularities (mfg_demand for the gridded
// manufacturing demand, region_total with no _demand suffix, and
// *_water_scarcity for the table forms of the scarcity index) match
// the names downstream consumers already read; they are not typos.
var (
	GridVar = map[string]string{
		"supply":        "supply",
		"irrigation":    "irrigation_demand",
		"livestock":     "livestock_demand",
		"electricity":   "electricity_demand",
		"manufacturing": "mfg_demand",
		"total":         "total_demand",
		"domestic":      "domestic_demand",
		"scarcity":      "scarcity",
	}

	BasinVar = map[string]string{
		"supply":        "basin_supply",
		"irrigation":    "basin_irrigation_demand",
		"livestock":     "basin_livestock_demand",
		"electricity":   "basin_electricity_demand",
		"manufacturing": "basin_manufacturing_demand",
		"total":         "basin_total_demand",
		"domestic":      "basin_domestic_demand",
		"scarcity":      "basin_water_scarcity",
	}

	RegionVar = map[string]string{
		"supply":        "region_supply",
		"irrigation":    "region_irrigation_demand",
		"livestock":     "region_livestock_demand",
		"electricity":   "region_electricity_demand",
		"manufacturing": "region_manufacturing_demand",
		"total":         "region_total",
		"domestic":      "region_domestic_demand",
		"scarcity":      "region_water_scarcity",
	}
)

// unitOf returns the units attribute for quantity q. The water
// scarcity index is a ratio; everything else is an annual volume.
func unitOf(q string) string {
	if q == "scarcity" {
		return "(unitless)"
	}
	return "km^3"
}

// A Dataset holds every normalized array for one model scenario,
// ready to be written to an archive. The maps are keyed by the
// quantity names in Quantities.
type Dataset struct {
	Geometry Geometry

	// Global attributes for the run.
	Forcing    float64 // global radiative forcing
	Population float64 // global population

	Grids   map[string]*sparse.DenseArray // [NYear][NLat][NLon]
	Pop     *sparse.DenseArrayInt         // [NYear][NRgn], thousands of persons
	Basins  map[string]*sparse.DenseArray // [NYear][NBasin]
	Regions map[string]*sparse.DenseArray // [NYear][NRgn]
}
