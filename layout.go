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
	"math"

	"github.com/ctessum/sparse"
)

// GridLayout identifies the axis order of one flat gridded record.
// The upstream matrix files store records with latitude varying
// fastest; the archive stores them with longitude varying fastest.
type GridLayout int

const (
	// LatMajor is the archive order: index = ilat*NLon + ilon.
	LatMajor GridLayout = iota
	// LonMajor is the upstream matrix order: index = ilon*NLat + ilat.
	LonMajor
)

func (l GridLayout) String() string {
	switch l {
	case LatMajor:
		return "latitude-major"
	case LonMajor:
		return "longitude-major"
	}
	return "unknown layout"
}

// index returns the position of cell (ilat, ilon) within a flat
// record stored in layout l.
func (l GridLayout) index(g Geometry, ilat, ilon int) int {
	switch l {
	case LatMajor:
		return ilat*g.NLon + ilon
	case LonMajor:
		return ilon*g.NLat + ilat
	}
	panic("waternc: unknown grid layout")
}

// storeRecord copies one flat gridded record into time step iyear of
// data, converting from layout l to the archive's latitude-major
// order and scaling each value by scale.
func storeRecord(data *sparse.DenseArray, iyear int, rec []float64, l GridLayout, scale float64) {
	g := Geometry{NLat: data.Shape[1], NLon: data.Shape[2]}
	for ilat := 0; ilat < g.NLat; ilat++ {
		for ilon := 0; ilon < g.NLon; ilon++ {
			data.Set(rec[l.index(g, ilat, ilon)]*scale, iyear, ilat, ilon)
		}
	}
}

// NaNGrid returns a grid with every cell of every time step set to
// NaN, the archive representation of a quantity the scenario has no
// data for.
func NaNGrid(g Geometry) *sparse.DenseArray {
	data := sparse.ZerosDense(g.NYear, g.NLat, g.NLon)
	nan := math.NaN()
	for i := range data.Elements {
		data.Elements[i] = nan
	}
	return data
}
