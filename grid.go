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
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// monthlyFlowFactor converts the mean of twelve monthly flow rates
// [m³/s] to an annual volume [km³]:
//	/ 12      (average of the monthly means)
//	* 3.156e7 (seconds in a year)
//	/ 1e9     (m³ to km³)
// Averaging the monthly means is not strictly correct because the
// months have different lengths, but the error is small enough for
// our purposes, and downstream consumers expect this exact
// convention.
const monthlyFlowFactor = 3.156e-2 / 12.0

// ReadMonthlyGrid reads a monthly-flow matrix stream. The stream
// holds twelve longitude-major float32 records for each calendar
// year from g.FirstYear through g.LastYear. Years that do not land on
// an archive time step are consumed and discarded; for each kept
// year the twelve records are averaged, converted from a flow rate to
// an annual volume, and stored latitude-major at the year's time
// step.
func ReadMonthlyGrid(r io.Reader, g Geometry) (*sparse.DenseArray, error) {
	data := sparse.ZerosDense(g.NYear, g.NLat, g.NLon)
	n := g.NLat * g.NLon
	rec32 := make([]float32, n)
	rec := make([]float64, n)
	sum := make([]float64, n)
	for year := g.FirstYear; year <= g.LastYear; year++ {
		keep := g.keepYear(year)
		if keep {
			for i := range sum {
				sum[i] = 0
			}
		}
		for month := 1; month <= 12; month++ {
			if err := binary.Read(r, binary.LittleEndian, rec32); err != nil {
				return nil, &TruncationError{
					What: fmt.Sprintf("month %d of monthly flow matrix", month),
					Year: year,
					Err:  err,
				}
			}
			if !keep {
				continue
			}
			for i, v := range rec32 {
				rec[i] = float64(v)
			}
			floats.Add(sum, rec)
		}
		if keep {
			storeRecord(data, g.timeIndex(year), sum, LonMajor, monthlyFlowFactor)
		}
	}
	return data, nil
}

// ReadFiveYearGrid reads a matrix stream that is already aggregated
// to five-year intervals: skipYears leading longitude-major float32
// records to consume and discard, then one record per archive time
// step, stored latitude-major with no numeric transform. The skip
// count is a property of the upstream producer, not of this reader.
func ReadFiveYearGrid(r io.Reader, g Geometry, skipYears int) (*sparse.DenseArray, error) {
	data := sparse.ZerosDense(g.NYear, g.NLat, g.NLon)
	n := g.NLat * g.NLon
	rec32 := make([]float32, n)
	rec := make([]float64, n)
	for i := 0; i < skipYears; i++ {
		if err := binary.Read(r, binary.LittleEndian, rec32); err != nil {
			return nil, &TruncationError{
				What: fmt.Sprintf("throwaway record %d of five-year matrix", i),
				Err:  err,
			}
		}
	}
	for iyear := 0; iyear < g.NYear; iyear++ {
		if err := binary.Read(r, binary.LittleEndian, rec32); err != nil {
			return nil, &TruncationError{
				What: "five-year matrix record",
				Year: g.StartYear + iyear*g.StepYear,
				Err:  err,
			}
		}
		for i, v := range rec32 {
			rec[i] = float64(v)
		}
		storeRecord(data, iyear, rec, LonMajor, 1)
	}
	return data, nil
}
