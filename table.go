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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
)

// ReadTable reads a packed binary basin or region table: one leading
// block of nrow float32 values to discard (an extra unused year),
// then nyear×nrow values copied verbatim. The upstream producer
// wrote an nrow×(nyear+1) matrix in column-major order; that storage
// order and the transpose we want cancel out, so the values are
// already in [time][row] order on disk. This cancellation must be
// reproduced exactly, not re-derived.
func ReadTable(r io.Reader, nyear, nrow int) (*sparse.DenseArray, error) {
	skip := make([]float32, nrow)
	if err := binary.Read(r, binary.LittleEndian, skip); err != nil {
		return nil, &TruncationError{What: "leading table block", Err: err}
	}
	vals := make([]float32, nyear*nrow)
	if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
		return nil, &TruncationError{
			What: fmt.Sprintf("%d×%d table", nyear, nrow),
			Err:  err,
		}
	}
	data := sparse.ZerosDense(nyear, nrow)
	for i, v := range vals {
		data.Elements[i] = float64(v)
	}
	return data, nil
}

// ReadPopulation reads the comma-separated population text table:
// one line per region in region order, two leading identifier fields
// to discard, then one field per archive year, rounded half away
// from zero to thousands of persons. Trailing fields beyond the
// archive years are ignored. The on-disk rows are per region, so
// storing them fills the [time][region] table column by column.
func ReadPopulation(r io.Reader, g Geometry) (*sparse.DenseArrayInt, error) {
	data := sparse.ZerosDenseInt(g.NYear, g.NRgn)
	sc := bufio.NewScanner(r)
	for rgn := 0; rgn < g.NRgn; rgn++ {
		if !sc.Scan() {
			err := sc.Err()
			return nil, &TruncationError{
				What: fmt.Sprintf("population table after %d of %d rows", rgn, g.NRgn),
				Err:  err,
			}
		}
		fields := strings.Split(sc.Text(), ",")
		for iyear := 0; iyear < g.NYear; iyear++ {
			col := iyear + 2 // the first two fields identify the region
			if col >= len(fields) {
				return nil, &FieldError{Region: rgn, Year: iyear, Err: errMissingField}
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[col]), 64)
			if err != nil {
				return nil, &FieldError{Region: rgn, Year: iyear, Err: err}
			}
			data.Set(int(math.Round(v)), iyear, rgn)
		}
	}
	return data, nil
}

var errMissingField = errors.New("missing field")
