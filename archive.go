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
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Write writes the archive to ff as a NetCDF classic file. The
// archive is write-once: the header is fully defined, then every
// coordinate and data variable is written exactly once. Any failure
// is fatal to the conversion and the caller should discard the
// output file.
func (d *Dataset) Write(ff *os.File) error {
	g := d.Geometry
	h := cdf.NewHeader(
		[]string{"lat", "lon", "time", "rgn", "basin"},
		[]int{g.NLat, g.NLon, g.NYear, g.NRgn, g.NBasin})

	h.AddVariable("lat", []string{"lat"}, []float32{0})
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddVariable("lon", []string{"lon"}, []float32{0})
	h.AddAttribute("lon", "units", "degrees_east")
	h.AddVariable("time", []string{"time"}, []float32{0})
	h.AddAttribute("time", "units", "year")
	h.AddVariable("rgn", []string{"rgn"}, []int32{0})
	h.AddVariable("basin", []string{"basin"}, []int32{0})

	for _, q := range Quantities {
		v := GridVar[q]
		h.AddVariable(v, []string{"time", "lat", "lon"}, []float32{0})
		h.AddAttribute(v, "units", unitOf(q))
	}

	h.AddVariable("population", []string{"time", "rgn"}, []int32{0})
	h.AddAttribute("population", "units", "thousands")

	for _, q := range Quantities {
		v := BasinVar[q]
		h.AddVariable(v, []string{"time", "basin"}, []float32{0})
		h.AddAttribute(v, "units", unitOf(q))
	}
	for _, q := range Quantities {
		v := RegionVar[q]
		h.AddVariable(v, []string{"time", "rgn"}, []float32{0})
		h.AddAttribute(v, "units", unitOf(q))
	}

	h.AddAttribute("", "forcing", []float32{float32(d.Forcing)})
	h.AddAttribute("", "population", []float32{float32(d.Population)})

	h.Define()
	for _, err := range h.Check() {
		return &ArchiveError{Op: "defining header", Err: err}
	}

	f, err := cdf.Create(ff, h)
	if err != nil {
		return &ArchiveError{Op: "creating file", Err: err}
	}

	if err := writeFloats(f, "lat", g.LatCenters()); err != nil {
		return err
	}
	if err := writeFloats(f, "lon", g.LonCenters()); err != nil {
		return err
	}
	if err := writeFloats(f, "time", g.TimeValues()); err != nil {
		return err
	}
	rgn := make([]int32, g.NRgn)
	for i := range rgn {
		rgn[i] = int32(i)
	}
	if err := writeInts(f, "rgn", rgn); err != nil {
		return err
	}
	basin := make([]int32, g.NBasin)
	for i := range basin {
		basin[i] = int32(i + 1) // basins are 1-indexed
	}
	if err := writeInts(f, "basin", basin); err != nil {
		return err
	}

	for _, q := range Quantities {
		if err := writeFloats(f, GridVar[q], toFloat32(d.Grids[q])); err != nil {
			return err
		}
	}
	pop := make([]int32, len(d.Pop.Elements))
	for i, v := range d.Pop.Elements {
		pop[i] = int32(v)
	}
	if err := writeInts(f, "population", pop); err != nil {
		return err
	}
	for _, q := range Quantities {
		if err := writeFloats(f, BasinVar[q], toFloat32(d.Basins[q])); err != nil {
			return err
		}
	}
	for _, q := range Quantities {
		if err := writeFloats(f, RegionVar[q], toFloat32(d.Regions[q])); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes the archive to path, replacing any existing file
// of that name.
func (d *Dataset) WriteFile(path string) error {
	ff, err := os.Create(path)
	if err != nil {
		return &ArchiveError{Op: "creating " + path, Err: err}
	}
	if err := d.Write(ff); err != nil {
		ff.Close()
		return err
	}
	if err := ff.Close(); err != nil {
		return &ArchiveError{Op: "closing " + path, Err: err}
	}
	return nil
}

func writeFloats(f *cdf.File, v string, vals []float32) error {
	w := f.Writer(v, nil, nil)
	if _, err := w.Write(vals); err != nil {
		return &ArchiveError{Op: "writing variable " + v, Err: err}
	}
	return nil
}

func writeInts(f *cdf.File, v string, vals []int32) error {
	w := f.Writer(v, nil, nil)
	if _, err := w.Write(vals); err != nil {
		return &ArchiveError{Op: "writing variable " + v, Err: err}
	}
	return nil
}

func toFloat32(a *sparse.DenseArray) []float32 {
	o := make([]float32, len(a.Elements))
	for i, v := range a.Elements {
		o[i] = float32(v)
	}
	return o
}

// ReadArchive loads an archive written by Write back into a Dataset.
// The geometry is recovered from the archive dimensions and the time
// coordinate; the monthly-input calendar span is not stored in the
// archive and is left at the default.
func ReadArchive(path string) (*Dataset, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, &ArchiveError{Op: "opening " + path, Err: err}
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, &ArchiveError{Op: "reading header of " + path, Err: err}
	}

	g := DefaultGeometry()
	g.NLat = f.Header.Lengths("lat")[0]
	g.NLon = f.Header.Lengths("lon")[0]
	g.NYear = f.Header.Lengths("time")[0]
	g.NRgn = f.Header.Lengths("rgn")[0]
	g.NBasin = f.Header.Lengths("basin")[0]
	times, err := readFloats(f, "time")
	if err != nil {
		return nil, err
	}
	if len(times) > 0 {
		g.StartYear = int(times[0])
	}
	if len(times) > 1 {
		g.StepYear = int(times[1] - times[0])
	}

	d := &Dataset{
		Geometry: g,
		Grids:    make(map[string]*sparse.DenseArray, len(Quantities)),
		Basins:   make(map[string]*sparse.DenseArray, len(Quantities)),
		Regions:  make(map[string]*sparse.DenseArray, len(Quantities)),
	}
	if v, ok := f.Header.GetAttribute("", "forcing").([]float32); ok && len(v) == 1 {
		d.Forcing = float64(v[0])
	}
	if v, ok := f.Header.GetAttribute("", "population").([]float32); ok && len(v) == 1 {
		d.Population = float64(v[0])
	}

	for _, q := range Quantities {
		if d.Grids[q], err = readDense(f, GridVar[q], g.NYear, g.NLat, g.NLon); err != nil {
			return nil, err
		}
		if d.Basins[q], err = readDense(f, BasinVar[q], g.NYear, g.NBasin); err != nil {
			return nil, err
		}
		if d.Regions[q], err = readDense(f, RegionVar[q], g.NYear, g.NRgn); err != nil {
			return nil, err
		}
	}

	r := f.Reader("population", nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, &ArchiveError{Op: "reading variable population", Err: err}
	}
	pop, ok := buf.([]int32)
	if !ok {
		return nil, &ArchiveError{Op: "reading variable population",
			Err: fmt.Errorf("unexpected data type %T", buf)}
	}
	d.Pop = sparse.ZerosDenseInt(g.NYear, g.NRgn)
	for i, v := range pop {
		d.Pop.Elements[i] = int(v)
	}
	return d, nil
}

func readFloats(f *cdf.File, v string) ([]float32, error) {
	r := f.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, &ArchiveError{Op: "reading variable " + v, Err: err}
	}
	vals, ok := buf.([]float32)
	if !ok {
		return nil, &ArchiveError{Op: "reading variable " + v,
			Err: fmt.Errorf("unexpected data type %T", buf)}
	}
	return vals, nil
}

func readDense(f *cdf.File, v string, shape ...int) (*sparse.DenseArray, error) {
	vals, err := readFloats(f, v)
	if err != nil {
		return nil, err
	}
	a := sparse.ZerosDense(shape...)
	for i, val := range vals {
		a.Elements[i] = float64(val)
	}
	return a, nil
}
