package waternc

import (
	"bytes"
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// monthlyStream builds a monthly-flow stream for the test geometry.
// The record for month m (1–12) of a kept year holds i+m at
// longitude-major position i; records for discarded years hold a
// garbage value so that any bug that keeps them is visible.
func monthlyStream(t *testing.T, g Geometry) []byte {
	t.Helper()
	var vals []float32
	n := g.NLat * g.NLon
	for year := g.FirstYear; year <= g.LastYear; year++ {
		for month := 1; month <= 12; month++ {
			for i := 0; i < n; i++ {
				if g.keepYear(year) {
					vals = append(vals, float32(i+month))
				} else {
					vals = append(vals, 999)
				}
			}
		}
	}
	return packFloats(t, vals)
}

func TestReadMonthlyGrid(t *testing.T) {
	g := testGeometry()
	data, err := ReadMonthlyGrid(bytes.NewReader(monthlyStream(t, g)), g)
	if err != nil {
		t.Fatal(err)
	}
	const tol = 1e-5
	// Months 1..12 average to 6.5, so longitude-major cell i of every
	// kept year averages to i+6.5 before unit conversion.
	for iyear := 0; iyear < g.NYear; iyear++ {
		for ilat := 0; ilat < g.NLat; ilat++ {
			for ilon := 0; ilon < g.NLon; ilon++ {
				i := ilon*g.NLat + ilat
				want := (float64(i) + 6.5) * 12 * monthlyFlowFactor
				got := data.Get(iyear, ilat, ilon)
				if !floats.EqualWithinAbsOrRel(got, want, tol, tol) {
					t.Fatalf("step %d cell (%d,%d): got %g, want %g",
						iyear, ilat, ilon, got, want)
				}
			}
		}
	}
}

func TestReadMonthlyGridZeros(t *testing.T) {
	// An all-zero input must produce an all-zero grid, not NaN.
	g := testGeometry()
	nyears := g.LastYear - g.FirstYear + 1
	vals := make([]float32, nyears*12*g.NLat*g.NLon)
	data, err := ReadMonthlyGrid(bytes.NewReader(packFloats(t, vals)), g)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range data.Elements {
		if v != 0 {
			t.Fatalf("element %d: got %g, want 0", i, v)
		}
	}
}

func TestReadMonthlyGridTruncated(t *testing.T) {
	g := testGeometry()
	full := monthlyStream(t, g)
	// Cut the stream in the middle of 2009, a discarded year: the
	// reader must still notice.
	oneYear := 12 * g.NLat * g.NLon * 4
	short := full[:oneYear+oneYear/2]
	_, err := ReadMonthlyGrid(bytes.NewReader(short), g)
	var trunc *TruncationError
	if !errors.As(err, &trunc) {
		t.Fatalf("got %v, want TruncationError", err)
	}
	if trunc.Year != 2009 {
		t.Errorf("truncation year: got %d, want 2009", trunc.Year)
	}
}

// fiveYearStream builds a five-year stream: skip throwaway records of
// constant 999, then one record per time step holding 100*(j+1)+i at
// longitude-major position i for record j.
func fiveYearStream(t *testing.T, g Geometry, skip, nrec int) []byte {
	t.Helper()
	var vals []float32
	n := g.NLat * g.NLon
	for i := 0; i < skip*n; i++ {
		vals = append(vals, 999)
	}
	for j := 0; j < nrec; j++ {
		for i := 0; i < n; i++ {
			vals = append(vals, float32(100*(j+1)+i))
		}
	}
	return packFloats(t, vals)
}

func TestReadFiveYearGrid(t *testing.T) {
	g := testGeometry()
	for _, skip := range []int{1, 2} {
		data, err := ReadFiveYearGrid(bytes.NewReader(fiveYearStream(t, g, skip, g.NYear)), g, skip)
		if err != nil {
			t.Fatal(err)
		}
		for iyear := 0; iyear < g.NYear; iyear++ {
			for ilat := 0; ilat < g.NLat; ilat++ {
				for ilon := 0; ilon < g.NLon; ilon++ {
					want := float64(100*(iyear+1) + ilon*g.NLat + ilat)
					if got := data.Get(iyear, ilat, ilon); got != want {
						t.Fatalf("skip %d, step %d cell (%d,%d): got %g, want %g",
							skip, iyear, ilat, ilon, got, want)
					}
				}
			}
		}
	}
}

func TestReadFiveYearGridConstant(t *testing.T) {
	g := testGeometry()
	n := g.NLat * g.NLon
	vals := make([]float32, (g.NYear+2)*n)
	for i := range vals {
		vals[i] = 10
	}
	data, err := ReadFiveYearGrid(bytes.NewReader(packFloats(t, vals)), g, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range data.Elements {
		if v != 10 {
			t.Fatalf("element %d: got %g, want 10", i, v)
		}
	}
}

func TestReadFiveYearGridTruncated(t *testing.T) {
	g := testGeometry()
	var trunc *TruncationError

	// Too few data records.
	_, err := ReadFiveYearGrid(bytes.NewReader(fiveYearStream(t, g, 2, g.NYear-1)), g, 2)
	if !errors.As(err, &trunc) {
		t.Fatalf("short data: got %v, want TruncationError", err)
	}
	if want := g.StartYear + (g.NYear-1)*g.StepYear; trunc.Year != want {
		t.Errorf("truncation year: got %d, want %d", trunc.Year, want)
	}

	// The stream ends inside the throwaway block.
	_, err = ReadFiveYearGrid(bytes.NewReader(fiveYearStream(t, g, 1, 0)), g, 2)
	if !errors.As(err, &trunc) {
		t.Fatalf("short skip block: got %v, want TruncationError", err)
	}
}
