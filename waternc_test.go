package waternc

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

// testGeometry returns a small synthetic geometry: a 2×3 grid, three
// archive time steps (2010, 2015, 2020) drawn from a 2008–2020
// calendar span, two regions, and four basins.
func testGeometry() Geometry {
	return Geometry{
		NLat:      2,
		NLon:      3,
		NYear:     3,
		StartYear: 2010,
		StepYear:  5,
		FirstYear: 2008,
		LastYear:  2020,
		NRgn:      2,
		NBasin:    4,
	}
}

// packFloats serializes vals as the little-endian float32 stream the
// matrix files use.
func packFloats(t *testing.T, vals []float32) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, vals); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestGeometryYears(t *testing.T) {
	g := testGeometry()
	kept := []int{}
	for y := g.FirstYear; y <= g.LastYear; y++ {
		if g.keepYear(y) {
			kept = append(kept, y)
		}
	}
	want := []int{2010, 2015, 2020}
	if len(kept) != len(want) {
		t.Fatalf("kept years: got %v, want %v", kept, want)
	}
	for i, y := range want {
		if kept[i] != y {
			t.Errorf("kept year %d: got %d, want %d", i, kept[i], y)
		}
		if g.timeIndex(y) != i {
			t.Errorf("timeIndex(%d): got %d, want %d", y, g.timeIndex(y), i)
		}
	}
}

func TestGeometryCoordinates(t *testing.T) {
	g := DefaultGeometry()
	lat := g.LatCenters()
	if lat[0] != -89.75 || lat[len(lat)-1] != 89.75 {
		t.Errorf("lat range: got [%g, %g], want [-89.75, 89.75]", lat[0], lat[len(lat)-1])
	}
	lon := g.LonCenters()
	if lon[0] != -179.75 || lon[len(lon)-1] != 179.75 {
		t.Errorf("lon range: got [%g, %g], want [-179.75, 179.75]", lon[0], lon[len(lon)-1])
	}
	times := g.TimeValues()
	if times[0] != 2010 || times[len(times)-1] != 2095 {
		t.Errorf("time range: got [%g, %g], want [2010, 2095]", times[0], times[len(times)-1])
	}
	for i := 1; i < len(times); i++ {
		if times[i]-times[i-1] != 5 {
			t.Fatalf("time step %d: got %g, want 5", i, times[i]-times[i-1])
		}
	}
}

func TestVariableNames(t *testing.T) {
	// The irregular names are load-bearing; downstream consumers read
	// these exact strings.
	cases := []struct{ got, want string }{
		{GridVar["manufacturing"], "mfg_demand"},
		{BasinVar["manufacturing"], "basin_manufacturing_demand"},
		{RegionVar["manufacturing"], "region_manufacturing_demand"},
		{BasinVar["total"], "basin_total_demand"},
		{RegionVar["total"], "region_total"},
		{GridVar["scarcity"], "scarcity"},
		{BasinVar["scarcity"], "basin_water_scarcity"},
		{RegionVar["scarcity"], "region_water_scarcity"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("variable name: got %q, want %q", c.got, c.want)
		}
	}
	for _, q := range Quantities {
		want := "km^3"
		if q == "scarcity" {
			want = "(unitless)"
		}
		if unitOf(q) != want {
			t.Errorf("unitOf(%q): got %q, want %q", q, unitOf(q), want)
		}
	}
}

func TestGridLayoutIndex(t *testing.T) {
	g := Geometry{NLat: 2, NLon: 3}
	// In a latitude-major record longitude varies fastest; in a
	// longitude-major record latitude varies fastest.
	for ilat := 0; ilat < g.NLat; ilat++ {
		for ilon := 0; ilon < g.NLon; ilon++ {
			if got, want := LatMajor.index(g, ilat, ilon), ilat*3+ilon; got != want {
				t.Errorf("LatMajor(%d,%d): got %d, want %d", ilat, ilon, got, want)
			}
			if got, want := LonMajor.index(g, ilat, ilon), ilon*2+ilat; got != want {
				t.Errorf("LonMajor(%d,%d): got %d, want %d", ilat, ilon, got, want)
			}
		}
	}
}

func TestStoreRecordTranspose(t *testing.T) {
	g := testGeometry()
	rec := make([]float64, g.NLat*g.NLon)
	for i := range rec {
		rec[i] = float64(i)
	}
	data := NaNGrid(g)
	storeRecord(data, 1, rec, LonMajor, 2)
	for ilat := 0; ilat < g.NLat; ilat++ {
		for ilon := 0; ilon < g.NLon; ilon++ {
			want := float64(ilon*g.NLat+ilat) * 2
			if got := data.Get(1, ilat, ilon); got != want {
				t.Errorf("cell (%d,%d): got %g, want %g", ilat, ilon, got, want)
			}
		}
	}
	// The other time steps are untouched.
	if !math.IsNaN(data.Get(0, 0, 0)) || !math.IsNaN(data.Get(2, 1, 2)) {
		t.Error("storeRecord wrote outside its time step")
	}
}

func TestNaNGrid(t *testing.T) {
	g := testGeometry()
	data := NaNGrid(g)
	if got, want := len(data.Elements), g.NYear*g.NLat*g.NLon; got != want {
		t.Fatalf("NaNGrid size: got %d, want %d", got, want)
	}
	for i, v := range data.Elements {
		if !math.IsNaN(v) {
			t.Fatalf("element %d: got %g, want NaN", i, v)
		}
	}
}
