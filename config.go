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
	"io"
	"strconv"

	"github.com/BurntSushi/toml"
)

// NoData is the reserved path token meaning a scenario has no data
// for a gridded quantity. It is recognized only while parsing a
// recipe; everywhere else the absence travels as an Input value.
const NoData = "no-data"

// An Input locates one gridded input matrix, or records that its
// quantity is intentionally absent from the scenario. The zero value
// is the absent input.
type Input struct {
	path string
}

// InputFile returns an Input locating the matrix at path.
func InputFile(path string) Input { return Input{path: path} }

// Missing reports whether the quantity is intentionally absent.
func (in Input) Missing() bool { return in.path == "" }

// Path returns the matrix file path. It is empty for a missing input.
func (in Input) Path() string { return in.path }

func (in Input) String() string {
	if in.Missing() {
		return NoData
	}
	return in.path
}

// UnmarshalText lets recipes spell a missing input either as the
// NoData token or by omitting the key entirely.
func (in *Input) UnmarshalText(text []byte) error {
	if s := string(text); s != NoData {
		in.path = s
	} else {
		in.path = ""
	}
	return nil
}

func parseInput(tok string) Input {
	if tok == NoData {
		return Input{}
	}
	return Input{path: tok}
}

// A Config is one parsed recipe: the run metadata, the output path,
// and the location of every input matrix. The maps are keyed by the
// quantity names in Quantities.
type Config struct {
	Forcing    float64 `toml:"forcing"`    // global radiative forcing
	Population float64 `toml:"population"` // global population
	PCGDP      float64 `toml:"pcGDP"`      // global per-capita GDP; read but not archived

	OutFile string `toml:"output"`

	Grid    map[string]Input  `toml:"grid"`
	PopFile string            `toml:"pop"`
	Basin   map[string]string `toml:"basin"`
	Region  map[string]string `toml:"region"`
}

// ReadConfig parses the token-stream recipe form emitted by the GCAM
// driver: three whitespace-separated scalars (forcing, population,
// per-capita GDP), then 26 whitespace-separated path tokens in fixed
// order: output, the eight gridded inputs, the population table, the
// eight basin tables, and the eight region tables. Only the gridded
// paths may be the NoData token.
func ReadConfig(r io.Reader) (*Config, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	next := func(field string) (string, error) {
		if sc.Scan() {
			return sc.Text(), nil
		}
		err := sc.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return "", &ConfigError{Field: field, Err: err}
	}
	scalar := func(field string) (float64, error) {
		tok, err := next(field)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, &ConfigError{Field: field, Err: err}
		}
		return v, nil
	}

	c := new(Config)
	var err error
	if c.Forcing, err = scalar("forcing"); err != nil {
		return nil, err
	}
	if c.Population, err = scalar("population"); err != nil {
		return nil, err
	}
	if c.PCGDP, err = scalar("pcGDP"); err != nil {
		return nil, err
	}
	if c.OutFile, err = next("output"); err != nil {
		return nil, err
	}
	c.Grid = make(map[string]Input, len(Quantities))
	for _, q := range Quantities {
		tok, err := next("grid " + q)
		if err != nil {
			return nil, err
		}
		c.Grid[q] = parseInput(tok)
	}
	if c.PopFile, err = next("pop"); err != nil {
		return nil, err
	}
	c.Basin = make(map[string]string, len(Quantities))
	for _, q := range Quantities {
		if c.Basin[q], err = next("basin " + q); err != nil {
			return nil, err
		}
	}
	c.Region = make(map[string]string, len(Quantities))
	for _, q := range Quantities {
		if c.Region[q], err = next("region " + q); err != nil {
			return nil, err
		}
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadConfigTOML parses the TOML recipe form, which carries the same
// fields as the token stream keyed by quantity name.
func ReadConfigTOML(r io.Reader) (*Config, error) {
	c := new(Config)
	if _, err := toml.DecodeReader(r, c); err != nil {
		return nil, &ConfigError{Field: "recipe", Err: err}
	}
	if c.Grid == nil {
		c.Grid = make(map[string]Input, len(Quantities))
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

// check validates a parsed recipe. Table and population inputs do not
// admit the NoData sentinel: the upstream driver never emits it for
// them, and a missing table is a recipe mistake rather than a
// scenario property.
func (c *Config) check() error {
	if c.OutFile == "" {
		return &ConfigError{Field: "output", Err: errMissingField}
	}
	if c.PopFile == "" || c.PopFile == NoData {
		return &ConfigError{Field: "pop", Err: fmt.Errorf("population table path required, got %q", c.PopFile)}
	}
	known := make(map[string]bool, len(Quantities))
	for _, q := range Quantities {
		known[q] = true
	}
	for q := range c.Grid {
		if !known[q] {
			return &ConfigError{Field: "grid " + q, Err: errUnknownQuantity}
		}
	}
	for _, tbl := range []struct {
		name string
		m    map[string]string
	}{{"basin", c.Basin}, {"region", c.Region}} {
		for q := range tbl.m {
			if !known[q] {
				return &ConfigError{Field: tbl.name + " " + q, Err: errUnknownQuantity}
			}
		}
		for _, q := range Quantities {
			p, ok := tbl.m[q]
			if !ok || p == "" || p == NoData {
				return &ConfigError{
					Field: tbl.name + " " + q,
					Err:   fmt.Errorf("table path required, got %q", p),
				}
			}
		}
	}
	return nil
}

var errUnknownQuantity = fmt.Errorf("unknown quantity")
