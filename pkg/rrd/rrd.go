// pkg/rrd/rrd.go

// Package rrd reads and writes the binary round-robin database files
// produced by rrdtool. Both 32 and 64 bit layouts in either byte order
// are understood; the layout is detected from the float cookie.
package rrd

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidArchive is returned for anything that is not a readable RRD file.
var ErrInvalidArchive = errors.New("not a valid RRD archive")

const (
	cookie      = "RRD\x00"
	floatCookie = 8.642135e130
)

// DS is a data source definition.
type DS struct {
	Name      string
	Type      string
	Heartbeat uint64
	Min       float64
	Max       float64
}

// RRA is one round robin archive. Data holds Rows*len(DS) values in storage
// order: row-major, with row CurRow being the most recent.
type RRA struct {
	CF        string
	Rows      uint64
	PDPPerRow uint64
	XFF       float64
	CurRow    uint64
	Data      []float64
}

// File is a decoded RRD.
type File struct {
	Version     string
	ByteOrder   binary.ByteOrder
	WordSize    int
	Step        uint64
	LastUpdate  time.Time
	DataSources []DS
	Archives    []RRA
}

// Point is one consolidated value. Unknown is set for NaN rows.
type Point struct {
	Time    time.Time `json:"time"`
	Value   float64   `json:"value"`
	Unknown bool      `json:"unknown,omitempty"`
}

// MarshalJSON encodes unknown values as null.
func (p Point) MarshalJSON() ([]byte, error) {
	out := struct {
		Time    time.Time `json:"time"`
		Value   *float64  `json:"value"`
		Unknown bool      `json:"unknown,omitempty"`
	}{Time: p.Time, Unknown: p.Unknown}
	if !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
		v := p.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// DSIndex returns the position of the named data source.
func (f *File) DSIndex(name string) (int, bool) {
	for i, ds := range f.DataSources {
		if ds.Name == name {
			return i, true
		}
	}
	return -1, false
}

// DS returns the named data source definition.
func (f *File) DS(name string) (DS, bool) {
	i, ok := f.DSIndex(name)
	if !ok {
		return DS{}, false
	}
	return f.DataSources[i], true
}

// RRA returns archive i.
func (f *File) RRA(i int) (*RRA, error) {
	if i < 0 || i >= len(f.Archives) {
		return nil, fmt.Errorf("archive %d out of range (file has %d)", i, len(f.Archives))
	}
	return &f.Archives[i], nil
}

// RowStep is the time covered by one row of archive a.
func (f *File) RowStep(a *RRA) time.Duration {
	return time.Duration(f.Step*a.PDPPerRow) * time.Second
}

// Series returns archive rraIndex of dsName in chronological order.
func (f *File) Series(rraIndex int, dsName string) ([]Point, error) {
	a, err := f.RRA(rraIndex)
	if err != nil {
		return nil, err
	}
	col, ok := f.DSIndex(dsName)
	if !ok {
		return nil, fmt.Errorf("data source %q not defined", dsName)
	}
	if a.Rows == 0 {
		return nil, nil
	}

	step := int64(f.Step * a.PDPPerRow)
	if step <= 0 {
		return nil, fmt.Errorf("archive %d has zero row step", rraIndex)
	}
	last := f.LastUpdate.Unix()
	end := last - last%step

	nds := uint64(len(f.DataSources))
	points := make([]Point, 0, a.Rows)
	for k := uint64(0); k < a.Rows; k++ {
		row := (a.CurRow + 1 + k) % a.Rows
		v := a.Data[row*nds+uint64(col)]
		ts := end - int64(a.Rows-1-k)*step
		points = append(points, Point{
			Time:    time.Unix(ts, 0).UTC(),
			Value:   v,
			Unknown: math.IsNaN(v),
		})
	}
	return points, nil
}
