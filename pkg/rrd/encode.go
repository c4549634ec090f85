// pkg/rrd/encode.go

package rrd

import (
	"encoding/binary"
	"fmt"
	"math"
)

type writer struct {
	buf []byte
	layout
}

func (w *writer) pad(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

func (w *writer) str(s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	w.buf = append(w.buf, b...)
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) u64(v uint64) {
	var b [8]byte
	w.order.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) word(v uint64) {
	if w.layout.word == 4 {
		w.u32(uint32(v))
		return
	}
	w.u64(v)
}

func (w *writer) float(v float64) {
	w.u64(math.Float64bits(v))
}

// cnt writes the u_cnt member of an 8 byte unival.
func (w *writer) cnt(v uint64) {
	if w.layout.word == 4 {
		w.u32(uint32(v))
		w.pad(4)
		return
	}
	w.u64(v)
}

// Encode writes f in rrdtool's on-disk layout. ByteOrder and WordSize
// default to little endian 64 bit; Version defaults to 0003. Consolidation
// state (pdp_prep, cdp_prep) is written empty.
func Encode(f *File) ([]byte, error) {
	l := layout{order: f.ByteOrder, word: f.WordSize}
	if l.order == nil {
		l.order = binary.LittleEndian
	}
	if l.word == 0 {
		l.word = 8
	}
	if l.word != 4 && l.word != 8 {
		return nil, fmt.Errorf("unsupported word size %d", l.word)
	}
	version := f.Version
	if version == "" {
		version = "0003"
	}
	var vnum int
	if _, err := fmt.Sscanf(version, "%04d", &vnum); err != nil || len(version) != 4 {
		return nil, fmt.Errorf("invalid version %q", version)
	}

	nds := len(f.DataSources)
	if nds == 0 {
		return nil, fmt.Errorf("at least one data source is required")
	}
	for _, ds := range f.DataSources {
		if len(ds.Name) >= nameLen || len(ds.Type) >= nameLen {
			return nil, fmt.Errorf("data source %q: name or type too long", ds.Name)
		}
	}
	size := l.statHeadSize() + nds*dsDefSize + len(f.Archives)*l.rraDefSize() +
		l.liveHeadSize(vnum) + nds*pdpPrepSize + nds*len(f.Archives)*cdpPrepSize + len(f.Archives)*l.word
	for i, a := range f.Archives {
		if uint64(len(a.Data)) != a.Rows*uint64(nds) {
			return nil, fmt.Errorf("archive %d: %d values for %d rows of %d sources", i, len(a.Data), a.Rows, nds)
		}
		if a.Rows > 0 && a.CurRow >= a.Rows {
			return nil, fmt.Errorf("archive %d: cur_row %d beyond %d rows", i, a.CurRow, a.Rows)
		}
		size += len(a.Data) * 8
	}

	w := &writer{buf: make([]byte, 0, size), layout: l}

	w.str(cookie, len(cookie))
	w.str(version, versionLen)
	w.pad(l.floatOffset() - len(cookie) - versionLen)
	w.float(floatCookie)
	w.word(uint64(nds))
	w.word(uint64(len(f.Archives)))
	w.word(f.Step)
	w.pad(parCount * univalSize)

	for _, ds := range f.DataSources {
		w.str(ds.Name, nameLen)
		w.str(ds.Type, nameLen)
		w.cnt(ds.Heartbeat)
		w.float(ds.Min)
		w.float(ds.Max)
		w.pad((parCount - 3) * univalSize)
	}

	for _, a := range f.Archives {
		w.str(a.CF, nameLen)
		w.pad(align(nameLen, l.word) - nameLen)
		w.word(a.Rows)
		w.word(a.PDPPerRow)
		w.float(a.XFF)
		w.pad((parCount - 1) * univalSize)
	}

	w.word(uint64(f.LastUpdate.Unix()))
	if vnum >= 3 {
		w.word(uint64(f.LastUpdate.Nanosecond() / 1000))
	}

	for range f.DataSources {
		w.str("U", 32)
		w.pad(parCount * univalSize)
	}
	w.pad(nds * len(f.Archives) * cdpPrepSize)

	for _, a := range f.Archives {
		w.word(a.CurRow)
	}
	for _, a := range f.Archives {
		for _, v := range a.Data {
			w.float(v)
		}
	}

	return w.buf, nil
}
