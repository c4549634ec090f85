// pkg/rrd/parse.go

package rrd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// On-disk sizes that do not depend on the word size.
const (
	versionLen  = 5
	nameLen     = 20
	univalSize  = 8
	parCount    = 10
	dsDefSize   = 2*nameLen + parCount*univalSize
	pdpPrepSize = 32 + parCount*univalSize
	cdpPrepSize = parCount * univalSize

	// sanity limits; rrdtool itself refuses far smaller files
	maxDS  = 1 << 12
	maxRRA = 1 << 12
)

type layout struct {
	order binary.ByteOrder
	word  int
}

func (l layout) statHeadSize() int { return l.floatOffset() + 8 + 3*l.word + parCount*univalSize }
func (l layout) floatOffset() int  { return align(len(cookie)+versionLen, l.word) }
func (l layout) rraDefSize() int   { return align(nameLen, l.word) + 2*l.word + parCount*univalSize }
func (l layout) liveHeadSize(version int) int {
	if version >= 3 {
		return 2 * l.word
	}
	return l.word
}

func align(n, a int) int {
	return (n + a - 1) / a * a
}

type reader struct {
	buf []byte
	off int
	layout
}

func (r *reader) need(n int, what string) error {
	if n < 0 || r.off+n > len(r.buf) {
		return fmt.Errorf("%w: truncated reading %s at offset %d", ErrInvalidArchive, what, r.off)
	}
	return nil
}

func (r *reader) bytes(n int, what string) ([]byte, error) {
	if err := r.need(n, what); err != nil {
		return nil, err
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) str(n int, what string) (string, error) {
	b, err := r.bytes(n, what)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

func (r *reader) word(what string) (uint64, error) {
	b, err := r.bytes(r.layout.word, what)
	if err != nil {
		return 0, err
	}
	if r.layout.word == 4 {
		return uint64(r.order.Uint32(b)), nil
	}
	return r.order.Uint64(b), nil
}

func (r *reader) float(what string) (float64, error) {
	b, err := r.bytes(8, what)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(b)), nil
}

// unival reads one par[] slot and returns it as both interpretations.
func (r *reader) unival(what string) (uint64, float64, error) {
	b, err := r.bytes(univalSize, what)
	if err != nil {
		return 0, 0, err
	}
	var cnt uint64
	if r.layout.word == 4 {
		cnt = uint64(r.order.Uint32(b))
	} else {
		cnt = r.order.Uint64(b)
	}
	return cnt, math.Float64frombits(r.order.Uint64(b)), nil
}

func (r *reader) skip(n int, what string) error {
	if err := r.need(n, what); err != nil {
		return err
	}
	r.off += n
	return nil
}

func detectLayout(b []byte) (layout, error) {
	for _, word := range []int{8, 4} {
		l := layout{word: word}
		off := l.floatOffset()
		if len(b) < off+8 {
			continue
		}
		for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
			if math.Float64frombits(order.Uint64(b[off:])) == floatCookie {
				l.order = order
				return l, nil
			}
		}
	}
	return layout{}, fmt.Errorf("%w: float cookie not found", ErrInvalidArchive)
}

// Parse decodes an RRD file.
func Parse(b []byte) (*File, error) {
	if len(b) < len(cookie)+versionLen || string(b[:len(cookie)]) != cookie {
		return nil, fmt.Errorf("%w: missing RRD cookie", ErrInvalidArchive)
	}
	versionStr := string(bytes.TrimRight(b[len(cookie):len(cookie)+versionLen], "\x00"))
	var version int
	if _, err := fmt.Sscanf(versionStr, "%04d", &version); err != nil || version < 1 || version > 4 {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidArchive, versionStr)
	}

	l, err := detectLayout(b)
	if err != nil {
		return nil, err
	}
	r := &reader{buf: b, off: l.floatOffset() + 8, layout: l}

	dsCnt, err := r.word("ds_cnt")
	if err != nil {
		return nil, err
	}
	rraCnt, err := r.word("rra_cnt")
	if err != nil {
		return nil, err
	}
	step, err := r.word("pdp_step")
	if err != nil {
		return nil, err
	}
	if dsCnt == 0 || dsCnt > maxDS || rraCnt > maxRRA {
		return nil, fmt.Errorf("%w: implausible header (ds_cnt=%d rra_cnt=%d)", ErrInvalidArchive, dsCnt, rraCnt)
	}
	if err := r.skip(parCount*univalSize, "stat_head.par"); err != nil {
		return nil, err
	}

	f := &File{
		Version:   versionStr,
		ByteOrder: l.order,
		WordSize:  l.word,
		Step:      step,
	}

	for i := uint64(0); i < dsCnt; i++ {
		ds, err := r.dsDef()
		if err != nil {
			return nil, err
		}
		f.DataSources = append(f.DataSources, ds)
	}
	for i := uint64(0); i < rraCnt; i++ {
		a, err := r.rraDef()
		if err != nil {
			return nil, err
		}
		f.Archives = append(f.Archives, a)
	}

	lastUp, err := r.word("live_head.last_up")
	if err != nil {
		return nil, err
	}
	var usec uint64
	if version >= 3 {
		if usec, err = r.word("live_head.last_up_usec"); err != nil {
			return nil, err
		}
	}
	f.LastUpdate = time.Unix(int64(lastUp), int64(usec)*int64(time.Microsecond)).UTC()

	if err := r.skip(int(dsCnt)*pdpPrepSize, "pdp_prep"); err != nil {
		return nil, err
	}
	if err := r.skip(int(dsCnt*rraCnt)*cdpPrepSize, "cdp_prep"); err != nil {
		return nil, err
	}
	for i := range f.Archives {
		cur, err := r.word("rra_ptr")
		if err != nil {
			return nil, err
		}
		if f.Archives[i].Rows > 0 && cur >= f.Archives[i].Rows {
			return nil, fmt.Errorf("%w: rra %d cur_row %d beyond %d rows", ErrInvalidArchive, i, cur, f.Archives[i].Rows)
		}
		f.Archives[i].CurRow = cur
	}

	for i := range f.Archives {
		a := &f.Archives[i]
		if a.Rows > uint64(len(b)) {
			return nil, fmt.Errorf("%w: rra %d row count %d exceeds file size", ErrInvalidArchive, i, a.Rows)
		}
		n := a.Rows * dsCnt
		if err := r.need(int(n)*8, fmt.Sprintf("rra %d data", i)); err != nil {
			return nil, err
		}
		a.Data = make([]float64, n)
		for j := range a.Data {
			a.Data[j], _ = r.float("value")
		}
	}

	return f, nil
}

func (r *reader) dsDef() (DS, error) {
	var ds DS
	var err error
	if ds.Name, err = r.str(nameLen, "ds_def.ds_nam"); err != nil {
		return ds, err
	}
	if ds.Type, err = r.str(nameLen, "ds_def.dst"); err != nil {
		return ds, err
	}
	if ds.Heartbeat, _, err = r.unival("ds_def.par"); err != nil {
		return ds, err
	}
	if _, ds.Min, err = r.unival("ds_def.par"); err != nil {
		return ds, err
	}
	if _, ds.Max, err = r.unival("ds_def.par"); err != nil {
		return ds, err
	}
	return ds, r.skip((parCount-3)*univalSize, "ds_def.par")
}

func (r *reader) rraDef() (RRA, error) {
	var a RRA
	var err error
	if a.CF, err = r.str(nameLen, "rra_def.cf_nam"); err != nil {
		return a, err
	}
	if err = r.skip(align(nameLen, r.layout.word)-nameLen, "rra_def padding"); err != nil {
		return a, err
	}
	if a.Rows, err = r.word("rra_def.row_cnt"); err != nil {
		return a, err
	}
	if a.PDPPerRow, err = r.word("rra_def.pdp_cnt"); err != nil {
		return a, err
	}
	if _, a.XFF, err = r.unival("rra_def.par"); err != nil {
		return a, err
	}
	return a, r.skip((parCount-1)*univalSize, "rra_def.par")
}
