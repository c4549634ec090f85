// pkg/diskusage/series.go

package diskusage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/rrd"
)

// ErrNotRRD marks a payload that failed to decode.
var ErrNotRRD = errors.New("not a valid RRD archive")

// SeriesStyle is the fixed presentation of one plotted data source.
type SeriesStyle struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	ShowLines bool   `json:"lines"`
	Checked   bool   `json:"checked"`
}

// Styles lists the plotted data sources in legend order.
var Styles = []SeriesStyle{
	{Name: "total", Title: "total", Label: "total", Color: "#00ff00", ShowLines: true},
	{Name: "used", Title: "used", Label: "used", Color: "#aa0000", Checked: true},
}

// Line is one styled series.
type Line struct {
	Style  SeriesStyle `json:"style"`
	Points []rrd.Point `json:"points"`
}

// Series is everything the page plots for a group.
type Series struct {
	Group      string        `json:"group"`
	Path       string        `json:"path"`
	Step       time.Duration `json:"-"`
	StepSecs   int64         `json:"step"`
	LastUpdate time.Time     `json:"last_update"`
	Lines      []Line        `json:"lines"`
}

// LoadSeries fetches and decodes a group's archive and extracts the styled
// data sources from its first RRA. The result is returned, never cached.
func LoadSeries(ctx context.Context, f Fetcher, group string) (*Series, error) {
	raw, err := f.Fetch(ctx, group)
	if errors.Is(err, ErrResourceNotFound) {
		return nil, gsc_err.NewNotFoundError(fmt.Sprintf("no disk usage archive for group %s", group), err)
	}
	if err != nil {
		return nil, gsc_err.NewNetworkError(FetchFailedMessage(group, err), err)
	}
	return Decode(group, raw)
}

// Decode turns raw archive bytes into a Series.
func Decode(group string, raw []byte) (*Series, error) {
	invalid := func(cause error) error {
		return gsc_err.NewParseError(AlertMessage(group), fmt.Errorf("%w: %w", ErrNotRRD, cause))
	}

	file, err := rrd.Parse(raw)
	if err != nil {
		return nil, invalid(err)
	}
	archive, err := file.RRA(0)
	if err != nil {
		return nil, invalid(err)
	}

	s := &Series{
		Group:      group,
		Path:       ResourcePath(group),
		Step:       file.RowStep(archive),
		StepSecs:   int64(file.RowStep(archive) / time.Second),
		LastUpdate: file.LastUpdate,
	}
	for _, style := range Styles {
		if _, ok := file.DS(style.Name); !ok {
			continue
		}
		points, err := file.Series(0, style.Name)
		if err != nil {
			return nil, invalid(err)
		}
		s.Lines = append(s.Lines, Line{Style: style, Points: points})
	}
	if len(s.Lines) == 0 {
		return nil, invalid(errors.New("archive has neither a total nor a used data source"))
	}
	return s, nil
}
