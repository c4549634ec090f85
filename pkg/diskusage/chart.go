// pkg/diskusage/chart.go

package diskusage

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	chartWidth   = 800
	chartHeight  = 300
	chartPadding = 50
	yTicks       = 5
)

type chartLine struct {
	Name     string
	Label    string
	Color    string
	Dashed   bool
	Segments []string
}

type axisLabel struct {
	Pos  float64
	Text string
}

// chart is the server-side rendering of a Series as SVG geometry.
type chart struct {
	Width, Height int
	Left, Right   float64
	Top, Bottom   float64
	Lines         []chartLine
	XLabels       []axisLabel
	YLabels       []axisLabel
}

func buildChart(s *Series) chart {
	c := chart{
		Width:  chartWidth,
		Height: chartHeight,
		Left:   chartPadding,
		Right:  chartWidth - chartPadding/2,
		Top:    chartPadding / 2,
		Bottom: chartHeight - chartPadding,
	}

	var t0, t1 time.Time
	maxV := 0.0
	for _, l := range s.Lines {
		for _, p := range l.Points {
			if t0.IsZero() || p.Time.Before(t0) {
				t0 = p.Time
			}
			if p.Time.After(t1) {
				t1 = p.Time
			}
			if !p.Unknown && p.Value > maxV {
				maxV = p.Value
			}
		}
	}
	if maxV == 0 {
		maxV = 1
	}
	span := t1.Sub(t0).Seconds()
	if span <= 0 {
		span = 1
	}

	x := func(t time.Time) float64 {
		return c.Left + t.Sub(t0).Seconds()/span*(c.Right-c.Left)
	}
	y := func(v float64) float64 {
		return c.Bottom - v/maxV*(c.Bottom-c.Top)
	}

	for _, l := range s.Lines {
		cl := chartLine{
			Name:   l.Style.Name,
			Label:  l.Style.Label,
			Color:  l.Style.Color,
			Dashed: !l.Style.ShowLines && !l.Style.Checked,
		}
		var seg []string
		flush := func() {
			if len(seg) > 0 {
				cl.Segments = append(cl.Segments, strings.Join(seg, " "))
				seg = nil
			}
		}
		for _, p := range l.Points {
			if p.Unknown {
				flush()
				continue
			}
			seg = append(seg, fmt.Sprintf("%.1f,%.1f", x(p.Time), y(p.Value)))
		}
		flush()
		c.Lines = append(c.Lines, cl)
	}

	for i := 0; i <= yTicks; i++ {
		v := maxV * float64(i) / yTicks
		c.YLabels = append(c.YLabels, axisLabel{Pos: y(v), Text: humanize(v)})
	}
	if !t0.IsZero() {
		for i := 0; i <= 4; i++ {
			t := t0.Add(time.Duration(float64(i) / 4 * span * float64(time.Second)))
			c.XLabels = append(c.XLabels, axisLabel{Pos: x(t), Text: t.Format("Jan 02 15:04")})
		}
	}
	return c
}

// humanize prints v with a binary unit prefix.
func humanize(v float64) string {
	const units = "KMGTPE"
	if math.Abs(v) < 1024 {
		return fmt.Sprintf("%.0f", v)
	}
	exp := 0
	for math.Abs(v) >= 1024 && exp < len(units) {
		v /= 1024
		exp++
	}
	return fmt.Sprintf("%.1f%c", v, units[exp-1])
}
