// pkg/diskusage/table.go

package diskusage

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	timeStyle    = lipgloss.NewStyle().Padding(0, 1)
	unknownStyle = cellStyle.Foreground(lipgloss.Color("#666666"))
	titleStyle   = lipgloss.NewStyle().Bold(true).MarginBottom(1)
)

// RenderTable lays out the last limit rows of s for the terminal.
// A limit of zero or less prints every row.
func RenderTable(s *Series, limit int) string {
	if s == nil || len(s.Lines) == 0 {
		return ""
	}

	rows := len(s.Lines[0].Points)
	start := 0
	if limit > 0 && rows > limit {
		start = rows - limit
	}

	const timeWidth = 22
	colWidth := 12
	for _, l := range s.Lines {
		colWidth = max(colWidth, lipgloss.Width(l.Style.Label)+2)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s, step %s)", s.Group, s.Path, s.Step)))
	b.WriteString("\n")

	header := []string{timeStyle.Width(timeWidth).Render("time")}
	for _, l := range s.Lines {
		header = append(header, headerStyle.Width(colWidth).Foreground(lipgloss.Color(l.Style.Color)).Render(l.Style.Label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	for i := start; i < rows; i++ {
		cells := []string{timeStyle.Width(timeWidth).Render(s.Lines[0].Points[i].Time.Format("2006-01-02 15:04 MST"))}
		for _, l := range s.Lines {
			if i >= len(l.Points) || l.Points[i].Unknown || math.IsNaN(l.Points[i].Value) {
				cells = append(cells, unknownStyle.Width(colWidth).Render("U"))
				continue
			}
			cells = append(cells, cellStyle.Width(colWidth).Render(humanize(l.Points[i].Value)))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}
