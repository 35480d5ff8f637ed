package sink

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/occupancy/pkg/layout"
	"github.com/matzehuels/occupancy/pkg/render/locale"
	"github.com/matzehuels/occupancy/pkg/timeline"
)

const (
	cellWidth    = 4
	cellEmpty    = " ·  "
	cellContinue = "━━━━"
	labelMax     = 28
)

var (
	textHeader  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	textCell    = lipgloss.NewStyle().Padding(0, 1)
	textSection = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36")).Padding(0, 1)
	textStatus  = map[string]lipgloss.Style{
		"confirmed": textCell.Foreground(lipgloss.Color("35")),
		"option":    textCell.Foreground(lipgloss.Color("220")),
		"cancelled": textCell.Foreground(lipgloss.Color("240")),
	}
)

// RenderText draws the document as a terminal table: one line per packed
// row, one column per month. A booking shows its id in its first month.
func RenderText(doc layout.Document, loc *locale.Localizer) string {
	if loc == nil {
		loc = locale.New("")
	}

	headers := []string{loc.T(locale.LabelSupport), "#"}
	for m := 0; m < timeline.MonthsPerYear; m++ {
		headers = append(headers, loc.MonthShort(m))
	}
	headers = append(headers, loc.T(locale.LabelTotal))

	var rows [][]string
	// status per table cell, keyed by row then column
	status := map[int]map[int]string{}
	sectionRows := map[int]bool{}

	for _, sec := range doc.Sections {
		if doc.GroupBy != "" {
			sectionRows[len(rows)] = true
			row := make([]string, len(headers))
			row[0] = loc.GroupLabel(doc.GroupBy) + ": " + loc.SectionLabel(sec.Key)
			row[len(row)-1] = sec.Total
			rows = append(rows, row)
		}
		for _, s := range sec.Supports {
			for lane := 0; lane < max(1, s.Rows); lane++ {
				row := make([]string, len(headers))
				if lane == 0 {
					row[0] = clip(s.Label(), labelMax)
					row[len(row)-1] = s.Total
				}
				row[1] = strconv.Itoa(lane)
				for m := 0; m < timeline.MonthsPerYear; m++ {
					row[2+m] = cellEmpty
				}
				cells := map[int]string{}
				for _, b := range s.Bookings {
					if b.Row != lane {
						continue
					}
					for m := b.StartMonth; m < b.StartMonth+b.Duration && m < timeline.MonthsPerYear; m++ {
						row[2+m] = cellContinue
						cells[2+m] = b.Status
					}
					row[2+b.StartMonth] = fmt.Sprintf("%-*s", cellWidth, clip(b.ID, cellWidth))
				}
				status[len(rows)] = cells
				rows = append(rows, row)
			}
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return textHeader
			case sectionRows[row]:
				return textSection
			}
			if st, ok := textStatus[status[row][col]]; ok {
				return st
			}
			return textCell
		})

	var out strings.Builder
	fmt.Fprintf(&out, "%s %d\n", loc.T(locale.LabelYear), doc.Year)
	if len(rows) == 0 {
		out.WriteString(loc.T(locale.LabelEmpty) + "\n")
		return out.String()
	}
	out.WriteString(t.String())
	out.WriteString("\n")
	return out.String()
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
