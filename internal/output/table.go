package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RunColumns are the history table headers, in row order.
var RunColumns = []string{"When", "Status", "Src", "Tb", "Incdirs", "Job"}

// countColumns hold file counts and are right-aligned.
var countColumns = map[int]bool{2: true, 3: true, 4: true}

// RunTable renders history rows under RunColumns with a rule below the
// header and no outer border. Rows are rendered in the order given.
func RunTable(rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		BorderStyle(StyleMuted).
		Headers(RunColumns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if row == table.HeaderRow {
				s = s.Inherit(StyleHeader)
			}
			if countColumns[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	return t.Render() + "\n"
}
