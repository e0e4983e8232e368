package sink

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/core/render"
)

const swatch = "██"

// RenderLegend renders a table of every cell: color swatch, name, value
// and share, in layout order.
func RenderLegend(s render.Scene) string {
	rows := make([][]string, len(s.Cells))
	for i, c := range s.Cells {
		rows[i] = []string{
			swatch,
			c.Node.Item.Name,
			content.FormatAmount(c.Node.Item.Value, s.Text.Currency, s.Text.Decimals),
			content.FormatShare(c.Share, 1, s.Text.Decimals),
		}
	}

	headerStyle := lipgloss.NewStyle().Bold(true)
	numberStyle := lipgloss.NewStyle().Align(lipgloss.Right)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("", "Name", "Value", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(s.Cells) {
				return lipgloss.NewStyle()
			}
			switch col {
			case 0:
				return lipgloss.NewStyle().Foreground(lipgloss.Color(s.Cells[row].Colors.Fill))
			case 2, 3:
				return numberStyle
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}
