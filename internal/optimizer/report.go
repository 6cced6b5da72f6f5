package optimizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/yourusername/vector-bt/internal/strategy"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	bestStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

// FormatResult renders the search outcome followed by a table of the top n
// combinations. The best score, best params, evaluated and skipped counts are
// always present.
func FormatResult(r *Result, topN int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Optimization run %s (category: %s)\n", r.RunID, r.Category)
	fmt.Fprintf(&b, "  Best score : %s\n", formatScore(r.BestScore))
	fmt.Fprintf(&b, "  Best params: %s\n", FormatParams(r.BestParams))
	fmt.Fprintf(&b, "  Evaluated  : %d\n", r.Evaluated())
	fmt.Fprintf(&b, "  Skipped    : %d\n", r.Skipped)
	fmt.Fprintf(&b, "  Duration   : %s\n", r.Duration.Round(time.Microsecond))

	top := r.Top(topN)
	if len(top) == 0 {
		return b.String()
	}

	rows := make([][]string, 0, len(top))
	for rank, ev := range top {
		status := "ok"
		if ev.Err != nil {
			status = "skipped"
		}
		rows = append(rows, []string{
			strconv.Itoa(rank + 1),
			FormatParams(ev.Params),
			formatScore(ev.Score),
			formatScore(ev.FinalPnL),
			formatScore(ev.Sharpe),
			formatScore(ev.MaxDrawdown),
			status,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "PARAMS", "SCORE", "P&L", "SHARPE", "MAX DD", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == 0 && r.Found() && top[0].Index == r.BestIndex:
				return bestStyle
			default:
				return cellStyle
			}
		})
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

// FormatParams renders a parameter set as sorted key=value pairs
func FormatParams(p strategy.Params) string {
	if p == nil {
		return "none"
	}
	if len(p) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(p))
	for _, k := range p.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, p[k]))
	}
	return strings.Join(parts, " ")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
