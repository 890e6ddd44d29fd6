// Package export renders the summary figures and category breakdown of an
// analysis as delimited text. Fields are quoted only when they contain the
// delimiter, matching the report format consumers already parse.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/malawibank/analyzer/internal/domain"
)

const delimiter = ","

// WriteSummary writes the summary block followed by the spending breakdown.
func WriteSummary(w io.Writer, result *domain.AnalysisResult) error {
	rows := [][]string{
		{"SUMMARY REPORT", ""},
		{"Total Inflow", formatAmount(result.Inflow)},
		{"Total Outflow", formatAmount(result.Outflow)},
		{"Net Cash Flow", formatAmount(result.NetFlow())},
		{"Financial Score", strconv.Itoa(result.FinancialScore)},
		{"Financial Rank", result.FinancialRank},
		{"", ""},
		{"SPENDING BREAKDOWN", ""},
		{"Category", "Amount (MWK)"},
	}
	for _, cat := range result.Categories {
		rows = append(rows, []string{cat.Name, formatAmount(cat.Value)})
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		quoted := make([]string, len(row))
		for i, field := range row {
			quoted[i] = escapeField(field)
		}
		lines = append(lines, strings.Join(quoted, delimiter))
	}

	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("export.WriteSummary: %w", err)
	}
	return nil
}

// escapeField quotes a field only when it contains the delimiter.
func escapeField(field string) string {
	if strings.Contains(field, delimiter) {
		return `"` + field + `"`
	}
	return field
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
