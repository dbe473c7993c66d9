package ingest

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// Summarize renders metadata as the one-paragraph description sent to the
// completion service. Parts are joined with single spaces; numeric columns
// whose statistics are undefined get no statistics line.
func Summarize(m *domain.Metadata) string {
	parts := []string{
		fmt.Sprintf("This CSV file contains %d rows and %d columns.", m.RowCount, m.ColumnCount),
		fmt.Sprintf("Columns: %s.", strings.Join(m.Columns, ", ")),
	}

	if len(m.NumericColumnsStats) > 0 {
		parts = append(parts, "Numeric column statistics:")
		// column order, not map order
		for _, name := range m.Columns {
			stats, ok := m.NumericColumnsStats[name]
			if !ok || !stats.Complete() {
				continue
			}
			parts = append(parts, fmt.Sprintf("- %s: mean=%.2f, range: %.2f to %.2f",
				name, *stats.Mean, *stats.Min, *stats.Max))
		}
	}

	return strings.Join(parts, " ")
}
