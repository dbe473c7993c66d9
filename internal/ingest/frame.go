package ingest

import (
	"encoding/csv"
	"math"
	"strconv"
	"strings"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// Names returns the column names in header order
func (f *Frame) Names() []string {
	names := make([]string, len(f.Columns))
	for i, col := range f.Columns {
		names[i] = col.Name
	}
	return names
}

// DataTypes maps each column name to its inferred type label
func (f *Frame) DataTypes() map[string]string {
	types := make(map[string]string, len(f.Columns))
	for _, col := range f.Columns {
		types[col.Name] = col.Type
	}
	return types
}

// Records returns the first n rows as column-name keyed maps, in row order
func (f *Frame) Records(n int) []map[string]any {
	if n > f.Rows {
		n = f.Rows
	}
	records := make([]map[string]any, n)
	for row := 0; row < n; row++ {
		rec := make(map[string]any, len(f.Columns))
		for _, col := range f.Columns {
			rec[col.Name] = col.Values[row]
		}
		records[row] = rec
	}
	return records
}

// CSV renders the frame as canonical CSV: comma-delimited, "\n" line endings,
// header first, numbers normalised and missing cells empty.
func (f *Frame) CSV() (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(f.Names()); err != nil {
		return "", err
	}
	record := make([]string, len(f.Columns))
	for row := 0; row < f.Rows; row++ {
		for i, col := range f.Columns {
			record[i] = formatCell(col.Values[row])
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		format := byte('f')
		if math.Abs(val) >= 1e16 {
			format = 'g'
		}
		s := strconv.FormatFloat(val, format, -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case bool:
		if val {
			return "True"
		}
		return "False"
	case string:
		return val
	default:
		return ""
	}
}

// numericValues returns the non-missing values of a numeric column as float64
func numericValues(col Column) []float64 {
	if !domain.IsNumericType(col.Type) {
		return nil
	}
	values := make([]float64, 0, len(col.Values))
	for _, v := range col.Values {
		switch val := v.(type) {
		case int64:
			values = append(values, float64(val))
		case float64:
			values = append(values, val)
		}
	}
	return values
}
