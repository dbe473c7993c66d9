package ingest

import (
	"math"
	"time"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// BuildMetadata computes the structural metadata and numeric statistics of a frame
func BuildMetadata(f *Frame, fileName string, uploadedAt time.Time) domain.Metadata {
	stats := make(map[string]domain.ColumnStats)
	for _, col := range f.Columns {
		if domain.IsNumericType(col.Type) {
			stats[col.Name] = Describe(numericValues(col))
		}
	}

	return domain.Metadata{
		FileName:            fileName,
		UploadDate:          uploadedAt.UTC(),
		RowCount:            f.Rows,
		ColumnCount:         len(f.Columns),
		Columns:             f.Names(),
		DataTypes:           f.DataTypes(),
		SampleRows:          f.Records(domain.SampleRowLimit),
		NumericColumnsStats: stats,
	}
}

// Describe returns the mean, minimum and maximum of values.
// All three are nil when values is empty; no statistic is ever NaN.
func Describe(values []float64) domain.ColumnStats {
	if len(values) == 0 {
		return domain.ColumnStats{}
	}

	// Running mean; dividing each term first keeps it finite near the float64 limits
	mean := 0.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, v := range values {
		n := float64(i + 1)
		mean += v/n - mean/n
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	mean = math.Max(lo, math.Min(hi, mean))

	return domain.ColumnStats{
		Mean: finite(mean),
		Min:  finite(lo),
		Max:  finite(hi),
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
