package domain

import (
	"encoding/json"
	"time"
)

// Column data type labels. Numeric columns are Int64 and Float64.
const (
	TypeInt64    = "int64"
	TypeFloat64  = "float64"
	TypeBool     = "bool"
	TypeDatetime = "datetime"
	TypeObject   = "object"
)

// SampleRowLimit is the number of leading rows kept in Metadata.SampleRows
const SampleRowLimit = 5

// FileDocument is one uploaded CSV file with its derived metadata.
// Content and Metadata never change after creation.
type FileDocument struct {
	ID       string   `json:"id" bson:"-"`
	FileName string   `json:"file_name" bson:"file_name"`
	Content  string   `json:"content" bson:"content"`
	Metadata Metadata `json:"metadata" bson:"metadata"`
	Summary  string   `json:"summary" bson:"summary"`
}

// Metadata describes the structure and statistics of a parsed CSV file
type Metadata struct {
	FileName            string                 `json:"file_name" bson:"file_name"`
	UploadDate          time.Time              `json:"upload_date" bson:"upload_date"`
	RowCount            int                    `json:"row_count" bson:"row_count"`
	ColumnCount         int                    `json:"column_count" bson:"column_count"`
	Columns             []string               `json:"columns" bson:"columns"`
	DataTypes           map[string]string      `json:"data_types" bson:"data_types"`
	SampleRows          []map[string]any       `json:"sample_rows" bson:"sample_rows"`
	NumericColumnsStats map[string]ColumnStats `json:"numeric_columns_stats" bson:"numeric_columns_stats"`
}

// ColumnStats holds summary statistics of a numeric column.
// A nil field means the statistic is undefined (no non-missing values).
type ColumnStats struct {
	Mean *float64 `json:"mean" bson:"mean"`
	Min  *float64 `json:"min" bson:"min"`
	Max  *float64 `json:"max" bson:"max"`
}

// Complete reports whether all three statistics are defined
func (s ColumnStats) Complete() bool {
	return s.Mean != nil && s.Min != nil && s.Max != nil
}

// RestoreIntegers converts decoded JSON numbers in the sample rows back to
// int64 for int64 columns and float64 for every other column.
// Decoders should use json.Decoder.UseNumber so integers above 2^53 stay exact.
func (m *Metadata) RestoreIntegers() {
	for _, row := range m.SampleRows {
		for name, v := range row {
			isInt := m.DataTypes[name] == TypeInt64
			switch n := v.(type) {
			case json.Number:
				if isInt {
					if i, err := n.Int64(); err == nil {
						row[name] = i
						continue
					}
				}
				if f, err := n.Float64(); err == nil {
					row[name] = f
				}
			case float64:
				if isInt {
					row[name] = int64(n)
				}
			}
		}
	}
}

// Clone returns a deep copy of d
func (d *FileDocument) Clone() *FileDocument {
	c := *d
	c.Metadata = d.Metadata.Clone()
	return &c
}

// Clone returns a deep copy of m. Sample cells are scalars and are shared.
func (m Metadata) Clone() Metadata {
	c := m
	if m.Columns != nil {
		c.Columns = append([]string(nil), m.Columns...)
	}
	if m.DataTypes != nil {
		c.DataTypes = make(map[string]string, len(m.DataTypes))
		for k, v := range m.DataTypes {
			c.DataTypes[k] = v
		}
	}
	if m.SampleRows != nil {
		c.SampleRows = make([]map[string]any, len(m.SampleRows))
		for i, row := range m.SampleRows {
			if row == nil {
				continue
			}
			c.SampleRows[i] = make(map[string]any, len(row))
			for k, v := range row {
				c.SampleRows[i][k] = v
			}
		}
	}
	if m.NumericColumnsStats != nil {
		c.NumericColumnsStats = make(map[string]ColumnStats, len(m.NumericColumnsStats))
		for k, v := range m.NumericColumnsStats {
			c.NumericColumnsStats[k] = ColumnStats{
				Mean: cloneFloat(v.Mean),
				Min:  cloneFloat(v.Min),
				Max:  cloneFloat(v.Max),
			}
		}
	}
	return c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

// IsNumericType reports whether a data type label denotes a numeric column
func IsNumericType(t string) bool {
	return t == TypeInt64 || t == TypeFloat64
}

// FileSummary is the listing view of a stored file
type FileSummary struct {
	ID       string `json:"file_id"`
	FileName string `json:"file_name"`
}

// UploadSource names a CSV file on the server's disk or inside the project directory
type UploadSource struct {
	SourceType string `json:"source_type" validate:"required"`
	FilePath   string `json:"file_path"`
}

// Source types accepted by UploadSource
const (
	SourceTypeDisk    = "disk"
	SourceTypeProject = "project"
)
