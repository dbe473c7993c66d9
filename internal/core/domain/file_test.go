package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnStats_Complete(t *testing.T) {
	v := 1.0
	assert.True(t, ColumnStats{Mean: &v, Min: &v, Max: &v}.Complete())
	assert.False(t, ColumnStats{Mean: &v, Min: &v}.Complete())
	assert.False(t, ColumnStats{}.Complete())
}

func TestIsNumericType(t *testing.T) {
	assert.True(t, IsNumericType(TypeInt64))
	assert.True(t, IsNumericType(TypeFloat64))
	assert.False(t, IsNumericType(TypeBool))
	assert.False(t, IsNumericType(TypeDatetime))
	assert.False(t, IsNumericType(TypeObject))
}

func TestColumnStats_NullJSON(t *testing.T) {
	data, err := json.Marshal(ColumnStats{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"mean":null,"min":null,"max":null}`, string(data))
}

func TestMetadata_JSONFieldNames(t *testing.T) {
	m := Metadata{
		FileName:    "a.csv",
		UploadDate:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		RowCount:    1,
		ColumnCount: 1,
		Columns:     []string{"a"},
		DataTypes:   map[string]string{"a": TypeInt64},
		SampleRows:  []map[string]any{{"a": 1}},
		NumericColumnsStats: map[string]ColumnStats{
			"a": {},
		},
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"file_name", "upload_date", "row_count", "column_count", "columns", "data_types", "sample_rows", "numeric_columns_stats"} {
		assert.Contains(t, raw, key)
	}
}

func TestFileSummary_JSON(t *testing.T) {
	data, err := json.Marshal(FileSummary{ID: "abc", FileName: "a.csv"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"file_id":"abc","file_name":"a.csv"}`, string(data))
}

func TestMetadata_RestoreIntegers(t *testing.T) {
	m := Metadata{
		DataTypes: map[string]string{"n": TypeInt64, "x": TypeFloat64, "s": TypeObject},
		SampleRows: []map[string]any{
			{"n": float64(3), "x": 1.5, "s": "7"},
			{"n": nil, "x": float64(2), "s": "a"},
		},
	}

	m.RestoreIntegers()

	assert.Equal(t, int64(3), m.SampleRows[0]["n"])
	assert.Nil(t, m.SampleRows[1]["n"])
	assert.Equal(t, 2.0, m.SampleRows[1]["x"])
	assert.Equal(t, "7", m.SampleRows[0]["s"])
}

func TestMetadata_RestoreIntegers_LargeIntegers(t *testing.T) {
	var m Metadata
	dec := json.NewDecoder(strings.NewReader(
		`{"data_types":{"id":"int64","x":"float64"},"sample_rows":[{"id":9007199254740993,"x":1.25}]}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&m))

	m.RestoreIntegers()

	assert.Equal(t, int64(9007199254740993), m.SampleRows[0]["id"])
	assert.Equal(t, 1.25, m.SampleRows[0]["x"])
}

func TestFileDocument_Clone(t *testing.T) {
	mean := 2.0
	doc := &FileDocument{
		ID:       "abc",
		FileName: "a.csv",
		Metadata: Metadata{
			Columns:             []string{"n"},
			DataTypes:           map[string]string{"n": TypeInt64},
			SampleRows:          []map[string]any{{"n": int64(2)}},
			NumericColumnsStats: map[string]ColumnStats{"n": {Mean: &mean, Min: &mean, Max: &mean}},
		},
	}

	c := doc.Clone()
	require.Equal(t, doc, c)

	c.Metadata.Columns[0] = "changed"
	c.Metadata.DataTypes["n"] = TypeObject
	c.Metadata.SampleRows[0]["n"] = "changed"
	*c.Metadata.NumericColumnsStats["n"].Mean = 99

	assert.Equal(t, "n", doc.Metadata.Columns[0])
	assert.Equal(t, TypeInt64, doc.Metadata.DataTypes["n"])
	assert.Equal(t, int64(2), doc.Metadata.SampleRows[0]["n"])
	assert.Equal(t, 2.0, *doc.Metadata.NumericColumnsStats["n"].Mean)
}

func TestMetadata_Clone_Empty(t *testing.T) {
	c := Metadata{FileName: "a.csv"}.Clone()
	assert.Nil(t, c.Columns)
	assert.Nil(t, c.DataTypes)
	assert.Nil(t, c.SampleRows)
	assert.Nil(t, c.NumericColumnsStats)
}
