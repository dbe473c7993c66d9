// Package ingest turns raw CSV text into stored file documents: it parses the
// text, infers a type per column, computes structural metadata and numeric
// statistics, and renders the textual summary handed to the completion service.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

const utf8BOM = "\ufeff"

// missingValues are the cell spellings treated as missing, in addition to the empty cell
var missingValues = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "#NA": {}, "<NA>": {},
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Frame is a parsed CSV file with typed columns
type Frame struct {
	Columns []Column
	Rows    int
}

// Column is one typed column of a Frame.
// Values holds nil for missing cells and int64, float64, bool or string otherwise,
// depending on Type.
type Column struct {
	Name   string
	Type   string
	Values []any
}

// Parse reads comma-delimited CSV text with a header row.
// Every data row must have as many fields as the header.
// Errors wrap domain.ErrParse.
func Parse(raw string) (*Frame, error) {
	if !utf8.ValidString(raw) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", domain.ErrParse)
	}
	raw = strings.TrimPrefix(raw, utf8BOM)

	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = 0 // header fixes the width

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no columns to parse from file", domain.ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	names := dedupeColumns(header)
	cells := make([][]string, len(names))
	rows := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
		}
		for i, field := range record {
			cells[i] = append(cells[i], field)
		}
		rows++
	}

	frame := &Frame{Columns: make([]Column, len(names)), Rows: rows}
	for i, name := range names {
		frame.Columns[i] = buildColumn(name, cells[i], rows)
	}
	return frame, nil
}

// dedupeColumns names blank headers "Unnamed: <index>" and renames repeated
// headers "<name>.1", "<name>.2", ... so column names stay unique.
func dedupeColumns(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))

	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for used[candidate] {
			counts[name]++
			candidate = fmt.Sprintf("%s.%d", name, counts[name])
		}
		used[candidate] = true
		names[i] = candidate
	}
	return names
}

type cellKind int

const (
	kindMissing cellKind = iota
	kindInt
	kindFloat
	kindBool
	kindDatetime
	kindText
)

func classify(cell string) cellKind {
	s := strings.TrimSpace(cell)
	if s == "" {
		return kindMissing
	}
	if _, ok := missingValues[s]; ok {
		return kindMissing
	}
	if _, ok := parseBool(s); ok {
		return kindBool
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return kindInt
	}
	if _, ok := parseFloat(s); ok {
		return kindFloat
	}
	if _, ok := parseDatetime(s); ok {
		return kindDatetime
	}
	return kindText
}

// inferType picks the column type from the kinds of its cells.
// A column with rows but no values is float64, like a column of NaN.
func inferType(kinds []cellKind, rows int) string {
	var missing, ints, floats, bools, datetimes int
	for _, k := range kinds {
		switch k {
		case kindMissing:
			missing++
		case kindInt:
			ints++
		case kindFloat:
			floats++
		case kindBool:
			bools++
		case kindDatetime:
			datetimes++
		}
	}
	present := len(kinds) - missing

	switch {
	case rows == 0:
		return domain.TypeObject
	case present == 0:
		return domain.TypeFloat64
	case ints == present && missing == 0:
		return domain.TypeInt64
	case ints+floats == present:
		return domain.TypeFloat64
	case bools == present && missing == 0:
		return domain.TypeBool
	case datetimes == present:
		return domain.TypeDatetime
	default:
		return domain.TypeObject
	}
}

func buildColumn(name string, cells []string, rows int) Column {
	kinds := make([]cellKind, len(cells))
	for i, cell := range cells {
		kinds[i] = classify(cell)
	}

	col := Column{
		Name:   name,
		Type:   inferType(kinds, rows),
		Values: make([]any, len(cells)),
	}
	for i, cell := range cells {
		if kinds[i] == kindMissing {
			continue
		}
		col.Values[i] = convert(col.Type, cell)
	}
	return col
}

func convert(dtype, cell string) any {
	s := strings.TrimSpace(cell)
	switch dtype {
	case domain.TypeInt64:
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	case domain.TypeFloat64:
		v, _ := parseFloat(s)
		return v
	case domain.TypeBool:
		v, _ := parseBool(s)
		return v
	default:
		return cell
	}
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}
	return false, false
}

// parseFloat accepts finite decimal literals only; hex, digit separators,
// and Inf/NaN spellings are text.
func parseFloat(s string) (float64, bool) {
	if strings.ContainsAny(s, "xX_pP") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseDatetime(s string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
