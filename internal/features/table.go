package features

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Row is one raw input record: column name to value, as decoded from JSON or CSV.
type Row map[string]any

// Table is a rectangular batch aligned to Columns. Missing values are NaN.
type Table struct {
	Rows [][]float64
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// FirstMissing returns the first (row, column) still holding NaN.
func (t Table) FirstMissing() (row, col int, ok bool) {
	for i, r := range t.Rows {
		for j, v := range r {
			if math.IsNaN(v) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// Align builds a Table from raw rows. Columns outside Columns are dropped,
// absent columns become NaN. Values must be numbers, numeric strings, null or
// empty strings; anything else fails the whole batch.
func Align(rows []Row) (Table, error) {
	if len(rows) == 0 {
		return Table{}, ErrNoRows
	}
	t := Table{Rows: make([][]float64, len(rows))}
	for i, raw := range rows {
		vec := make([]float64, Count)
		for j := range vec {
			vec[j] = math.NaN()
		}
		for name, v := range raw {
			j, ok := Index(name)
			if !ok {
				continue
			}
			f, err := toFloat(v)
			if err != nil {
				return Table{}, valueError{row: i, column: name, value: v}
			}
			vec[j] = f
		}
		t.Rows[i] = vec
	}
	return t, nil
}

// AsRow converts an aligned vector back to a column mapping.
func AsRow(vec []float64) map[string]float64 {
	out := make(map[string]float64, len(vec))
	for j, v := range vec {
		if j < len(Columns) {
			out[Columns[j]] = v
		}
	}
	return out
}

func toFloat(v any) (float64, error) {
	f, err := parseFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}

func parseFloat(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return math.NaN(), nil
		}
		return strconv.ParseFloat(s, 64)
	default:
		return 0, strconv.ErrSyntax
	}
}
