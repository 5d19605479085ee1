package scoring

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// table is a decoded CSV: normalized header plus typed cells per row.
type table struct {
	header []string
	rows   []map[string]any
}

// readCSV decodes r as UTF-8 (a leading BOM is dropped) and types every cell:
// float64 when it parses, nil when empty, the trimmed string otherwise.
func readCSV(r io.Reader) (table, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = 0
	cr.TrimLeadingSpace = true

	rec, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table{}, csvError{errors.New("empty input, expected a header row")}
	}
	if err != nil {
		return table{}, csvError{err}
	}
	header := make([]string, len(rec))
	seen := make(map[string]bool, len(rec))
	for i, h := range rec {
		h = strings.TrimSpace(norm.NFKC.String(h))
		if h == "" {
			return table{}, csvError{fmt.Errorf("column %d has an empty name", i+1)}
		}
		if seen[h] {
			return table{}, csvError{fmt.Errorf("duplicate column %q", h)}
		}
		seen[h] = true
		header[i] = h
	}

	t := table{header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table{}, csvError{err}
		}
		row := make(map[string]any, len(header))
		for i, h := range header {
			row[h] = cell(rec[i])
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// naTokens are the cell spellings read as missing, matching the pandas defaults.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

func cell(s string) any {
	s = strings.TrimSpace(s)
	if _, ok := naTokens[s]; ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	switch {
	case err != nil || math.IsInf(f, 0):
		return s
	case math.IsNaN(f):
		return nil
	}
	return f
}

// WriteCSV renders a scored batch as CSV in column order.
func WriteCSV(w io.Writer, cols []string, rows []map[string]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	rec := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			rec[i] = format(r[c])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
