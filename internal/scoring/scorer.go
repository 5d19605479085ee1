// Package scoring is the standalone scorer: it labels a single KOI record or
// every row of a CSV batch through the same invoker that serves /predict.
package scoring

import (
	"context"
	"io"

	"koiserve/internal/features"
	"koiserve/pkg/types"
)

// PredictionColumn is appended to every scored CSV row.
const PredictionColumn = "prediction"

// Invoker runs predictions; *predict.Service implements it.
type Invoker interface {
	Predict(ctx context.Context, rows []features.Row) (types.PredictResponse, error)
}

// Scorer wraps an Invoker with single-row and CSV entry points.
type Scorer struct {
	inv Invoker
}

func New(inv Invoker) *Scorer { return &Scorer{inv: inv} }

// PredictOne returns the label for a single record.
func (s *Scorer) PredictOne(ctx context.Context, row features.Row) (string, error) {
	resp, err := s.inv.Predict(ctx, []features.Row{row})
	if err != nil {
		return "", err
	}
	return resp.Predictions[0], nil
}

// ScoreCSV reads a CSV batch, keeps the rows matching where (all rows when
// empty), and returns them with a prediction column appended. Imputation runs
// over the kept rows as one batch.
func (s *Scorer) ScoreCSV(ctx context.Context, r io.Reader, where string) (types.ScoreResult, error) {
	filter, err := CompileFilter(where)
	if err != nil {
		return types.ScoreResult{}, err
	}
	t, err := readCSV(r)
	if err != nil {
		return types.ScoreResult{}, err
	}

	cols := append([]string(nil), t.header...)
	if !contains(cols, PredictionColumn) {
		cols = append(cols, PredictionColumn)
	}
	kept := make([]map[string]any, 0, len(t.rows))
	for _, row := range t.rows {
		ok, err := filter.Match(row)
		if err != nil {
			return types.ScoreResult{}, err
		}
		if ok {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return types.ScoreResult{Columns: cols, Rows: kept}, nil
	}

	in := make([]features.Row, len(kept))
	for i, row := range kept {
		in[i] = features.Row(row)
	}
	resp, err := s.inv.Predict(ctx, in)
	if err != nil {
		return types.ScoreResult{}, err
	}
	for i, row := range kept {
		row[PredictionColumn] = resp.Predictions[i]
	}
	return types.ScoreResult{Columns: cols, Rows: kept}, nil
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
