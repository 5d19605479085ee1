package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Imputation strategies accepted by NewImputer.
const (
	StrategyBatchMean = "batch-mean"
	StrategyModelMean = "model-mean"
)

// Report counts imputed cells per column, indexed like Columns.
type Report struct {
	Imputed []int
}

// Total returns the number of imputed cells.
func (r Report) Total() int {
	n := 0
	for _, c := range r.Imputed {
		n += c
	}
	return n
}

// Imputer fills NaN cells of an aligned table in place.
type Imputer interface {
	Impute(t Table) Report
	Name() string
}

// NewImputer returns the imputer for strategy. means holds training-time
// column means and may be nil, in which case model-mean degrades to batch-mean.
func NewImputer(strategy string, means []float64) (Imputer, error) {
	switch strategy {
	case "", StrategyBatchMean:
		return BatchMean{}, nil
	case StrategyModelMean:
		if len(means) == 0 {
			return BatchMean{}, nil
		}
		if len(means) != Count {
			return nil, fmt.Errorf("model means: expected %d values, got %d", Count, len(means))
		}
		return ModelMean{Means: append([]float64(nil), means...)}, nil
	default:
		return nil, fmt.Errorf("unknown imputation strategy: %s", strategy)
	}
}

// BatchMean fills each missing cell with the mean of its column over the rows
// of the same batch that have it. A column missing from every row stays NaN,
// so a single row with an absent column is left unimputed.
type BatchMean struct{}

func (BatchMean) Name() string { return StrategyBatchMean }

func (BatchMean) Impute(t Table) Report {
	rep := Report{Imputed: make([]int, Count)}
	present := make([]float64, 0, t.Len())
	for j := 0; j < Count; j++ {
		present = present[:0]
		for _, r := range t.Rows {
			if !math.IsNaN(r[j]) {
				present = append(present, r[j])
			}
		}
		if len(present) == 0 || len(present) == t.Len() {
			continue
		}
		mean := stat.Mean(present, nil)
		for _, r := range t.Rows {
			if math.IsNaN(r[j]) {
				r[j] = mean
				rep.Imputed[j]++
			}
		}
	}
	return rep
}

// ModelMean fills missing cells with fixed training-time means.
type ModelMean struct {
	Means []float64
}

func (ModelMean) Name() string { return StrategyModelMean }

func (m ModelMean) Impute(t Table) Report {
	rep := Report{Imputed: make([]int, Count)}
	for _, r := range t.Rows {
		for j, v := range r {
			if math.IsNaN(v) && !math.IsNaN(m.Means[j]) {
				r[j] = m.Means[j]
				rep.Imputed[j]++
			}
		}
	}
	return rep
}
