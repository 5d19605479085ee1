package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Scaler standardizes inputs before the linear model: (x - Mean) / Scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LogisticParams are the fitted coefficients of a logistic regression.
// Binary models carry one coefficient row; multinomial models one per class.
type LogisticParams struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
	Scaler    *Scaler     `json:"scaler,omitempty"`
}

// Logistic is a linear classifier with sigmoid (binary) or softmax outputs.
type Logistic struct {
	p        LogisticParams
	nClasses int
}

func newLogistic(p LogisticParams, nClasses, nFeatures int) (*Logistic, error) {
	rows := len(p.Coef)
	switch {
	case nClasses == 2 && rows == 1:
	case rows == nClasses:
	default:
		return nil, invalidf("logistic: %d coefficient rows for %d classes", rows, nClasses)
	}
	if len(p.Intercept) != rows {
		return nil, invalidf("logistic: %d intercepts for %d coefficient rows", len(p.Intercept), rows)
	}
	for i, c := range p.Coef {
		if len(c) != nFeatures {
			return nil, invalidf("logistic: coefficient row %d has %d values, want %d", i, len(c), nFeatures)
		}
	}
	if s := p.Scaler; s != nil {
		if len(s.Mean) != nFeatures || len(s.Scale) != nFeatures {
			return nil, invalidf("logistic: scaler expects %d features", nFeatures)
		}
	}
	return &Logistic{p: p, nClasses: nClasses}, nil
}

func (l *Logistic) scale(x []float64) []float64 {
	s := l.p.Scaler
	if s == nil {
		return x
	}
	out := make([]float64, len(x))
	for j, v := range x {
		d := s.Scale[j]
		if d == 0 {
			d = 1
		}
		out[j] = (v - s.Mean[j]) / d
	}
	return out
}

// PredictProba returns class probabilities for every row.
func (l *Logistic) PredictProba(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, x := range X {
		xs := l.scale(x)
		if len(l.p.Coef) == 1 {
			z := l.p.Intercept[0] + floats.Dot(l.p.Coef[0], xs)
			p1 := 1 / (1 + math.Exp(-z))
			out[i] = []float64{1 - p1, p1}
			continue
		}
		z := make([]float64, len(l.p.Coef))
		for k, c := range l.p.Coef {
			z[k] = l.p.Intercept[k] + floats.Dot(c, xs)
		}
		softmax(z)
		out[i] = z
	}
	return out, nil
}

// Predict returns the most probable class index per row.
func (l *Logistic) Predict(X [][]float64) ([]int, error) {
	probs, err := l.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return argmax(probs), nil
}

func softmax(z []float64) {
	m := floats.Max(z)
	for k := range z {
		z[k] = math.Exp(z[k] - m)
	}
	floats.Scale(1/floats.Sum(z), z)
}
