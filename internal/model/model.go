package model

import (
	"fmt"
	"math"

	"koiserve/internal/features"
	"koiserve/pkg/types"
)

// Classifier predicts a class index (into the model's classes) per row.
type Classifier interface {
	Predict(X [][]float64) ([]int, error)
}

// ProbabilityEstimator is implemented by classifiers that expose class probabilities.
type ProbabilityEstimator interface {
	PredictProba(X [][]float64) ([][]float64, error)
}

// labelOnly hides any probability capability of the wrapped classifier.
type labelOnly struct{ Classifier }

// Model is the loaded, immutable classifier plus its metadata.
type Model struct {
	version string
	kind    string
	format  string
	path    string
	clf     Classifier
	classes []Class
	labels  []string
	means   []float64
	metrics *types.ModelMetrics
	closer  func() error
}

// New wraps a classifier in a Model. It is mainly useful for tests and for
// embedding classifiers built in code.
func New(version, kind string, clf Classifier, classes []Class) *Model {
	return &Model{
		version: version,
		kind:    kind,
		clf:     clf,
		classes: append([]Class(nil), classes...),
		labels:  resolveLabels(classes),
	}
}

// WithoutProbabilities returns a classifier that only predicts labels.
func WithoutProbabilities(c Classifier) Classifier { return labelOnly{c} }

func (m *Model) Version() string { return m.version }
func (m *Model) Kind() string    { return m.kind }
func (m *Model) Path() string    { return m.path }

// Labels returns the readable label of every class, in class order.
func (m *Model) Labels() []string { return append([]string(nil), m.labels...) }

// Means returns training-time column means, or nil when the artifact has none.
func (m *Model) Means() []float64 { return append([]float64(nil), m.means...) }

// Metrics returns the evaluation metrics shipped with the artifact.
func (m *Model) Metrics() (types.ModelMetrics, bool) {
	if m.metrics == nil {
		return types.ModelMetrics{}, false
	}
	out := *m.metrics
	out.FeatureImportance = append([]types.FeatureImportance(nil), m.metrics.FeatureImportance...)
	return out, true
}

// HasProbabilities reports whether Predict returns class probabilities.
func (m *Model) HasProbabilities() bool {
	_, ok := m.clf.(ProbabilityEstimator)
	return ok
}

// Info summarizes the model for the API.
func (m *Model) Info() types.ModelInfo {
	return types.ModelInfo{
		Version:       m.version,
		Kind:          m.kind,
		Format:        m.format,
		Path:          m.path,
		Features:      append([]string(nil), features.Columns...),
		Classes:       m.Labels(),
		Probabilities: m.HasProbabilities(),
	}
}

// Predict labels every row of X and, when the classifier supports it, returns
// per-class probabilities. X must be aligned to features.Columns and contain
// no missing values.
func (m *Model) Predict(X [][]float64) ([]string, [][]float64, error) {
	for i, x := range X {
		if len(x) != features.Count {
			return nil, nil, fmt.Errorf("row %d: expected %d features, got %d", i, features.Count, len(x))
		}
		for j, v := range x {
			if math.IsNaN(v) {
				return nil, nil, ErrUnimputed(i, features.Columns[j])
			}
		}
	}
	idx, err := m.clf.Predict(X)
	if err != nil {
		return nil, nil, fmt.Errorf("predict: %w", err)
	}
	labels := make([]string, len(idx))
	for i, k := range idx {
		if k < 0 || k >= len(m.labels) {
			return nil, nil, fmt.Errorf("predict: class index %d out of range", k)
		}
		labels[i] = m.labels[k]
	}
	pe, ok := m.clf.(ProbabilityEstimator)
	if !ok {
		return labels, nil, nil
	}
	probs, err := pe.PredictProba(X)
	if err != nil {
		return nil, nil, fmt.Errorf("predict proba: %w", err)
	}
	return labels, probs, nil
}

// Close releases runtime resources held by the classifier.
func (m *Model) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer()
}
