package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"koiserve/internal/features"
	"koiserve/pkg/types"
)

// FormatV1 identifies the JSON manifest format understood by Load.
const FormatV1 = "koi-model/v1"

// Classifier kinds.
const (
	KindForest   = "forest"
	KindLogistic = "logistic"
	KindONNX     = "onnx"
)

// ONNXParams points a manifest at an ONNX graph exported from the training pipeline.
type ONNXParams struct {
	// Path of the .onnx file, relative to the manifest when not absolute.
	Path string `json:"path"`
	// Library is the onnxruntime shared library; empty uses the platform default.
	Library           string `json:"library,omitempty"`
	Input             string `json:"input,omitempty"`
	LabelOutput       string `json:"label_output,omitempty"`
	ProbabilityOutput string `json:"probability_output,omitempty"`
}

// Artifact is the on-disk model manifest.
type Artifact struct {
	Format      string              `json:"format"`
	Version     string              `json:"version"`
	Kind        string              `json:"kind"`
	Features    []string            `json:"features,omitempty"`
	Classes     []Class             `json:"classes"`
	Means       []float64           `json:"means,omitempty"`
	Probability *bool               `json:"probability,omitempty"`
	Trees       []Tree              `json:"trees,omitempty"`
	Logistic    *LogisticParams     `json:"logistic,omitempty"`
	ONNX        *ONNXParams         `json:"onnx,omitempty"`
	Metrics     *types.ModelMetrics `json:"metrics,omitempty"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Parse(b, abs)
}

// Parse builds a Model from manifest bytes. path is recorded in the model
// info and anchors relative ONNX paths.
func Parse(data []byte, path string) (*Model, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, invalidf("decode: %v", err)
	}
	if a.Format != FormatV1 {
		return nil, invalidf("unsupported format %q (want %q)", a.Format, FormatV1)
	}
	if len(a.Features) > 0 && !features.SameColumns(a.Features) {
		return nil, invalidf("feature columns do not match the KOI column set")
	}
	if len(a.Classes) < 2 {
		return nil, invalidf("need at least 2 classes, got %d", len(a.Classes))
	}
	if len(a.Means) > 0 {
		if len(a.Means) != features.Count {
			return nil, invalidf("means: expected %d values, got %d", features.Count, len(a.Means))
		}
		for j, v := range a.Means {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, invalidf("means: column %s is not finite", features.Columns[j])
			}
		}
	}

	var (
		clf    Classifier
		closer func() error
		err    error
	)
	switch a.Kind {
	case KindForest:
		clf, err = newForest(a.Trees, len(a.Classes), features.Count)
	case KindLogistic:
		if a.Logistic == nil {
			return nil, invalidf("logistic model without coefficients")
		}
		clf, err = newLogistic(*a.Logistic, len(a.Classes), features.Count)
	case KindONNX:
		if a.ONNX == nil || a.ONNX.Path == "" {
			return nil, invalidf("onnx model without a graph path")
		}
		p := *a.ONNX
		if !filepath.IsAbs(p.Path) {
			p.Path = filepath.Join(filepath.Dir(path), p.Path)
		}
		clf, closer, err = loadONNX(p, a.Classes)
	default:
		return nil, invalidf("unknown kind %q", a.Kind)
	}
	if err != nil {
		return nil, err
	}
	if a.Probability != nil && !*a.Probability {
		clf = WithoutProbabilities(clf)
	}

	m := New(a.Version, a.Kind, clf, a.Classes)
	m.format = a.Format
	m.path = path
	m.closer = closer
	if len(a.Means) > 0 {
		m.means = append([]float64(nil), a.Means...)
	}
	if a.Metrics != nil {
		met := *a.Metrics
		if met.ModelVersion == "" {
			met.ModelVersion = a.Version
		}
		m.metrics = &met
	}
	return m, nil
}
