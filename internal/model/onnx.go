//go:build onnx

package model

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"koiserve/internal/features"
)

var ortEnv struct {
	once sync.Once
	err  error
}

func initRuntime(lib string) error {
	ortEnv.once.Do(func() {
		if lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// onnxClassifier runs a classifier graph exported with a float input of
// shape [N, features] and an int64 label output, plus an optional float
// probability output of shape [N, classes].
type onnxClassifier struct {
	mu       sync.Mutex
	session  *ort.DynamicAdvancedSession
	classes  []Class
	hasProba bool
}

func loadONNX(p ONNXParams, classes []Class) (Classifier, func() error, error) {
	if err := initRuntime(p.Library); err != nil {
		return nil, nil, ErrDependencyUnavailable(fmt.Sprintf("onnxruntime init: %v", err))
	}
	input := p.Input
	if input == "" {
		input = "float_input"
	}
	labelOut := p.LabelOutput
	if labelOut == "" {
		labelOut = "label"
	}
	outputs := []string{labelOut}
	if p.ProbabilityOutput != "" {
		outputs = append(outputs, p.ProbabilityOutput)
	}
	sess, err := ort.NewDynamicAdvancedSession(p.Path, []string{input}, outputs, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("onnx session %s: %w", p.Path, err)
	}
	c := &onnxClassifier{session: sess, classes: classes, hasProba: p.ProbabilityOutput != ""}
	if !c.hasProba {
		return WithoutProbabilities(c), c.Close, nil
	}
	return c, c.Close, nil
}

func (c *onnxClassifier) run(X [][]float64) ([]int64, []float32, error) {
	n := int64(len(X))
	flat := make([]float32, 0, len(X)*features.Count)
	for _, x := range X {
		for _, v := range x {
			flat = append(flat, float32(v))
		}
	}
	in, err := ort.NewTensor(ort.NewShape(n, int64(features.Count)), flat)
	if err != nil {
		return nil, nil, err
	}
	defer in.Destroy()
	lab, err := ort.NewEmptyTensor[int64](ort.NewShape(n))
	if err != nil {
		return nil, nil, err
	}
	defer lab.Destroy()
	outs := []ort.Value{lab}
	var prob *ort.Tensor[float32]
	if c.hasProba {
		prob, err = ort.NewEmptyTensor[float32](ort.NewShape(n, int64(len(c.classes))))
		if err != nil {
			return nil, nil, err
		}
		defer prob.Destroy()
		outs = append(outs, prob)
	}

	c.mu.Lock()
	err = c.session.Run([]ort.Value{in}, outs)
	c.mu.Unlock()
	if err != nil {
		return nil, nil, fmt.Errorf("onnx run: %w", err)
	}
	labels := append([]int64(nil), lab.GetData()...)
	var probs []float32
	if prob != nil {
		probs = append([]float32(nil), prob.GetData()...)
	}
	return labels, probs, nil
}

func (c *onnxClassifier) Predict(X [][]float64) ([]int, error) {
	labels, _, err := c.run(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(labels))
	for i, v := range labels {
		k := c.classIndex(v)
		if k < 0 {
			return nil, fmt.Errorf("onnx label %d is not a known class", v)
		}
		out[i] = k
	}
	return out, nil
}

func (c *onnxClassifier) PredictProba(X [][]float64) ([][]float64, error) {
	_, flat, err := c.run(X)
	if err != nil {
		return nil, err
	}
	k := len(c.classes)
	out := make([][]float64, len(X))
	for i := range out {
		row := make([]float64, k)
		for j := 0; j < k; j++ {
			row[j] = float64(flat[i*k+j])
		}
		out[i] = row
	}
	return out, nil
}

func (c *onnxClassifier) classIndex(v int64) int {
	for i, cl := range c.classes {
		if n, ok := cl.Int(); ok && n == v {
			return i
		}
	}
	return -1
}

func (c *onnxClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Destroy()
	c.session = nil
	return err
}
