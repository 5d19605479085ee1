//go:build !onnx

package model

// This file is compiled when the 'onnx' build tag is NOT set, keeping default
// builds CGO-free. The real loader lives in onnx.go.

func loadONNX(p ONNXParams, classes []Class) (Classifier, func() error, error) {
	return nil, nil, ErrDependencyUnavailable("onnx support not built (missing 'onnx' build tag)")
}
