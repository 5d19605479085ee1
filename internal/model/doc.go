// Package model loads the KOI disposition classifier and runs inference on
// aligned feature tables. It is structured into small files by concern:
//
//   - artifact.go: the koi-model/v1 manifest and Load/Parse.
//   - model.go: the immutable Model handle returned by Load.
//   - classes.go: class values and the integer to label mapping.
//   - forest.go: tree ensembles with soft voting.
//   - logistic.go: multinomial and binary logistic regression.
//   - errors.go: error types and helpers (IsUnimputed, IsDependencyUnavailable).
//
// Build tags and runtimes:
//
//   - ONNX (optional):
//     Uses onnxruntime_go. Enabled with `-tags=onnx`.
//     Files: onnx.go. A stub that refuses to load ONNX manifests is compiled
//     when the tag is not set: onnx_stub.go.
//
// A Model is read-only after Load; callers share it across goroutines without
// locking.
package model
