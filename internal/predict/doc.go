// Package predict is the inference invoker shared by the HTTP API and the
// standalone scorer. Files by concern:
//
//   - service.go: Config, Service construction and read-only accessors.
//   - predict.go: align, impute, cache lookup, chunked inference, recording.
//   - reports.go: model metrics and prediction log queries.
//   - metrics.go: Prometheus collectors for predictions, imputation, cache.
//   - errors.go: error helpers (IsStoreDisabled).
//   - context.go: request id propagation into the prediction log.
package predict
