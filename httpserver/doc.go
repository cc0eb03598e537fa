// Package httpserver exposes the device lifecycle registry over HTTP.
//
// Mutating endpoints attribute their caller through the X-Ewaste-Identity
// header and delegate authorization entirely to the registry, so the
// server stays a thin boundary: decode, dispatch, map errors to status
// codes. Read endpoints are public. The server also hosts the usual
// operational endpoints (livez, readyz, drain, undrain, optional pprof)
// and a Prometheus metrics listener counting registry operations by
// outcome.
package httpserver
