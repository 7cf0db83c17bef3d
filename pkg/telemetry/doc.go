// Package telemetry builds the zerolog logger and the prometheus collectors
// shared by the signing workflow, the verification engine, and the registry
// backends. Every component treats a nil *Metrics as "metrics disabled".
package telemetry
