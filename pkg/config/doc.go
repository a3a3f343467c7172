// Package config holds the run configuration handed to pipeline nodes and the
// application settings read by the CLI.
//
// Run configuration is a flat set of recognized keys (models, temperatures,
// retry and timeout budgets). Unrecognized keys are ignored and missing keys
// are defaulted, so callers may pass partial maps.
package config
