// Package nodes holds the handlers of the tutoring pipeline: request
// validation, search query enrichment and tutor reply synthesis.
//
// Handlers only read the state and return the fields they produce. Failures
// from the capability adapter are returned unchanged so the runner can record
// them against the stage.
package nodes
