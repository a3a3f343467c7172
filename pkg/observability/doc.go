/*
Package observability provides monitoring for the tutoring pipeline.

Metrics exposes Prometheus collectors fed by the runner lifecycle hooks
(runs, node executions, failures by stage and kind) and by a capability
middleware timing every outbound provider call. LogHooks turns the same
events into structured log records.
*/
package observability
