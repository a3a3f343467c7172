/*
Package capability invokes external reasoning services.

An Adapter receives role-tagged prompt segments and an optional output schema.
In structured mode the answer is decoded and validated against the schema; an
invalid answer is retried up to Options.MaxRetries more times. In free-text
mode the raw answer is returned. Every attempt makes exactly one Provider
call, bounded by Options.Timeout.

When every attempt fails, Invoke returns a *Failure whose Kind is one of
timeout, transport or schema_invalid.
*/
package capability
