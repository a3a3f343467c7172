// Package memory provides an in-process session store for development and tests.
// Sessions are lost when the process exits.
package memory
