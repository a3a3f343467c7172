// Package pipeline assembles the supported tutoring topologies:
//
//   - validation: START -> validate_request -> END
//   - enriched:   START -> validate_request -> (generate_queries | END), generate_queries -> END
//   - tutoring:   START -> tutor_response -> END
//
// All of them share the node handlers and the default reducer table.
package pipeline
