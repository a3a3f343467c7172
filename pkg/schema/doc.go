// Package schema provides a type-safe validation system for structured data.
//
// It defines a simple type system with built-in types (string, int, float, bool)
// and support for slices, nested objects, optional fields and custom validators.
// Schemas map field names to types, enabling runtime validation of the structured
// answers returned by reasoning providers.
//
// Basic usage:
//
//	verdict := schema.Schema{
//	    "is_specific":            schema.Bool(),
//	    "clarification_question": schema.String(),
//	    "extracted_requirements": schema.Object(schema.Schema{
//	        "intent": schema.Optional(schema.String()),
//	    }),
//	}
//
//	if err := schema.Validate(verdict, data); err != nil {
//	    // Handle validation errors
//	}
//
// A Schema marshals to a JSON Schema document, which providers with native
// structured output accept verbatim.
package schema
