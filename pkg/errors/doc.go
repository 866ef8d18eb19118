// Package errors provides structured error types carrying the stable
// diagnostic codes reported by the irule CLI.
//
// Every fatal condition is returned as a *StructuredError whose Code is
// printed in front of the message, so that scripts can match on it:
//
//	E1001  input-parse failure
//	E1101  template not found
//	E1300  schema resource missing or malformed
//	E1400  structural validation failure (full findings report)
//	E1500  output write failure
//	E9999  anything else
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeSchemaLoad,
//	    "Schema processing issue",
//	    cause,
//	    map[string]any{
//	        "schema": id,
//	        "dir":    dir,
//	    },
//	)
//
// Format renders an error for the terminal at a given verbosity.
package errors
