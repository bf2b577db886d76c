// Package validation validates request payloads with struct tags.
//
//	type startRequest struct {
//	    Supported *bool `json:"supported" validate:"required"`
//	}
//	if err := validation.Validate(req); err != nil { ... }
//
// Failures are returned as an INVALID_INPUT AppError listing each field.
package validation
