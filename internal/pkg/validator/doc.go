// Package validator validates request and dependency structs.
//
// Business code depends on the Validator interface; V10Validator backs it with
// go-playground/validator v10 and English messages keyed by snake_case field.
package validator

// Validator validates a struct, returning nil or a validation error.
type Validator interface {
	Validate(data any) error
}
