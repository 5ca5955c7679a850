package validator

// Validator validates a struct using its `validate` tags.
type Validator interface {
	Validate(data any) error
	// Var checks a single value against a tag expression such as "email".
	Var(value any, tag string) bool
}
