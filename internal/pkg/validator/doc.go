// Package validator checks request structs against their `validate` tags and
// reports failures as field to message maps.
package validator
