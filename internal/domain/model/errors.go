package model

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed input caught before any remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// RemoteError wraps a failure returned by the remote platform.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a lookup that returned no result where one was required.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// SchemaError reports a document that does not match the expected shape.
type SchemaError struct {
	Collection string
	ID         string
	Field      string
	Reason     string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed %s document %q: %s", e.Collection, e.ID, e.Reason)
	}
	return fmt.Sprintf("malformed %s document %q: field %s %s", e.Collection, e.ID, e.Field, e.Reason)
}

// Required builds the ValidationError used for empty required inputs.
func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsRemote(err error) bool {
	var target *RemoteError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsSchema(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}
