package fhir

import (
	"errors"
	"fmt"
)

// ErrNoCredentials indicates that no credential source yielded a
// usable username and password.
var ErrNoCredentials = errors.New("no LOINC credentials found")

// AuthError indicates the service rejected the credentials.
type AuthError struct {
	Status int
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (HTTP %d): check LOINC username and password", e.Status)
}

// IsAuthError reports whether err is (or wraps) an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// ServiceError indicates a non-auth failure response from the service.
type ServiceError struct {
	Op     string
	Status int
	Msg    string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: service returned HTTP %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: service returned HTTP %d: %s", e.Op, e.Status, e.Msg)
}
