package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// RetryMessage is shown for every failure that is not a well-formed rejection.
const RetryMessage = "An unexpected error occurred. Please try again."

// ValidationError is raised locally and never reaches the backend.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

// AuthError is a well-formed rejection from the backend. Message is the
// server's own text and is shown verbatim.
type AuthError struct {
	Op      string
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s rejected (%d): %s", e.Op, e.Status, e.Message)
}

// NetworkError covers timeouts, unreachable hosts and any response the
// backend did not confirm.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// UserMessage picks the text a screen renders for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}
	var auth *AuthError
	if errors.As(err, &auth) && auth.Message != "" {
		return auth.Message
	}
	return RetryMessage
}
