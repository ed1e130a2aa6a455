package errortypes

import "net/http"

// Coder is implemented by errors that map onto an HTTP status.
type Coder interface {
	error
	Code() int
}

// BadInput should be used when the caller sent a missing or malformed
// parameter, path segment or body. The message is returned to the caller.
type BadInput struct {
	Message string
}

func (err *BadInput) Error() string {
	return err.Message
}

func (err *BadInput) Code() int {
	return http.StatusBadRequest
}

// NotFound should be used when the gateway has no record matching the request.
type NotFound struct {
	Message string
}

func (err *NotFound) Error() string {
	return err.Message
}

func (err *NotFound) Code() int {
	return http.StatusNotFound
}

// Upstream wraps a failed read or write against the creative store or the
// override store. Message is safe to return to callers; the wrapped error is
// only logged.
type Upstream struct {
	Message string
	Err     error
}

func (err *Upstream) Error() string {
	if err.Err == nil {
		return err.Message
	}
	return err.Message + ": " + err.Err.Error()
}

func (err *Upstream) Unwrap() error {
	return err.Err
}

func (err *Upstream) Code() int {
	return http.StatusInternalServerError
}
