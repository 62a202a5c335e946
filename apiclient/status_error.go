package apiclient

import (
	"errors"
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// StatusError is returned for any non-2xx response. Validation failures from the
// service carry a JSON object mapping each invalid field name to a list of messages;
// that body is preserved here so tests can assert on it.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       ldvalue.Value
}

func (e *StatusError) Error() string {
	if e.Body.IsNull() {
		return fmt.Sprintf("%s %s returned HTTP %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s returned HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Body.JSONString())
}

// IsStatus reports whether err is a StatusError with the given status code.
func IsStatus(err error, statusCode int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == statusCode
}
