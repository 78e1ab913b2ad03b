package errors

type HTTPError struct {
	Code       int
	Message    string
	StatusCode int
	// Details is rendered as the "errors" member of the response envelope.
	Details any
}

func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// WithStatus returns a copy carrying an HTTP status code.
func (e HTTPError) WithStatus(statusCode int) *HTTPError {
	e.StatusCode = statusCode
	return &e
}

// WithDetails returns a copy carrying per-field details.
func (e HTTPError) WithDetails(details any) *HTTPError {
	e.Details = details
	return &e
}

func (e HTTPError) Error() string {
	return e.Message
}
