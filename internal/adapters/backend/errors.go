package backend

import "errors"

var (
	// ErrBackendStatus is returned when the backend answers with a non-2xx status.
	ErrBackendStatus = errors.New("backend returned an error status")
	// ErrDecodeResponse is returned when the backend body is not a chat response.
	ErrDecodeResponse = errors.New("backend response could not be decoded")
	// ErrNoBackendURL is returned when an HTTP client is built without a URL.
	ErrNoBackendURL = errors.New("backend url is empty")
)
