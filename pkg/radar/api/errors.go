package api

import (
	"encoding/json"
	"strings"
)

// FallbackMessage is used when a failed response carries no readable message.
const FallbackMessage = "An unknown error occurred"

// RequestFailure is the single error kind returned by Client. Error returns
// Message exactly; transport, HTTP and decoding failures all use it.
type RequestFailure struct {
	Message string
	// StatusCode is the HTTP status when a response was received, else 0.
	StatusCode int
	Err        error
}

func (e *RequestFailure) Error() string { return e.Message }

func (e *RequestFailure) Unwrap() error { return e.Err }

func failureFromBody(status int, body []byte) *RequestFailure {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil || strings.TrimSpace(er.Message) == "" {
		return &RequestFailure{Message: FallbackMessage, StatusCode: status}
	}
	return &RequestFailure{Message: er.Message, StatusCode: status}
}
