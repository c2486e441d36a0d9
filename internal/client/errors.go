package client

import (
	"errors"
	"fmt"
)

// GenericFailureMessage is shown when the server reports a logical failure
// without saying why.
const GenericFailureMessage = "Something went wrong. Please try again."

// APIError is a logical failure: the server answered, possibly with HTTP 200,
// but flagged the operation as failed via ApiStatus:false.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return GenericFailureMessage
	}
	return e.Message
}

// TransportError wraps network-level failures and non-2xx responses that
// carried no envelope.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}

// ErrFileTooLarge rejects an upload before any network call is made.
var ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
