package clients

import (
	"errors"
	"fmt"
)

// TransportError marks a channel-level RPC failure: an unreachable
// endpoint, a timeout, or a response body that is not even a valid
// envelope. The reconciler abandons the whole cycle on a transport
// error; any other error is scoped to the single item being processed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error in %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
