package types

// Error represents an error in the resea error space. Using a special type
// ensures that errors outside of this space are not accidentally introduced
type Error struct {
	string
}

// Error implements error.Error
func (e *Error) Error() string {
	return e.string
}

var (
	ErrUnknownProtocol       = &Error{"unknown protocol"}
	ErrUnknownProtocolOption = &Error{"unknown option for protocol"}
	ErrMalformedHeader       = &Error{"header is malformed"}
	ErrPortInUse             = &Error{"port is in use"}
	ErrNoPortAvailable       = &Error{"no ports are available"}
	ErrWouldBlock            = &Error{"operation would block"}
	ErrMessageTooLong        = &Error{"message too long"}
	ErrQueueFull             = &Error{"queue is full"}
	ErrBadLinkEndpoint       = &Error{"bad link layer endpoint"}
)
