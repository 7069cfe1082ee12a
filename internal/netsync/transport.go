package netsync

import "errors"

// Transport errors. Senders back off on ErrUnavailable and
// ErrResourceExhausted instead of retrying.
var (
	ErrUnavailable       = errors.New("transport unavailable")
	ErrResourceExhausted = errors.New("transport resource exhausted")
	ErrClosed            = errors.New("transport closed")
)

// Transport moves encoded envelopes between a client and its lobby.
// Send must not block; delivery is best effort.
type Transport interface {
	Send(data []byte) error
	Messages() <-chan []byte
	Close() error
}

// shouldBackOff reports whether a send error calls for a quiet period.
func shouldBackOff(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrResourceExhausted)
}
