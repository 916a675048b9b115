package rabbitmq

import "errors"

// ErrDiscard marks a handler error for a message that must not be redelivered.
var ErrDiscard = errors.New("discard message")

func isDiscard(err error) bool {
	return errors.Is(err, ErrDiscard)
}
