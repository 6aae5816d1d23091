package eventstream

import "errors"

// ErrNilEvent indicates a nil turn event payload was provided to a publisher.
var ErrNilEvent = errors.New("nil turn event")
