package rmw

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrUnsupported     = errors.New("unsupported")
	ErrClosed          = errors.New("endpoint closed")
	ErrConcurrentWait  = errors.New("wait set already waiting")
	ErrTypeMismatch    = errors.New("type support does not match registered type")
)
