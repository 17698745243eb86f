package routing

import "errors"

var (
	ErrNotMiddleware = errors.New("routing: not a middleware")
	ErrNotController = errors.New("routing: not a controller")
	ErrInvalidRoute  = errors.New("routing: invalid route")
)
