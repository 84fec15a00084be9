package accel

import "errors"

var (
	ErrNoPrimitives         = errors.New("accel: no primitives supplied")
	ErrInvalidLeafThreshold = errors.New("accel: leaf threshold must be at least 1")
	ErrUnknownSplitStrategy = errors.New("accel: unknown split strategy")
	ErrUnknownQueryMode     = errors.New("accel: unknown query mode")
)
