package exception

import "github.com/yanun0323/errors"

// Data shape errors
var (
	ErrMalformedFrame  = errors.New("data: malformed inbound frame")
	ErrInvalidArgument = errors.New("data: invalid argument")
)
