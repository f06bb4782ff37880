package exception

import "github.com/yanun0323/errors"

// Connection errors
var (
	ErrConnectionClosed  = errors.New("connection: closed")
	ErrNotConnected      = errors.New("connection: not connected")
	ErrAlreadyConnecting = errors.New("connection: connect already in progress")
)
