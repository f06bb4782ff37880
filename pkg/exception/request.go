package exception

import "github.com/yanun0323/errors"

// Request/response correlation errors
var (
	ErrDuplicateRequestID = errors.New("request: duplicate id")
	ErrRequestTimeout     = errors.New("request: response deadline exceeded")
	ErrResponseRejected   = errors.New("request: upstream rejected the request")
)
