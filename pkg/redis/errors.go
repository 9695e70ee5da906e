package redis

import "errors"

var (
	ErrInvalidConnectionURL = errors.New("redis: invalid connection URL")
	ErrNotReady             = errors.New("redis: not ready within the connect timeout")
	ErrHealthcheckFailed    = errors.New("redis: healthcheck failed")
)
