package relay

import "errors"

var (
	ErrBind            = errors.New("failed to bind listener")
	ErrWriteGreeting   = errors.New("failed to write greeting")
	ErrReadLine        = errors.New("failed to read line")
	ErrNoListeners     = errors.New("no listeners configured")
	ErrInvalidListener = errors.New("invalid listener definition")
	ErrInvalidConfig   = errors.New("invalid relay config")
	ErrHealthcheck     = errors.New("startup healthcheck failed")
)
