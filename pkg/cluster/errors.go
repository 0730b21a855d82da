package cluster

import "errors"

var (
	ErrSubscribe       = errors.New("cluster: failed to subscribe")
	ErrTransportClosed = errors.New("cluster: transport subscription closed")
)
