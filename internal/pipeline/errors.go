package pipeline

import "errors"

var (
	ErrUnreadableImage    = errors.New("unreadable image")
	ErrDegenerateGeometry = errors.New("degenerate image geometry")
)
