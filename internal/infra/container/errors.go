package container

import "errors"

var (
	ErrDuplicateRegistration = errors.New("container: duplicate registration")
	ErrUnregisteredType      = errors.New("container: unregistered type")
	ErrCycleDetected         = errors.New("container: cycle detected")
	ErrTypeMismatch          = errors.New("container: type mismatch")
	ErrResolutionInProgress  = errors.New("container: resolution in progress")
)
