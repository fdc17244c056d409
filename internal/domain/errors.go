package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrLockHeld      = errors.New("execution lock already held")
	ErrGuardBlocked  = errors.New("blocked by execution guard")
	ErrExposureLimit = errors.New("exposure ceiling exceeded")
	ErrOddsDrift     = errors.New("odds drifted beyond tolerance")
	ErrFeedClosed    = errors.New("feed closed")
	ErrContextDone   = errors.New("context cancelled")
)
