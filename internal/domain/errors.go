package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrRateLimited         = errors.New("rate limited")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnsupportedExchange = errors.New("exchange not wired for this action")
	ErrPopupBlocked        = errors.New("popup blocked, please allow popups and retry")
	ErrNoQuote             = errors.New("no quote held")
	ErrInvalidDepositStep  = errors.New("action not valid in current deposit step")
	ErrFractionalUnits     = errors.New("amount does not convert to whole smallest units")
	ErrLockHeld            = errors.New("lock already held")
	ErrContextDone         = errors.New("context cancelled")
)
