package domain

import "errors"

var (
	ErrCitizenNotFound = errors.New("citizen not found")
	ErrVersionConflict = errors.New("citizen version conflict")
	ErrUsernameTaken   = errors.New("username taken")

	ErrCooldownActive = errors.New("cooldown not elapsed")
	ErrHealthFull     = errors.New("health already full")
	ErrHealthTooLow   = errors.New("health too low")
	ErrNoJob          = errors.New("citizen has no job")

	ErrInsufficientGold     = errors.New("insufficient gold")
	ErrInsufficientCurrency = errors.New("insufficient currency")
	ErrInsufficientItems    = errors.New("insufficient item quantity")

	ErrSelfFriend       = errors.New("cannot friend yourself")
	ErrDuplicateRequest = errors.New("friend request already pending")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrNoPendingRequest = errors.New("no pending friend request")

	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrNotSubscribed     = errors.New("not subscribed")

	ErrThreadNotFound = errors.New("thread not found")
)
