package domain

import "errors"

var (
	ErrCompanyNotFound   = errors.New("company not found")
	ErrVersionConflict   = errors.New("company version conflict")
	ErrNotCEO            = errors.New("actor is not the company CEO")
	ErrOfferNotFound     = errors.New("offer not found")
	ErrNoPositions       = errors.New("job offer has no open positions")
	ErrInsufficientFunds = errors.New("insufficient company funds")
	ErrInsufficientStock = errors.New("insufficient offer stock")
	ErrQuantityOverStock = errors.New("offer quantity exceeds unreserved inventory")
	ErrAlreadyEmployed   = errors.New("citizen already employed here")
)
