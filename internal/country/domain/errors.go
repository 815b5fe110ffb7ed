package domain

import "errors"

var (
	ErrCountryNotFound      = errors.New("country not found")
	ErrVersionConflict      = errors.New("country version conflict")
	ErrNotLawmaker          = errors.New("actor may not propose laws")
	ErrNoRegions            = errors.New("country owns no regions")
	ErrRegionNotFound       = errors.New("region not found")
	ErrInsufficientTreasury = errors.New("insufficient treasury balance")
)
