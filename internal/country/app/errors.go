package app

import "WorldRepublic/modules/kit/errx"

type Code = errx.Code

const (
	CodeCountryNotFound Code = "COUNTRY_NOT_FOUND"
	CodeNotLawmaker     Code = "NOT_LAWMAKER"
)

var (
	ErrCountryNotFound = errx.New(errx.KindNotFound, CodeCountryNotFound, "国家不存在")
	ErrNotLawmaker     = errx.New(errx.KindUnauthorized, CodeNotLawmaker, "没有提案资格")
	ErrInvalidState    = errx.ErrInvalidState
	ErrConflict        = errx.ErrConflict
	ErrUnavailable     = errx.ErrUnavailable
)
