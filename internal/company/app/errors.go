package app

import "WorldRepublic/modules/kit/errx"

type Code = errx.Code

const (
	CodeCompanyNotFound Code = "COMPANY_NOT_FOUND"
	CodeOfferNotFound   Code = "OFFER_NOT_FOUND"
	CodeNotCEO          Code = "NOT_COMPANY_CEO"
	CodeAlreadyEmployed Code = "ALREADY_EMPLOYED"
)

// 常用错误定义（哨兵错误）：禁止直接修改其 data/cause（通过 WithData/WithCause 派生新对象）。
var (
	ErrCompanyNotFound = errx.New(errx.KindNotFound, CodeCompanyNotFound, "公司不存在")
	ErrOfferNotFound   = errx.New(errx.KindNotFound, CodeOfferNotFound, "报价不存在")
	ErrNotCEO          = errx.New(errx.KindUnauthorized, CodeNotCEO, "只有 CEO 可以管理报价")
	ErrAlreadyEmployed = errx.New(errx.KindConflict, CodeAlreadyEmployed, "已在该公司任职")
	ErrInvalidState    = errx.ErrInvalidState
	ErrInsufficient    = errx.ErrInsufficient
	ErrConflict        = errx.ErrConflict
	ErrUnavailable     = errx.ErrUnavailable
)
