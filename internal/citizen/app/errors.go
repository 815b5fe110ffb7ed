package app

import "WorldRepublic/modules/kit/errx"

type Code = errx.Code

const (
	CodeCitizenNotFound Code = "CITIZEN_NOT_FOUND"
	CodeUsernameTaken   Code = "USERNAME_TAKEN"
	CodeCooldownActive  Code = "COOLDOWN_ACTIVE"
	CodeHealthFull      Code = "HEALTH_FULL"
	CodeFriendInvalid   Code = "FRIEND_REQUEST_INVALID"
	CodeThreadNotFound  Code = "THREAD_NOT_FOUND"
	CodeSubscription    Code = "SUBSCRIPTION_INVALID"
)

type Error = errx.Error

// 常用错误定义（哨兵错误）：禁止直接修改其 data/cause（通过 WithData/WithCause 派生新对象）。
var (
	ErrCitizenNotFound = errx.New(errx.KindNotFound, CodeCitizenNotFound, "公民不存在")
	ErrUsernameTaken   = errx.New(errx.KindConflict, CodeUsernameTaken, "用户名已被占用")
	ErrCooldownActive  = errx.New(errx.KindInvalidState, CodeCooldownActive, "冷却时间未到")
	ErrHealthFull      = errx.New(errx.KindInvalidState, CodeHealthFull, "生命值已满")
	ErrFriendInvalid   = errx.New(errx.KindConflict, CodeFriendInvalid, "好友请求不合法")
	ErrThreadNotFound  = errx.New(errx.KindNotFound, CodeThreadNotFound, "会话不存在")
	ErrSubscription    = errx.New(errx.KindConflict, CodeSubscription, "订阅状态冲突")
	ErrInsufficient    = errx.ErrInsufficient
	ErrConflict        = errx.ErrConflict
	ErrUnavailable     = errx.ErrUnavailable
)
