package transport

// BizCode 表示业务码的强类型封装，用于在日志上下文中减少误传风险。
type BizCode int

// 动作边界的业务码闭集，与 errx.Kind 一一对应。
const (
	OK            = 0
	InvalidParam  = 400
	Unauthorized  = 401
	NotFound      = 404
	Conflict      = 409
	InvalidState  = 422
	Insufficient  = 423
	UnknownAction = 460
	SystemError   = 500
	Unavailable   = 503
)
