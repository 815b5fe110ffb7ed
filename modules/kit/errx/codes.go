package errx

// 这里定义“跨上下文统一”的错误码。
//
// 约束：
// - 引擎错误分类是闭集（见 Kind），动作边界按分类映射结果
// - 业务域错误码（例如 OFFER_NOT_FOUND）由各上下文自行定义，不允许在 kit 里集中

const (
	// CodeNotFound 表示实体缺失。
	CodeNotFound Code = "NOT_FOUND"
	// CodeUnauthorized 表示操作者缺少权限。
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeInvalidState 表示冷却/阶段/位置等状态不满足。
	CodeInvalidState Code = "INVALID_STATE"
	// CodeInsufficient 表示金币/货币/物品数量不足。
	CodeInsufficient Code = "INSUFFICIENT_RESOURCE"
	// CodeConflict 表示重复投票/重复参选/版本冲突等唯一性冲突。
	CodeConflict Code = "CONFLICT"
	// CodeInternal 表示服务内部不可预期错误（兜底）。
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable 表示依赖不可用（MongoDB/MySQL/网络异常等）。
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	// CodeUnhandledAction 表示动作不在闭集枚举内。
	CodeUnhandledAction Code = "UNHANDLED_ACTION"
)

// 统一哨兵错误（允许 WithData/WithCause 派生新对象）。
var (
	ErrNotFound        = New(KindNotFound, CodeNotFound, "实体不存在")
	ErrUnauthorized    = New(KindUnauthorized, CodeUnauthorized, "没有权限")
	ErrInvalidState    = New(KindInvalidState, CodeInvalidState, "状态不满足")
	ErrInsufficient    = New(KindInsufficient, CodeInsufficient, "资源不足")
	ErrConflict        = New(KindConflict, CodeConflict, "并发冲突")
	ErrInternal        = NewInternal(CodeInternal, "服务器内部错误")
	ErrUnavailable     = NewInternal(CodeUnavailable, "服务不可用")
	ErrUnhandledAction = New(KindInvalidState, CodeUnhandledAction, "unhandled action")
)
