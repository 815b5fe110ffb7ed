package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"WorldRepublic/internal/shared/transport"
	"WorldRepublic/modules/kit/errx"
	"WorldRepublic/modules/kit/logx"

	"go.uber.org/zap"
)

const (
	// CodeBadPayload 表示动作 data 解码失败或缺必填字段。
	CodeBadPayload errx.Code = "BAD_PAYLOAD"
)

var errBadPayload = errx.New(errx.KindInvalidState, CodeBadPayload, "动作参数非法")

// ActorDirectory 校验动作发起方存在（校验顺序的第一步）。
type ActorDirectory interface {
	Exists(ctx context.Context, uid string) error
}

// Dispatcher 把动作路由到注册的处理器。
// 处理器表在构造时冻结：枚举内缺注册是启动错误，不是运行时 460。
type Dispatcher struct {
	handlers map[Action]HandlerFunc
	actors   ActorDirectory
	log      logx.Logger
}

func NewDispatcher(handlers map[Action]HandlerFunc, actors ActorDirectory, log logx.Logger) (*Dispatcher, error) {
	for _, a := range allActions {
		if handlers[a] == nil {
			return nil, fmt.Errorf("engine: action %q has no handler registered", a)
		}
	}
	for a := range handlers {
		if !knownAction(a) {
			return nil, fmt.Errorf("engine: handler registered for unknown action %q", a)
		}
	}
	return &Dispatcher{handlers: handlers, actors: actors, log: log}, nil
}

// Dispatch 执行一个动作：发起方存在性 → 路由 → 处理器。
// 返回的 Result 永远可用；错误只进日志，不再向上抛。
func (d *Dispatcher) Dispatch(ctx context.Context, uid string, action Action, data json.RawMessage) Result {
	handler, ok := d.handlers[action]
	if !ok {
		return failure(errx.ErrUnhandledAction.WithData("action", string(action)))
	}

	if err := d.actors.Exists(ctx, uid); err != nil {
		return failure(err)
	}

	payload, err := handler(ctx, uid, data)
	if err != nil {
		d.logFailure(ctx, uid, action, err)
		return failure(err)
	}
	return Result{Success: true, Code: transport.OK, Payload: payload}
}

func (d *Dispatcher) logFailure(ctx context.Context, uid string, action Action, err error) {
	log := d.log.WithContext(ctx)
	if errx.KindOf(err) == errx.KindInternal {
		log.Error("action failed",
			zap.String("uid", uid), zap.String("action", string(action)), zap.Error(err))
		return
	}
	log.Debug("action rejected",
		zap.String("uid", uid), zap.String("action", string(action)), zap.Error(err))
}

func knownAction(a Action) bool {
	for _, known := range allActions {
		if a == known {
			return true
		}
	}
	return false
}

// failure 把 errx 错误映射为失败结果：Kind 决定业务码，Code 文本对外透出。
func failure(err error) Result {
	var e *errx.Error
	code := transport.SystemError
	errText := string(errx.CodeInternal)

	if errors.As(err, &e) {
		errText = e.CodeText()
		switch {
		case e.Code() == errx.CodeUnhandledAction:
			code = transport.UnknownAction
		case e.Code() == CodeBadPayload:
			code = transport.InvalidParam
		case e.Code() == errx.CodeUnavailable:
			code = transport.Unavailable
		default:
			code = codeOfKind(e.Kind())
		}
	}
	return Result{Success: false, Code: code, Error: errText, Message: safeMsg(e)}
}

func codeOfKind(k errx.Kind) int {
	switch k {
	case errx.KindNotFound:
		return transport.NotFound
	case errx.KindUnauthorized:
		return transport.Unauthorized
	case errx.KindInvalidState:
		return transport.InvalidState
	case errx.KindInsufficient:
		return transport.Insufficient
	case errx.KindConflict:
		return transport.Conflict
	default:
		return transport.SystemError
	}
}

// safeMsg 对外只透出业务类错误的 msg；内部错误细节不出边界。
func safeMsg(e *errx.Error) string {
	if e == nil {
		return "internal error"
	}
	if e.Kind() == errx.KindInternal {
		return "internal error"
	}
	return e.Msg()
}
