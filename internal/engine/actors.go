package engine

import (
	"context"
	"encoding/json"
	"time"

	"WorldRepublic/internal/shared/transport"
	"WorldRepublic/modules/kit/errx"

	"github.com/asynkron/protoactor-go/actor"
)

const (
	defaultAskTimeout = 3 * time.Second
	// 闲置这么久的公民 actor 会被回收，下一个动作再按需重建。
	citizenIdleTimeout = 10 * time.Minute
)

// actionMsg 是投给公民 actor 的一次动作请求；回包是 *Result。
type actionMsg struct {
	uid    string
	action Action
	data   json.RawMessage
}

// ManagerActor 按公民 id 懒生成子 actor，并把动作转给它。
// 同一公民的动作进同一个邮箱顺序执行，天然消掉同公民的写竞争。
type ManagerActor struct {
	dispatcher    *Dispatcher
	citizenActors map[string]*actor.PID
	citizenOf     map[string]string // pid.Id -> citizen id
}

func NewManagerActor(dispatcher *Dispatcher) *ManagerActor {
	return &ManagerActor{
		dispatcher:    dispatcher,
		citizenActors: make(map[string]*actor.PID),
		citizenOf:     make(map[string]string),
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actionMsg:
		if msg.uid == "" {
			res := failure(errx.ErrNotFound.WithData("reason", "empty uid"))
			ctx.Respond(&res)
			return
		}
		ctx.Forward(m.getOrSpawn(ctx, msg.uid))
	case *actor.Terminated:
		// 子 actor 闲置退出后摘掉映射，避免往死信箱转发
		if uid, ok := m.citizenOf[msg.Who.GetId()]; ok {
			delete(m.citizenActors, uid)
			delete(m.citizenOf, msg.Who.GetId())
		}
	}
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, uid string) *actor.PID {
	if pid, ok := m.citizenActors[uid]; ok && pid != nil {
		return pid
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewCitizenActor(uid, m.dispatcher)
	})
	pid := ctx.Spawn(props)
	ctx.Watch(pid)
	m.citizenActors[uid] = pid
	m.citizenOf[pid.GetId()] = uid
	return pid
}

// CitizenActor 串行执行一个公民的全部动作。
type CitizenActor struct {
	uid        string
	dispatcher *Dispatcher
}

func NewCitizenActor(uid string, dispatcher *Dispatcher) *CitizenActor {
	return &CitizenActor{uid: uid, dispatcher: dispatcher}
}

func (c *CitizenActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		ctx.SetReceiveTimeout(citizenIdleTimeout)
	case *actor.ReceiveTimeout:
		ctx.Stop(ctx.Self())
	case *actionMsg:
		res := c.dispatcher.Dispatch(context.Background(), c.uid, msg.action, msg.data)
		ctx.Respond(&res)
	}
}

// Runtime 是 actor 体系的外部入口：HTTP 层只看得到 Execute。
type Runtime struct {
	system  *actor.ActorSystem
	root    *actor.RootContext
	manager *actor.PID
	timeout time.Duration
}

func NewRuntime(dispatcher *Dispatcher, askTimeout time.Duration) *Runtime {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}

	system := actor.NewActorSystem()
	root := system.Root
	manager := root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewManagerActor(dispatcher)
	}))

	return &Runtime{
		system:  system,
		root:    root,
		manager: manager,
		timeout: askTimeout,
	}
}

// Execute 把动作投进该公民的邮箱并等待结果。
// actor 层面的失败（超时、回包类型非法）统一映射为不可用。
func (r *Runtime) Execute(ctx context.Context, uid string, action Action, data json.RawMessage) Result {
	if r == nil || r.root == nil {
		return failure(errx.ErrUnavailable.WithData("reason", "actor runtime not started"))
	}

	future := r.root.RequestFuture(r.manager, &actionMsg{uid: uid, action: action, data: data}, r.timeoutFrom(ctx))
	raw, err := future.Result()
	if err != nil {
		return failure(errx.ErrUnavailable.WithCause(err))
	}

	res, ok := raw.(*Result)
	if !ok || res == nil {
		return Result{Success: false, Code: transport.SystemError, Error: string(errx.CodeInternal), Message: "internal error"}
	}
	return *res
}

func (r *Runtime) timeoutFrom(ctx context.Context) time.Duration {
	if ctx == nil {
		return r.timeout
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		return time.Millisecond
	}
	if remain < r.timeout {
		return remain
	}
	return r.timeout
}

func (r *Runtime) Shutdown() {
	if r == nil {
		return
	}
	if r.root != nil && r.manager != nil {
		r.root.Stop(r.manager)
	}
	if r.system != nil {
		r.system.Shutdown()
	}
}
