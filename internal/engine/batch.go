package engine

import (
	"context"
	nethttp "net/http"
	"time"

	"WorldRepublic/internal/shared/transport"
	"WorldRepublic/modules/kit/logx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 定时批任务的三个面：战斗结算、选举收盘、法案清扫。
// 进程内 ticker 和 /internal/* cron 端点共用同一套执行逻辑，都幂等。
type (
	BattleResolver interface {
		ResolveDue(ctx context.Context) error
	}
	ElectionCloser interface {
		CloseDue(ctx context.Context) error
	}
	LawSweeper interface {
		SweepLaws(ctx context.Context) error
	}
)

type BatchRunner struct {
	battles   BattleResolver
	elections ElectionCloser
	laws      LawSweeper
	log       logx.Logger
}

func NewBatchRunner(battles BattleResolver, elections ElectionCloser, laws LawSweeper, log logx.Logger) *BatchRunner {
	return &BatchRunner{battles: battles, elections: elections, laws: laws, log: log}
}

// RunAll 跑一轮全部批任务（cmd/resolver 的 once 模式）。
func (b *BatchRunner) RunAll(ctx context.Context) {
	b.run(ctx, "battle_resolve", b.battles.ResolveDue)
	b.run(ctx, "election_close", b.elections.CloseDue)
	b.run(ctx, "law_sweep", b.laws.SweepLaws)
}

// Loop 按固定间隔循环跑批，直到 ctx 取消。
func (b *BatchRunner) Loop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.RunAll(ctx)
		}
	}
}

// ---- cron 端点（共享口令中间件之后）----

func (b *BatchRunner) Resolve(c *gin.Context) {
	b.trigger(c, "battle_resolve", b.battles.ResolveDue)
}

func (b *BatchRunner) CloseElections(c *gin.Context) {
	b.trigger(c, "election_close", b.elections.CloseDue)
}

func (b *BatchRunner) SweepLaws(c *gin.Context) {
	b.trigger(c, "law_sweep", b.laws.SweepLaws)
}

func (b *BatchRunner) trigger(c *gin.Context, name string, fn func(context.Context) error) {
	if err := fn(c.Request.Context()); err != nil {
		b.log.Error("batch trigger failed", zap.String("task", name), zap.Error(err))
		c.JSON(nethttp.StatusOK, Result{Success: false, Code: transport.Unavailable, Error: name + " failed"})
		return
	}
	c.JSON(nethttp.StatusOK, Result{Success: true, Code: transport.OK})
}

func (b *BatchRunner) run(ctx context.Context, name string, fn func(context.Context) error) {
	started := time.Now()
	if err := fn(ctx); err != nil {
		b.log.Error("batch task failed", zap.String("task", name), zap.Error(err))
		return
	}
	b.log.Info("batch task done", zap.String("task", name), zap.Duration("took", time.Since(started)))
}
