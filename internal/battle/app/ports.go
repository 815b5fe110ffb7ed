package app

import (
	"context"
	"time"

	"WorldRepublic/internal/battle/domain"
)

// BattleRepo 是战斗聚合的存取端口。
type BattleRepo interface {
	Get(ctx context.Context, id string) (*domain.Battle, error)
	// ListDue 返回已到期且未分胜负的战斗。
	ListDue(ctx context.Context, now time.Time) ([]*domain.Battle, error)
	Create(ctx context.Context, b *domain.Battle) error
	// RecordHit 原子落一击：$inc 累计伤害（首击创建）+ 头插战报并截断；
	// 过滤条件只匹配未到期未分胜负的文档，不匹配时返回 domain.ErrBattleNotActive。
	RecordHit(ctx context.Context, battleID string, side domain.Side, hit Hit) error
}

// Hit 复用领域战报类型。
type Hit = domain.Hit

// FighterProfile 是出击校验与伤害计算需要的公民侧快照。
type FighterProfile struct {
	Country      string
	Level        int
	Strength     int
	MilitaryRank int
	Health       int
}

// FighterDirectory 是战斗上下文对公民侧的消费方接口。
type FighterDirectory interface {
	FighterProfile(ctx context.Context, citizenID string) (FighterProfile, error)
	// DeductFightCost 扣出击生命消耗；RefundFightCost 是它的补偿。
	DeductFightCost(ctx context.Context, citizenID string) error
	RefundFightCost(ctx context.Context, citizenID string) error
}

// CountryIntel 提供宿敌加成判定需要的国家情报。
type CountryIntel interface {
	RivalOf(ctx context.Context, countryID string) (string, error)
}

// Resolution 是一场战斗的结算结果。
type Resolution struct {
	BattleID    string
	Winner      string
	AttackerWon bool
	Region      string
	// Spoil 是攻下时在两国国库间移交的金币（round(守方金币/守方国土数)）。
	Spoil float64
}

// WarResolver 把一轮到期战斗放进同一个存储事务整体结算：
// 逐场判胜负、移交战利品、转移地区、把 winner 写一次。
// 中途任何一场失败整批回滚；批内已分胜负的战斗跳过，不计入返回。
type WarResolver interface {
	ResolveBatch(ctx context.Context, battleIDs []string) ([]Resolution, error)
}
