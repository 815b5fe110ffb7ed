package ledger

import (
	"context"
	"time"

	"gorm.io/gorm"

	"WorldRepublic/internal/shared/utils"
)

// 流水类型闭集。
const (
	JournalWork     = "work"
	JournalPurchase = "purchase"
	JournalDonate   = "donate"
	JournalReward   = "reward"
	JournalLevelUp  = "level_up"
	JournalWarSpoil = "war_spoil"
)

// JournalEntry 是一笔已提交的资金移动（审计/对账用，追加不改）。
// 实体聚合都在 MongoDB；流水单独落在关系库。
type JournalEntry struct {
	ID        int64     `gorm:"primaryKey"`
	Kind      string    `gorm:"size:32;index"`
	FromOwner string    `gorm:"size:64;index"`
	ToOwner   string    `gorm:"size:64;index"`
	Currency  string    `gorm:"size:16"`
	Amount    float64
	Ref       string    `gorm:"size:64"`
	CreatedAt time.Time `gorm:"index"`
}

func (JournalEntry) TableName() string { return "ledger_journal" }

// Journal 是流水记录端口。资金移动提交后记录一条；
// 记录失败只降级告警，不回滚已提交的游戏状态。
type Journal interface {
	Record(ctx context.Context, e JournalEntry) error
}

type GormJournal struct {
	db *gorm.DB
}

func NewGormJournal(db *gorm.DB) *GormJournal {
	return &GormJournal{db: db}
}

// Migrate 建表（cmd 启动时调用一次）。
func (j *GormJournal) Migrate() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.AutoMigrate(&JournalEntry{})
}

func (j *GormJournal) Record(ctx context.Context, e JournalEntry) error {
	if j == nil || j.db == nil {
		return nil
	}
	if e.ID == 0 {
		id, err := utils.NextSnowflakeID()
		if err != nil {
			return err
		}
		e.ID = id
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return j.db.WithContext(ctx).Create(&e).Error
}

// NopJournal 给测试与单机模式使用。
type NopJournal struct{}

func (NopJournal) Record(ctx context.Context, e JournalEntry) error { return nil }
