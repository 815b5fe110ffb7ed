package app

import (
	"context"
	"time"

	"WorldRepublic/internal/company/domain"
)

// CompanyRepo 是公司聚合的存取端口。
// Save 按 (id, version) 做 CAS：版本已前进时返回 domain.ErrVersionConflict。
type CompanyRepo interface {
	Get(ctx context.Context, id string) (*domain.Company, error)
	Create(ctx context.Context, c *domain.Company) error
	Save(ctx context.Context, c *domain.Company) error
}

// WorkProfile 是工作结算需要的公民侧快照（只读）。
type WorkProfile struct {
	Employer string
	Wage     float64
	Health   int
	CanWork  time.Time
}

// CitizenGateway 是公司上下文对公民侧的消费方接口：
// 由接线层用公民服务适配实现，公司上下文不直接依赖公民聚合。
type CitizenGateway interface {
	// WorkProfile 读取雇佣关系快照；无业时 Employer 为空串。
	WorkProfile(ctx context.Context, citizenID string) (WorkProfile, error)
	// Paycheck 公民侧结薪：入账工资、经验 +1、推工作冷却。
	Paycheck(ctx context.Context, citizenID, currency string) error
	// BindJob 把公民的工作指向本公司。
	BindJob(ctx context.Context, citizenID, companyID, title string, wage float64) error
	// PayAndReceive 买家侧一次落账：扣货币并入物品（原子）。
	PayAndReceive(ctx context.Context, citizenID, currency string, cost float64, itemID string, quantity int) error
}

// OfferIDGen 生成报价 id（12 位不透明 token）。
type OfferIDGen func() string
