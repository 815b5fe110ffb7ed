package app

import (
	"context"

	"WorldRepublic/internal/citizen/domain"
)

// CitizenRepo 是公民聚合的存取端口。
// Save 按 (id, version) 做 CAS：版本已前进时返回 domain.ErrVersionConflict。
type CitizenRepo interface {
	Get(ctx context.Context, id string) (*domain.Citizen, error)
	GetByUsername(ctx context.Context, username string) (*domain.Citizen, error)
	Create(ctx context.Context, c *domain.Citizen) error
	Save(ctx context.Context, c *domain.Citizen) error
}

// AlertPusher 把“有新告警”这一事实推给在线客户端（告警本体已入库）。
type AlertPusher interface {
	Push(citizenID string, alert any)
}

// CountryDirectory 提供注册时需要的母国信息。
type CountryDirectory interface {
	CurrencyOf(ctx context.Context, countryID string) (string, error)
	StartingRegionOf(ctx context.Context, countryID string) (string, error)
}

// IDGen 生成会话 id 等。
type IDGen func() (int64, error)
