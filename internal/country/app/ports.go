package app

import (
	"context"

	"WorldRepublic/internal/country/domain"
)

// CountryRepo 是国家聚合的存取端口。
// Save 按 (id, version) 做 CAS：版本已前进时返回 domain.ErrVersionConflict。
type CountryRepo interface {
	Get(ctx context.Context, id string) (*domain.Country, error)
	List(ctx context.Context) ([]*domain.Country, error)
	Create(ctx context.Context, c *domain.Country) error
	Save(ctx context.Context, c *domain.Country) error
}

// IDGen 生成法律 id（雪花 id）。
type IDGen func() (int64, error)
