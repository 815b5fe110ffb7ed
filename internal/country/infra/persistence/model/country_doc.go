package model

import (
	"time"

	"WorldRepublic/internal/country/domain"
	"WorldRepublic/internal/ledger"
)

// CountryDoc 是国家聚合在 MongoDB 中的文档形态。
type CountryDoc struct {
	ID       string `bson:"_id"`
	Version  uint64 `bson:"version"`
	Name     string `bson:"name"`
	Currency string `bson:"currency"`
	Rival    string `bson:"rival,omitempty"`

	Treasury   map[string]float64 `bson:"treasury"`
	Regions    []domain.Region    `bson:"regions,omitempty"`
	Government domain.Government  `bson:"government"`

	PendingLaws []domain.Law `bson:"pending_laws,omitempty"`
	PastLaws    []domain.Law `bson:"past_laws,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
}

func CountryToDoc(c *domain.Country) CountryDoc {
	return CountryDoc{
		ID:          c.ID,
		Version:     c.Version,
		Name:        c.Name,
		Currency:    c.Currency,
		Rival:       c.Rival,
		Treasury:    c.Treasury,
		Regions:     c.Regions,
		Government:  c.Government,
		PendingLaws: c.PendingLaws,
		PastLaws:    c.PastLaws,
		CreatedAt:   c.CreatedAt,
	}
}

func DocToCountry(d CountryDoc) *domain.Country {
	treasury := ledger.Treasury(d.Treasury)
	if treasury == nil {
		treasury = ledger.Treasury{}
	}
	return &domain.Country{
		ID:          d.ID,
		Version:     d.Version,
		Name:        d.Name,
		Currency:    d.Currency,
		Rival:       d.Rival,
		Treasury:    treasury,
		Regions:     d.Regions,
		Government:  d.Government,
		PendingLaws: d.PendingLaws,
		PastLaws:    d.PastLaws,
		CreatedAt:   d.CreatedAt,
	}
}
