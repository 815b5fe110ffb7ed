package model

import (
	"time"

	"WorldRepublic/internal/company/domain"
	"WorldRepublic/internal/ledger"
)

// CompanyDoc 是公司聚合在 MongoDB 中的文档形态。
type CompanyDoc struct {
	ID      string `bson:"_id"`
	Version uint64 `bson:"version"`
	Name    string `bson:"name"`
	CEO     string `bson:"ceo"`

	Country  string `bson:"country"`
	Region   string `bson:"region"`
	Currency string `bson:"currency"`
	Product  string `bson:"product"`

	Funds         []ledger.Entry        `bson:"funds"`
	Inventory     []domain.StockItem    `bson:"inventory,omitempty"`
	Employees     []domain.Employee     `bson:"employees,omitempty"`
	JobOffers     []domain.JobOffer     `bson:"job_offers,omitempty"`
	ProductOffers []domain.ProductOffer `bson:"product_offers,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
}

func CompanyToDoc(c *domain.Company) CompanyDoc {
	return CompanyDoc{
		ID:            c.ID,
		Version:       c.Version,
		Name:          c.Name,
		CEO:           c.CEO,
		Country:       c.Country,
		Region:        c.Region,
		Currency:      c.Currency,
		Product:       c.Product,
		Funds:         c.Funds,
		Inventory:     c.Inventory,
		Employees:     c.Employees,
		JobOffers:     c.JobOffers,
		ProductOffers: c.ProductOffers,
		CreatedAt:     c.CreatedAt,
	}
}

func DocToCompany(d CompanyDoc) *domain.Company {
	return &domain.Company{
		ID:            d.ID,
		Version:       d.Version,
		Name:          d.Name,
		CEO:           d.CEO,
		Country:       d.Country,
		Region:        d.Region,
		Currency:      d.Currency,
		Product:       d.Product,
		Funds:         d.Funds,
		Inventory:     d.Inventory,
		Employees:     d.Employees,
		JobOffers:     d.JobOffers,
		ProductOffers: d.ProductOffers,
		CreatedAt:     d.CreatedAt,
	}
}
