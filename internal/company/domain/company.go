package domain

import (
	"math"
	"time"

	"WorldRepublic/internal/ledger"
)

// Employee 是公司雇员名册里的一条记录。
type Employee struct {
	UserID string  `bson:"user_id"`
	Title  string  `bson:"title"`
	Wage   float64 `bson:"wage"`
}

// JobOffer 是招聘报价；Positions 归零时报价删除。
type JobOffer struct {
	ID        string  `bson:"id"`
	Title     string  `bson:"title"`
	Wage      float64 `bson:"wage"`
	Positions int     `bson:"positions"`
}

// ProductOffer 是市场在售报价；Quantity 归零时报价删除。
// 计价货币固定为公司所在国货币。
type ProductOffer struct {
	ID       string  `bson:"id"`
	ItemID   string  `bson:"item_id"`
	Price    float64 `bson:"price"`
	Quantity int     `bson:"quantity"`
}

// StockItem 公司库存持有；同一库存内 item_id 唯一。
type StockItem struct {
	ItemID   string `bson:"item_id"`
	Quantity int    `bson:"quantity"`
}

// Company 是公司聚合根。
type Company struct {
	ID      string
	Version uint64
	Name    string
	CEO     string

	Country  string
	Region   string
	Currency string
	// Product 是 work 产出的物品 id。
	Product string

	Funds         ledger.Wallet
	Inventory     []StockItem
	Employees     []Employee
	JobOffers     []JobOffer
	ProductOffers []ProductOffer

	CreatedAt time.Time
}

func NewCompany(id, name, ceo, country, region, currency, product string, now time.Time) *Company {
	return &Company{
		ID:        id,
		Name:      name,
		CEO:       ceo,
		Country:   country,
		Region:    region,
		Currency:  currency,
		Product:   product,
		CreatedAt: now,
	}
}

func (c *Company) IsCEO(actorID string) bool {
	return actorID == c.CEO
}

// WorkYield 返回一次工作给公司带来的产出件数：round((health/100+1)×10)。
func WorkYield(health int) int {
	return int(math.Round((float64(health)/100 + 1) * 10))
}

// ---- 招聘 ----

func (c *Company) AddJobOffer(o JobOffer) {
	c.JobOffers = append(c.JobOffers, o)
}

func (c *Company) EditJobOffer(id, title string, wage float64, positions int) error {
	for i := range c.JobOffers {
		if c.JobOffers[i].ID == id {
			c.JobOffers[i].Title = title
			c.JobOffers[i].Wage = ledger.Round(wage)
			c.JobOffers[i].Positions = positions
			return nil
		}
	}
	return ErrOfferNotFound
}

func (c *Company) DeleteJobOffer(id string) error {
	for i := range c.JobOffers {
		if c.JobOffers[i].ID == id {
			c.JobOffers = append(c.JobOffers[:i], c.JobOffers[i+1:]...)
			return nil
		}
	}
	return ErrOfferNotFound
}

// TakeJob 消耗一个招聘名额并把公民写进雇员名册。
func (c *Company) TakeJob(offerID, citizenID string) (JobOffer, error) {
	for _, e := range c.Employees {
		if e.UserID == citizenID {
			return JobOffer{}, ErrAlreadyEmployed
		}
	}
	for i := range c.JobOffers {
		if c.JobOffers[i].ID != offerID {
			continue
		}
		offer := c.JobOffers[i]
		if offer.Positions <= 0 {
			return JobOffer{}, ErrNoPositions
		}
		c.JobOffers[i].Positions--
		if c.JobOffers[i].Positions == 0 {
			c.JobOffers = append(c.JobOffers[:i], c.JobOffers[i+1:]...)
		}
		c.Employees = append(c.Employees, Employee{UserID: citizenID, Title: offer.Title, Wage: offer.Wage})
		return offer, nil
	}
	return JobOffer{}, ErrOfferNotFound
}

// RestoreJobSlot 是 TakeJob 的补偿：名额退回、雇员移除。
func (c *Company) RestoreJobSlot(offer JobOffer, citizenID string) {
	for i := range c.Employees {
		if c.Employees[i].UserID == citizenID {
			c.Employees = append(c.Employees[:i], c.Employees[i+1:]...)
			break
		}
	}
	for i := range c.JobOffers {
		if c.JobOffers[i].ID == offer.ID {
			c.JobOffers[i].Positions++
			return
		}
	}
	offer.Positions = 1
	c.JobOffers = append(c.JobOffers, offer)
}

// ---- 市场 ----

// UnreservedStock 返回某物品未被在售报价占用的库存件数。
// excludeOfferID 用于编辑场景下排除报价自身。
func (c *Company) UnreservedStock(itemID, excludeOfferID string) int {
	stock := 0
	for _, s := range c.Inventory {
		if s.ItemID == itemID {
			stock = s.Quantity
		}
	}
	for _, o := range c.ProductOffers {
		if o.ItemID == itemID && o.ID != excludeOfferID {
			stock -= o.Quantity
		}
	}
	return stock
}

// AddProductOffer 上架报价；报价量不得超过未占用库存。
func (c *Company) AddProductOffer(o ProductOffer) error {
	if o.Quantity > c.UnreservedStock(o.ItemID, "") {
		return ErrQuantityOverStock
	}
	o.Price = ledger.Round(o.Price)
	c.ProductOffers = append(c.ProductOffers, o)
	return nil
}

func (c *Company) EditProductOffer(id string, price float64, quantity int) error {
	for i := range c.ProductOffers {
		if c.ProductOffers[i].ID != id {
			continue
		}
		if quantity > c.UnreservedStock(c.ProductOffers[i].ItemID, id) {
			return ErrQuantityOverStock
		}
		c.ProductOffers[i].Price = ledger.Round(price)
		c.ProductOffers[i].Quantity = quantity
		return nil
	}
	return ErrOfferNotFound
}

func (c *Company) DeleteProductOffer(id string) error {
	for i := range c.ProductOffers {
		if c.ProductOffers[i].ID == id {
			c.ProductOffers = append(c.ProductOffers[:i], c.ProductOffers[i+1:]...)
			return nil
		}
	}
	return ErrOfferNotFound
}

// Reserve 从报价和库存里扣走 quantity 件，返回成交额 round(q×price)。
// 报价量归零时删除报价。资金入账由 CreditFunds 单独完成。
func (c *Company) Reserve(offerID string, quantity int) (cost float64, itemID string, err error) {
	for i := range c.ProductOffers {
		if c.ProductOffers[i].ID != offerID {
			continue
		}
		o := c.ProductOffers[i]
		if quantity <= 0 || quantity > o.Quantity {
			return 0, "", ErrInsufficientStock
		}
		c.ProductOffers[i].Quantity -= quantity
		if c.ProductOffers[i].Quantity == 0 {
			c.ProductOffers = append(c.ProductOffers[:i], c.ProductOffers[i+1:]...)
		}
		if err := c.RemoveStock(o.ItemID, quantity); err != nil {
			return 0, "", err
		}
		return ledger.Round(float64(quantity) * o.Price), o.ItemID, nil
	}
	return 0, "", ErrOfferNotFound
}

// Restock 是 Reserve 的补偿：库存与报价量退回。
func (c *Company) Restock(offerID, itemID string, price float64, quantity int) {
	c.AddStock(itemID, quantity)
	for i := range c.ProductOffers {
		if c.ProductOffers[i].ID == offerID {
			c.ProductOffers[i].Quantity += quantity
			return
		}
	}
	c.ProductOffers = append(c.ProductOffers, ProductOffer{
		ID: offerID, ItemID: itemID, Price: price, Quantity: quantity,
	})
}

// ---- 资金与库存 ----

// PayWage 出账一次工资；资金不足时报错不变更。
func (c *Company) PayWage(wage float64) error {
	next, ok := c.Funds.Debit(c.Currency, wage)
	if !ok {
		return ErrInsufficientFunds
	}
	c.Funds = next
	return nil
}

func (c *Company) CreditFunds(amount float64) {
	c.Funds = c.Funds.Credit(c.Currency, amount)
}

func (c *Company) AddStock(itemID string, quantity int) {
	for i := range c.Inventory {
		if c.Inventory[i].ItemID == itemID {
			c.Inventory[i].Quantity += quantity
			return
		}
	}
	c.Inventory = append(c.Inventory, StockItem{ItemID: itemID, Quantity: quantity})
}

// RemoveStock 库存出库；数量归零时删除条目，不足时报错不变更。
func (c *Company) RemoveStock(itemID string, quantity int) error {
	for i := range c.Inventory {
		if c.Inventory[i].ItemID != itemID {
			continue
		}
		if c.Inventory[i].Quantity < quantity {
			return ErrInsufficientStock
		}
		c.Inventory[i].Quantity -= quantity
		if c.Inventory[i].Quantity == 0 {
			c.Inventory = append(c.Inventory[:i], c.Inventory[i+1:]...)
		}
		return nil
	}
	return ErrInsufficientStock
}

// WageOf 返回雇员的当前工资；不在名册时 ok=false。
func (c *Company) WageOf(citizenID string) (float64, bool) {
	for _, e := range c.Employees {
		if e.UserID == citizenID {
			return e.Wage, true
		}
	}
	return 0, false
}
