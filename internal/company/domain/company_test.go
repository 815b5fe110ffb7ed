package domain

import (
	"errors"
	"testing"
	"time"
)

func newTestCompany() *Company {
	return NewCompany("co1", "Acme Bread", "ceo1", "usa", "usa-capital", "USD", "bread",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestWorkYield_按生命值取整(t *testing.T) {
	cases := []struct{ health, want int }{
		{100, 20},
		{50, 15},
		{73, 17}, // (0.73+1)*10 = 17.3 → 17
		{75, 18}, // 17.5 → 18（half away from zero）
		{10, 11},
	}
	for _, tc := range cases {
		if got := WorkYield(tc.health); got != tc.want {
			t.Fatalf("WorkYield(%d)=%d, want %d", tc.health, got, tc.want)
		}
	}
}

func TestProductOffer_报价量不得超过未占用库存(t *testing.T) {
	c := newTestCompany()
	c.AddStock("bread", 10)

	if err := c.AddProductOffer(ProductOffer{ID: "o1", ItemID: "bread", Price: 1.5, Quantity: 6}); err != nil {
		t.Fatalf("err=%v", err)
	}
	// 剩余未占用 4 件
	err := c.AddProductOffer(ProductOffer{ID: "o2", ItemID: "bread", Price: 2, Quantity: 5})
	if !errors.Is(err, ErrQuantityOverStock) {
		t.Fatalf("超量上架应失败, got=%v", err)
	}
	if err := c.AddProductOffer(ProductOffer{ID: "o2", ItemID: "bread", Price: 2, Quantity: 4}); err != nil {
		t.Fatalf("err=%v", err)
	}

	// 编辑时排除报价自身的占用
	if err := c.EditProductOffer("o1", 1.8, 6); err != nil {
		t.Fatalf("原地改价不应失败, err=%v", err)
	}
	if err := c.EditProductOffer("o1", 1.8, 7); !errors.Is(err, ErrQuantityOverStock) {
		t.Fatalf("超出未占用库存应失败, got=%v", err)
	}
	if err := c.EditProductOffer("ghost", 1, 1); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("got=%v", err)
	}
}

func TestReserve_成交额圆整且归零删报价(t *testing.T) {
	c := newTestCompany()
	c.AddStock("bread", 3)
	if err := c.AddProductOffer(ProductOffer{ID: "o1", ItemID: "bread", Price: 0.33, Quantity: 3}); err != nil {
		t.Fatalf("err=%v", err)
	}

	cost, itemID, err := c.Reserve("o1", 3)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cost != 0.99 || itemID != "bread" {
		t.Fatalf("cost=%v item=%s", cost, itemID)
	}
	if len(c.ProductOffers) != 0 {
		t.Fatalf("量归零应删除报价, got=%v", c.ProductOffers)
	}
	if len(c.Inventory) != 0 {
		t.Fatalf("库存应同步扣减, got=%v", c.Inventory)
	}

	if _, _, err := c.Reserve("o1", 1); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("got=%v", err)
	}
}

func TestReserve_超量失败不变更(t *testing.T) {
	c := newTestCompany()
	c.AddStock("bread", 5)
	if err := c.AddProductOffer(ProductOffer{ID: "o1", ItemID: "bread", Price: 1, Quantity: 5}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, _, err := c.Reserve("o1", 6); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("got=%v", err)
	}
	if c.ProductOffers[0].Quantity != 5 || c.Inventory[0].Quantity != 5 {
		t.Fatalf("失败不应变更, offers=%v inv=%v", c.ProductOffers, c.Inventory)
	}
}

func TestTakeJob_名额归零删报价(t *testing.T) {
	c := newTestCompany()
	c.AddJobOffer(JobOffer{ID: "j1", Title: "baker", Wage: 3.5, Positions: 1})

	offer, err := c.TakeJob("j1", "c1")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if offer.Wage != 3.5 {
		t.Fatalf("offer=%v", offer)
	}
	if len(c.JobOffers) != 0 {
		t.Fatalf("名额归零应删除报价, got=%v", c.JobOffers)
	}
	if wage, ok := c.WageOf("c1"); !ok || wage != 3.5 {
		t.Fatalf("雇员名册=%v", c.Employees)
	}

	if _, err := c.TakeJob("j1", "c2"); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("got=%v", err)
	}
}

func TestTakeJob_重复入职失败(t *testing.T) {
	c := newTestCompany()
	c.AddJobOffer(JobOffer{ID: "j1", Title: "baker", Wage: 3, Positions: 2})
	if _, err := c.TakeJob("j1", "c1"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, err := c.TakeJob("j1", "c1"); !errors.Is(err, ErrAlreadyEmployed) {
		t.Fatalf("got=%v", err)
	}
}

func TestRestoreJobSlot_补偿回滚(t *testing.T) {
	c := newTestCompany()
	c.AddJobOffer(JobOffer{ID: "j1", Title: "baker", Wage: 3, Positions: 1})
	offer, err := c.TakeJob("j1", "c1")
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	c.RestoreJobSlot(offer, "c1")
	if len(c.Employees) != 0 {
		t.Fatalf("补偿应移除雇员, got=%v", c.Employees)
	}
	if len(c.JobOffers) != 1 || c.JobOffers[0].Positions != 1 {
		t.Fatalf("补偿应退回名额, got=%v", c.JobOffers)
	}
}

func TestPayWage_资金不足不变更(t *testing.T) {
	c := newTestCompany()
	c.CreditFunds(10)

	if err := c.PayWage(10.01); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("got=%v", err)
	}
	if c.Funds.Amount("USD") != 10 {
		t.Fatalf("失败不应变更资金, got=%v", c.Funds)
	}
	if err := c.PayWage(10); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(c.Funds) != 0 {
		t.Fatalf("扣光后条目应删除, got=%v", c.Funds)
	}
}
