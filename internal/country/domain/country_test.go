package domain

import (
	"errors"
	"testing"
	"time"
)

func newTestCountry() *Country {
	c := NewCountry("usa", "USA", "USD", "rival-land", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c.Regions = []Region{
		{ID: "r1", Name: "East", Weight: 2},
		{ID: "r2", Name: "West", Weight: 1},
	}
	return c
}

func TestCanProposeLaw_资格闭集(t *testing.T) {
	c := newTestCountry()
	c.Government = Government{
		President:     "p1",
		VicePresident: "v1",
		Cabinet:       map[string]string{MinisterOfTreasury: "m1", "defense": "d1"},
		Congress:      []string{"g1", "g2"},
	}

	for _, id := range []string{"p1", "v1", "m1", "g1", "g2"} {
		if !c.CanProposeLaw(id) {
			t.Fatalf("%s 应有提案资格", id)
		}
	}
	// 非财政部长的内阁成员和平民没有资格
	for _, id := range []string{"d1", "nobody", ""} {
		if c.CanProposeLaw(id) {
			t.Fatalf("%s 不应有提案资格", id)
		}
	}
}

func TestSweepExpiredLaws_到期移入历史(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	c := newTestCountry()
	c.ProposeLaw(Law{ID: "l1", Expires: now.Add(-time.Hour)})
	c.ProposeLaw(Law{ID: "l2", Expires: now.Add(time.Hour)})
	c.ProposeLaw(Law{ID: "l3", Expires: now.Add(-time.Minute)})

	if moved := c.SweepExpiredLaws(now); moved != 2 {
		t.Fatalf("moved=%d, want 2", moved)
	}
	if len(c.PendingLaws) != 1 || c.PendingLaws[0].ID != "l2" {
		t.Fatalf("pending=%v", c.PendingLaws)
	}
	if len(c.PastLaws) != 2 {
		t.Fatalf("past=%v", c.PastLaws)
	}
	// 再扫一遍是空操作
	if moved := c.SweepExpiredLaws(now); moved != 0 {
		t.Fatalf("重复清扫应为空操作, moved=%d", moved)
	}
}

func TestWarSpoil_按国土数均分(t *testing.T) {
	c := newTestCountry()
	c.Treasury.Credit(TreasuryGold, 101)

	if got := c.WarSpoil(); got != 50.5 {
		t.Fatalf("WarSpoil=%v, want 50.5", got)
	}

	c.Regions = nil
	if got := c.WarSpoil(); got != 0 {
		t.Fatalf("无国土时无可移交, got=%v", got)
	}
}

func TestRemoveRegion_战败移交(t *testing.T) {
	c := newTestCountry()
	r, err := c.RemoveRegion("r1")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if r.Weight != 2 {
		t.Fatalf("region=%v", r)
	}
	if len(c.Regions) != 1 || c.Regions[0].ID != "r2" {
		t.Fatalf("regions=%v", c.Regions)
	}
	if _, err := c.RemoveRegion("r1"); !errors.Is(err, ErrRegionNotFound) {
		t.Fatalf("got=%v", err)
	}
}
