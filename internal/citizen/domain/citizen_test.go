package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNeededXP_固定点(t *testing.T) {
	if got := NeededXP(1); got != 3 {
		t.Fatalf("NeededXP(1)=%d, want 3", got)
	}
	if got := NeededXP(10); got != 180 {
		t.Fatalf("NeededXP(10)=%d, want 180", got)
	}
}

func TestTrain_同一UTC日第二次失败且属性不变(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	c := NewCitizen("c1", "alice", "usa", "r1", "USD", now)

	if err := c.Train(now); err != nil {
		t.Fatalf("第一次训练应成功, err=%v", err)
	}
	strength, xp := c.Strength, c.XP

	err := c.Train(now.Add(2 * time.Hour))
	if !errors.Is(err, ErrCooldownActive) {
		t.Fatalf("期望冷却错误, got=%v", err)
	}
	if c.Strength != strength || c.XP != xp {
		t.Fatalf("失败的训练不应改变属性")
	}

	// 过了 UTC 零点后恢复
	if err := c.Train(now.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("次日训练应成功, err=%v", err)
	}
}

func TestTrain_冷却是下一个UTC零点(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	c := NewCitizen("c1", "alice", "usa", "r1", "USD", now)
	if err := c.Train(now); err != nil {
		t.Fatalf("err=%v", err)
	}
	want := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	if !c.CanTrain.Equal(want) {
		t.Fatalf("CanTrain=%v, want %v", c.CanTrain, want)
	}
}

func TestGainXP_升级加金币并追加告警(t *testing.T) {
	now := time.Now()
	c := NewCitizen("c1", "alice", "usa", "r1", "USD", now)
	gold := c.Gold

	c.GainXP(3, now) // NeededXP(1)=3，应升到 2 级
	if c.Level != 2 {
		t.Fatalf("Level=%d, want 2", c.Level)
	}
	if c.Gold != gold+5 {
		t.Fatalf("Gold=%v, want %v", c.Gold, gold+5)
	}
	if len(c.Alerts) != 1 || c.Alerts[0].Type != "LEVEL_UP" {
		t.Fatalf("期望一条升级告警, got=%v", c.Alerts)
	}
}

func TestHeal_封顶100(t *testing.T) {
	now := time.Now()
	c := NewCitizen("c1", "alice", "usa", "r1", "USD", now)
	c.Health = 80
	if err := c.Heal(now); err != nil {
		t.Fatalf("err=%v", err)
	}
	if c.Health != 100 {
		t.Fatalf("Health=%d, want 100", c.Health)
	}

	c2 := NewCitizen("c2", "bob", "usa", "r1", "USD", now)
	if err := c2.Heal(now); !errors.Is(err, ErrHealthFull) {
		t.Fatalf("满血治疗应失败, got=%v", err)
	}
}

func TestFriendRequest_拒绝自己和重复(t *testing.T) {
	c := NewCitizen("c1", "alice", "usa", "r1", "USD", time.Now())
	if err := c.ReceiveFriendRequest("c1"); !errors.Is(err, ErrSelfFriend) {
		t.Fatalf("不能加自己为好友, got=%v", err)
	}
	if err := c.ReceiveFriendRequest("c2"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if err := c.ReceiveFriendRequest("c2"); !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("重复请求应失败, got=%v", err)
	}
	if err := c.AcceptFriendRequest("c2"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(c.PendingFriends) != 0 || len(c.Friends) != 1 {
		t.Fatalf("接受后应从待处理移入好友, pending=%v friends=%v", c.PendingFriends, c.Friends)
	}
	if err := c.AcceptFriendRequest("c3"); !errors.Is(err, ErrNoPendingRequest) {
		t.Fatalf("没有待处理请求应失败, got=%v", err)
	}
}

func TestRemoveItem_数量归零删除条目(t *testing.T) {
	c := NewCitizen("c1", "alice", "usa", "r1", "USD", time.Now())
	c.AddItem("bread", 3)
	c.AddItem("bread", 2)
	if len(c.Inventory) != 1 || c.Inventory[0].Quantity != 5 {
		t.Fatalf("item_id 应唯一合并, got=%v", c.Inventory)
	}
	if err := c.RemoveItem("bread", 6); !errors.Is(err, ErrInsufficientItems) {
		t.Fatalf("超量移除应失败, got=%v", err)
	}
	if err := c.RemoveItem("bread", 5); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(c.Inventory) != 0 {
		t.Fatalf("归零后应删除条目, got=%v", c.Inventory)
	}
}

func TestIsElectionDay(t *testing.T) {
	if !IsElectionDay(time.Date(2026, 5, 15, 3, 0, 0, 0, time.UTC)) {
		t.Fatalf("15 号是选举日")
	}
	if IsElectionDay(time.Date(2026, 5, 16, 3, 0, 0, 0, time.UTC)) {
		t.Fatalf("16 号不是选举日")
	}
}
