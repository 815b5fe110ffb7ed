package domain

import (
	"math"
	"strconv"
	"time"

	"WorldRepublic/internal/ledger"
)

const (
	MaxHealth     = 100
	healAmount    = 50
	levelUpGold   = 5.0
	dailyReward   = 0.5
	registerGold  = 5.0
	registerStake = 25.0
)

// JobRef 指向雇主公司及聘用条款。
type JobRef struct {
	Company string  `bson:"company"`
	Title   string  `bson:"title"`
	Wage    float64 `bson:"wage"`
}

// InventoryItem 物品持有；同一背包内 item_id 唯一。
type InventoryItem struct {
	ItemID   string `bson:"item_id"`
	Quantity int    `bson:"quantity"`
}

// Alert 是追加式的通知日志条目。
type Alert struct {
	Type      string    `bson:"type"`
	Message   string    `bson:"message"`
	Read      bool      `bson:"read"`
	Timestamp time.Time `bson:"timestamp"`
}

type Message struct {
	From      string    `bson:"from"`
	Body      string    `bson:"body"`
	Timestamp time.Time `bson:"timestamp"`
}

type Thread struct {
	ID           string    `bson:"id"`
	Participants []string  `bson:"participants"`
	Subject      string    `bson:"subject"`
	Messages     []Message `bson:"messages"`
	Timestamp    time.Time `bson:"timestamp"`
}

// Citizen 是公民聚合根。
type Citizen struct {
	ID       string
	Version  uint64
	Username string

	Health       int
	Strength     int
	XP           int
	Level        int
	MilitaryRank int

	Gold      float64
	Wallet    ledger.Wallet
	Inventory []InventoryItem

	Country   string
	Location  string
	Residence string
	Job       *JobRef
	Party     string

	CanTrain          time.Time
	CanWork           time.Time
	CanHeal           time.Time
	CanCollectRewards time.Time

	Friends        []string
	PendingFriends []string
	Subscriptions  []string

	Alerts  []Alert
	Threads []Thread

	CreatedAt time.Time
}

// NewCitizen 注册新公民：满血、一级、启动资金和母国货币的初始持仓。
func NewCitizen(id, username, country, region, currency string, now time.Time) *Citizen {
	return &Citizen{
		ID:        id,
		Username:  username,
		Health:    MaxHealth,
		Level:     1,
		Gold:      registerGold,
		Wallet:    ledger.Wallet{{Currency: currency, Amount: registerStake}},
		Country:   country,
		Location:  region,
		Residence: region,
		CreatedAt: now,
	}
}

// NeededXP 返回升到下一级所需经验：round(0.08·l³ + 0.8·l² + 2·l)。
func NeededXP(level int) int {
	l := float64(level)
	return int(math.Round(0.08*l*l*l + 0.8*l*l + 2*l))
}

// Train 每日训练：力量 +1、经验 +1，冷却推到下一个 UTC 零点。
func (c *Citizen) Train(now time.Time) error {
	if now.Before(c.CanTrain) {
		return ErrCooldownActive
	}
	c.Strength++
	c.GainXP(1, now)
	c.CanTrain = NextUTCMidnight(now)
	return nil
}

// Heal 每日治疗：生命 +50 封顶 100。
func (c *Citizen) Heal(now time.Time) error {
	if now.Before(c.CanHeal) {
		return ErrCooldownActive
	}
	if c.Health >= MaxHealth {
		return ErrHealthFull
	}
	c.Health = min(MaxHealth, c.Health+healAmount)
	c.CanHeal = NextUTCMidnight(now)
	return nil
}

// CollectRewards 每日奖励：金币 +0.50、经验 +1。
func (c *Citizen) CollectRewards(now time.Time) error {
	if now.Before(c.CanCollectRewards) {
		return ErrCooldownActive
	}
	c.Gold = ledger.Round(c.Gold + dailyReward)
	c.GainXP(1, now)
	c.CanCollectRewards = NextUTCMidnight(now)
	return nil
}

// ReceivePaycheck 工作结薪的公民侧变更：入账工资、经验 +1、推冷却。
// 雇主侧（资金扣减与产出入库）由公司上下文在同一笔动作里完成。
func (c *Citizen) ReceivePaycheck(currency string, wage float64, now time.Time) error {
	if c.Job == nil {
		return ErrNoJob
	}
	if now.Before(c.CanWork) {
		return ErrCooldownActive
	}
	c.Wallet = c.Wallet.Credit(currency, wage)
	c.GainXP(1, now)
	c.CanWork = NextUTCMidnight(now)
	return nil
}

// GainXP 增加经验并结算升级：每级 +5.00 金币、追加升级告警。
func (c *Citizen) GainXP(n int, now time.Time) {
	c.XP += n
	for c.XP >= NeededXP(c.Level) {
		c.Level++
		c.Gold = ledger.Round(c.Gold + levelUpGold)
		c.AddAlert("LEVEL_UP", "Congratulations, you reached level "+strconv.Itoa(c.Level)+"!", now)
	}
}

func (c *Citizen) AddAlert(alertType, message string, now time.Time) {
	c.Alerts = append(c.Alerts, Alert{
		Type:      alertType,
		Message:   message,
		Timestamp: now,
	})
}

// DeductHealth 扣生命（出击消耗）；不足时报错不变更。
func (c *Citizen) DeductHealth(amount int) error {
	if c.Health < amount {
		return ErrHealthTooLow
	}
	c.Health -= amount
	return nil
}

// CreditHealth 回补生命（出击被拒的补偿），封顶 100。
func (c *Citizen) CreditHealth(amount int) {
	c.Health = min(MaxHealth, c.Health+amount)
}

// DebitGold 扣金币；不足时返回错误且不变更。
func (c *Citizen) DebitGold(amount float64) error {
	amount = ledger.Round(amount)
	if ledger.Round(c.Gold) < amount {
		return ErrInsufficientGold
	}
	c.Gold = ledger.Round(c.Gold - amount)
	return nil
}

func (c *Citizen) CreditGold(amount float64) {
	c.Gold = ledger.Round(c.Gold + ledger.Round(amount))
}

// DebitCurrency 扣货币；余额恰好归零时删除钱包条目。
func (c *Citizen) DebitCurrency(currency string, amount float64) error {
	next, ok := c.Wallet.Debit(currency, amount)
	if !ok {
		return ErrInsufficientCurrency
	}
	c.Wallet = next
	return nil
}

func (c *Citizen) CreditCurrency(currency string, amount float64) {
	c.Wallet = c.Wallet.Credit(currency, amount)
}

// AddItem 物品入包；item_id 唯一。
func (c *Citizen) AddItem(itemID string, quantity int) {
	for i := range c.Inventory {
		if c.Inventory[i].ItemID == itemID {
			c.Inventory[i].Quantity += quantity
			return
		}
	}
	c.Inventory = append(c.Inventory, InventoryItem{ItemID: itemID, Quantity: quantity})
}

// RemoveItem 物品出包；数量归零时删除条目，不足时报错不变更。
func (c *Citizen) RemoveItem(itemID string, quantity int) error {
	for i := range c.Inventory {
		if c.Inventory[i].ItemID != itemID {
			continue
		}
		if c.Inventory[i].Quantity < quantity {
			return ErrInsufficientItems
		}
		c.Inventory[i].Quantity -= quantity
		if c.Inventory[i].Quantity == 0 {
			c.Inventory = append(c.Inventory[:i], c.Inventory[i+1:]...)
		}
		return nil
	}
	return ErrInsufficientItems
}

// ReceiveFriendRequest 把请求方挂到本公民的待处理列表。
func (c *Citizen) ReceiveFriendRequest(fromID string) error {
	if fromID == c.ID {
		return ErrSelfFriend
	}
	if contains(c.Friends, fromID) {
		return ErrAlreadyFriends
	}
	if contains(c.PendingFriends, fromID) {
		return ErrDuplicateRequest
	}
	c.PendingFriends = append(c.PendingFriends, fromID)
	return nil
}

// AcceptFriendRequest 把 fromID 从待处理移入好友。
func (c *Citizen) AcceptFriendRequest(fromID string) error {
	if !contains(c.PendingFriends, fromID) {
		return ErrNoPendingRequest
	}
	c.PendingFriends = remove(c.PendingFriends, fromID)
	c.Friends = append(c.Friends, fromID)
	return nil
}

// AddFriend 给请求方补一条好友记录（接受侧的镜像写）。
func (c *Citizen) AddFriend(id string) {
	if !contains(c.Friends, id) {
		c.Friends = append(c.Friends, id)
	}
}

func (c *Citizen) Subscribe(authorID string) error {
	if contains(c.Subscriptions, authorID) {
		return ErrAlreadySubscribed
	}
	c.Subscriptions = append(c.Subscriptions, authorID)
	return nil
}

func (c *Citizen) Unsubscribe(authorID string) error {
	if !contains(c.Subscriptions, authorID) {
		return ErrNotSubscribed
	}
	c.Subscriptions = remove(c.Subscriptions, authorID)
	return nil
}

// CreateThread 新建私信会话。
func (c *Citizen) CreateThread(id, subject string, participants []string, first Message) {
	c.Threads = append(c.Threads, Thread{
		ID:           id,
		Participants: participants,
		Subject:      subject,
		Messages:     []Message{first},
		Timestamp:    first.Timestamp,
	})
}

// AppendMessage 向既有会话追加消息。
func (c *Citizen) AppendMessage(threadID string, msg Message) error {
	for i := range c.Threads {
		if c.Threads[i].ID == threadID {
			c.Threads[i].Messages = append(c.Threads[i].Messages, msg)
			c.Threads[i].Timestamp = msg.Timestamp
			return nil
		}
	}
	return ErrThreadNotFound
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func remove(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
