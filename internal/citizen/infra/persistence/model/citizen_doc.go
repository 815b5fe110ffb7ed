package model

import (
	"time"

	"WorldRepublic/internal/citizen/domain"
	"WorldRepublic/internal/ledger"
)

// CitizenDoc 是公民聚合在 MongoDB 中的文档形态。
// version 字段承载乐观锁：Save 用 (_id, version) 做 CAS。
type CitizenDoc struct {
	ID       string `bson:"_id"`
	Version  uint64 `bson:"version"`
	Username string `bson:"username"`

	Health       int `bson:"health"`
	Strength     int `bson:"strength"`
	XP           int `bson:"xp"`
	Level        int `bson:"level"`
	MilitaryRank int `bson:"military_rank"`

	Gold      float64                `bson:"gold"`
	Wallet    []ledger.Entry         `bson:"wallet"`
	Inventory []domain.InventoryItem `bson:"inventory"`

	Country   string         `bson:"country"`
	Location  string         `bson:"location"`
	Residence string         `bson:"residence"`
	Job       *domain.JobRef `bson:"job,omitempty"`
	Party     string         `bson:"party,omitempty"`

	CanTrain          time.Time `bson:"can_train"`
	CanWork           time.Time `bson:"can_work"`
	CanHeal           time.Time `bson:"can_heal"`
	CanCollectRewards time.Time `bson:"can_collect_rewards"`

	Friends        []string `bson:"friends,omitempty"`
	PendingFriends []string `bson:"pending_friends,omitempty"`
	Subscriptions  []string `bson:"subscriptions,omitempty"`

	Alerts  []domain.Alert  `bson:"alerts,omitempty"`
	Threads []domain.Thread `bson:"threads,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
}

func CitizenToDoc(c *domain.Citizen) CitizenDoc {
	return CitizenDoc{
		ID:                c.ID,
		Version:           c.Version,
		Username:          c.Username,
		Health:            c.Health,
		Strength:          c.Strength,
		XP:                c.XP,
		Level:             c.Level,
		MilitaryRank:      c.MilitaryRank,
		Gold:              c.Gold,
		Wallet:            c.Wallet,
		Inventory:         c.Inventory,
		Country:           c.Country,
		Location:          c.Location,
		Residence:         c.Residence,
		Job:               c.Job,
		Party:             c.Party,
		CanTrain:          c.CanTrain,
		CanWork:           c.CanWork,
		CanHeal:           c.CanHeal,
		CanCollectRewards: c.CanCollectRewards,
		Friends:           c.Friends,
		PendingFriends:    c.PendingFriends,
		Subscriptions:     c.Subscriptions,
		Alerts:            c.Alerts,
		Threads:           c.Threads,
		CreatedAt:         c.CreatedAt,
	}
}

func DocToCitizen(d CitizenDoc) *domain.Citizen {
	return &domain.Citizen{
		ID:                d.ID,
		Version:           d.Version,
		Username:          d.Username,
		Health:            d.Health,
		Strength:          d.Strength,
		XP:                d.XP,
		Level:             d.Level,
		MilitaryRank:      d.MilitaryRank,
		Gold:              d.Gold,
		Wallet:            d.Wallet,
		Inventory:         d.Inventory,
		Country:           d.Country,
		Location:          d.Location,
		Residence:         d.Residence,
		Job:               d.Job,
		Party:             d.Party,
		CanTrain:          d.CanTrain,
		CanWork:           d.CanWork,
		CanHeal:           d.CanHeal,
		CanCollectRewards: d.CanCollectRewards,
		Friends:           d.Friends,
		PendingFriends:    d.PendingFriends,
		Subscriptions:     d.Subscriptions,
		Alerts:            d.Alerts,
		Threads:           d.Threads,
		CreatedAt:         d.CreatedAt,
	}
}
