package domain

import (
	"errors"
	"math"
	"time"
)

var (
	ErrBattleNotFound  = errors.New("battle not found")
	ErrVersionConflict = errors.New("battle version conflict")
	ErrBattleNotActive = errors.New("battle is not active")
	ErrNotBelligerent  = errors.New("fighter's country is not in this battle")
	ErrTooWounded      = errors.New("fighter health below fight threshold")
)

// FightHealthCost 是每次出击消耗的生命值，也是参战门槛。
const FightHealthCost = 10

// RecentHitsCap 是每侧最近战报环形缓冲的容量。
const RecentHitsCap = 10

// nativeEnemyBonus 是对宿敌国作战的伤害加成。
const nativeEnemyBonus = 1.1

// Side 标记参战方。
type Side string

const (
	SideAttacker Side = "attacker"
	SideDefender Side = "defender"
)

// Hit 是一次出击的战报。
type Hit struct {
	CitizenID string    `bson:"citizen_id"`
	Damage    int       `bson:"damage"`
	At        time.Time `bson:"at"`
}

// SideStats 是一侧的战况：每名战士的累计伤害 + 最近战报（容量 10，最新在前）。
type SideStats struct {
	Damage     map[string]int `bson:"damage,omitempty"`
	RecentHits []Hit          `bson:"recent_hits,omitempty"`
}

// Record 落一击：累计伤害首击创建，战报头插并截断到容量。
func (s *SideStats) Record(hit Hit) {
	if s.Damage == nil {
		s.Damage = map[string]int{}
	}
	s.Damage[hit.CitizenID] += hit.Damage

	s.RecentHits = append([]Hit{hit}, s.RecentHits...)
	if len(s.RecentHits) > RecentHitsCap {
		s.RecentHits = s.RecentHits[:RecentHitsCap]
	}
}

// Total 返回该侧的累计伤害。
func (s SideStats) Total() int {
	total := 0
	for _, d := range s.Damage {
		total += d
	}
	return total
}

// Battle 是战斗聚合根：攻守两国争夺一块地区。
type Battle struct {
	ID      string
	Version uint64

	Attacker string
	Defender string
	Region   string
	// Wall 是守方的城墙加值，计入守方总伤害。
	Wall int

	ExpiresAt time.Time
	// Winner 只被结算器写一次：攻方或守方的国家 id。
	Winner string

	Attackers SideStats
	Defenders SideStats

	CreatedAt time.Time
}

func NewBattle(id, attacker, defender, region string, wall int, expiresAt, now time.Time) *Battle {
	return &Battle{
		ID:        id,
		Attacker:  attacker,
		Defender:  defender,
		Region:    region,
		Wall:      wall,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
}

// Active 判断战斗是否还能出击：未到期且未分胜负。
func (b *Battle) Active(now time.Time) bool {
	return b.Winner == "" && now.Before(b.ExpiresAt)
}

// Due 判断是否到点结算：已到期且未分胜负。
func (b *Battle) Due(now time.Time) bool {
	return b.Winner == "" && !now.Before(b.ExpiresAt)
}

// SideOf 返回国家在本场战斗的参战方。
func (b *Battle) SideOf(countryID string) (Side, error) {
	switch countryID {
	case b.Attacker:
		return SideAttacker, nil
	case b.Defender:
		return SideDefender, nil
	}
	return "", ErrNotBelligerent
}

// EnemyOf 返回某侧的敌对国家。
func (b *Battle) EnemyOf(side Side) string {
	if side == SideAttacker {
		return b.Defender
	}
	return b.Attacker
}

// RecordHit 落一击；对已结算或到期的战斗出击被拒绝，不会被静默吞掉。
func (b *Battle) RecordHit(side Side, hit Hit, now time.Time) error {
	if !b.Active(now) {
		return ErrBattleNotActive
	}
	if side == SideAttacker {
		b.Attackers.Record(hit)
	} else {
		b.Defenders.Record(hit)
	}
	return nil
}

// AttackerWins 结算判定：攻方总伤害严格大于 城墙+守方总伤害 才算攻下。
func (b *Battle) AttackerWins() bool {
	return b.Attackers.Total() > b.Wall+b.Defenders.Total()
}

// DamageOf 计算一次出击的伤害：
// ceil((level×5+strength)×(1+militaryRank×0.05)×宿敌加成)。
func DamageOf(level, strength, militaryRank int, nativeEnemy bool) int {
	dmg := float64(level*5+strength) * (1 + float64(militaryRank)*0.05)
	if nativeEnemy {
		dmg *= nativeEnemyBonus
	}
	return int(math.Ceil(dmg))
}
