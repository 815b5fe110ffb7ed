package domain

import (
	"errors"
	"time"

	"WorldRepublic/internal/shared/utils"
)

var (
	ErrPartyNotFound    = errors.New("party not found")
	ErrVersionConflict  = errors.New("party version conflict")
	ErrAlreadyMember    = errors.New("citizen already a party member")
	ErrNotMember        = errors.New("citizen not a party member")
	ErrElectionDayLock  = errors.New("party moves are locked on election days")
	ErrNotPartyOfficial = errors.New("actor is not a party official")
)

// Party 是政党聚合根。
type Party struct {
	ID      string
	Version uint64
	Name    string
	Country string

	President     string
	VicePresident string
	Members       []string
	// Stances 是议题 -> 立场的公开党纲。
	Stances map[string]string

	CreatedAt time.Time
}

func NewParty(id, name, country string, now time.Time) *Party {
	return &Party{
		ID:        id,
		Name:      name,
		Country:   country,
		Stances:   map[string]string{},
		CreatedAt: now,
	}
}

func (p *Party) IsMember(citizenID string) bool {
	for _, m := range p.Members {
		if m == citizenID {
			return true
		}
	}
	return false
}

// Join 入党。
func (p *Party) Join(citizenID string) error {
	if p.IsMember(citizenID) {
		return ErrAlreadyMember
	}
	p.Members = append(p.Members, citizenID)
	return nil
}

// Leave 退党；选举日（5/15/25 UTC）禁止，防止投票前夜跳船。
func (p *Party) Leave(citizenID string, now time.Time) error {
	if utils.IsElectionDay(now) {
		return ErrElectionDayLock
	}
	for i, m := range p.Members {
		if m == citizenID {
			p.Members = append(p.Members[:i], p.Members[i+1:]...)
			if p.President == citizenID {
				p.President = ""
			}
			if p.VicePresident == citizenID {
				p.VicePresident = ""
			}
			return nil
		}
	}
	return ErrNotMember
}

// SetStance 主席或副主席修改党纲立场。
func (p *Party) SetStance(actorID, topic, position string) error {
	if actorID != p.President && actorID != p.VicePresident {
		return ErrNotPartyOfficial
	}
	if p.Stances == nil {
		p.Stances = map[string]string{}
	}
	p.Stances[topic] = position
	return nil
}

// AppointPresident 党主席选举收尾时就任。
func (p *Party) AppointPresident(citizenID string) {
	p.President = citizenID
}
