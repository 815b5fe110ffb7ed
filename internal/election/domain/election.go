package domain

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrElectionNotFound  = errors.New("election not found")
	ErrVersionConflict   = errors.New("election version conflict")
	ErrNotActive         = errors.New("election is not active")
	ErrAlreadyCompleted  = errors.New("election already completed")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrAlreadyCandidate  = errors.New("citizen already registered as candidate")
	ErrAlreadyVoted      = errors.New("voter already cast a ballot in this election")
	ErrResidenceMismatch = errors.New("voter location does not match residence")
	ErrWrongJurisdiction = errors.New("voter outside this election's jurisdiction")
	ErrNoCandidates      = errors.New("election has no candidates")
)

// Status 是选举状态机：Scheduled → Active → Completed。
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Type 区分三种选举。
type Type string

const (
	TypeCountryPresident Type = "country_president"
	TypeCongress         Type = "congress"
	TypePartyPresident   Type = "party_president"
)

// TallyKind 是计票算法：简单多数或选举人团。
type TallyKind string

const (
	TallyPopular TallyKind = "popular"
	TallyCollege TallyKind = "college"
)

// TieBreak 是并列时的裁决策略。
type TieBreak string

const (
	// TieBreakEarliest 先登记者胜（默认）。
	TieBreakEarliest TieBreak = "earliest_registration"
	// TieBreakAlphabetical 公民 id 字典序小者胜。
	TieBreakAlphabetical TieBreak = "alphabetical"
)

// Candidate 是一个候选人及其得票。
// PopularVote 用 Votes 平铺列表；ElectoralCollege 用 RegionVotes 按投票人所在地分桶。
type Candidate struct {
	CitizenID    string              `bson:"citizen_id"`
	RegisteredAt time.Time           `bson:"registered_at"`
	Votes        []string            `bson:"votes,omitempty"`
	RegionVotes  map[string][]string `bson:"region_votes,omitempty"`
}

// Election 是选举聚合根。
type Election struct {
	ID      string
	Version uint64
	Type    Type
	Tally   TallyKind

	Country string
	// Party 只在党主席选举时非空。
	Party string
	// Seats 只在国会选举时大于 1：取票数前 Seats 名。
	Seats int

	Status  Status
	StartAt time.Time
	EndAt   time.Time

	Candidates []Candidate
	Winners    []string
}

func NewElection(id string, typ Type, tally TallyKind, country, party string, seats int, startAt, endAt time.Time) *Election {
	if seats < 1 {
		seats = 1
	}
	return &Election{
		ID:      id,
		Type:    typ,
		Tally:   tally,
		Country: country,
		Party:   party,
		Seats:   seats,
		Status:  StatusScheduled,
		StartAt: startAt,
		EndAt:   endAt,
	}
}

// activate 懒激活：投票/参选发生在窗口内时把 Scheduled 推到 Active。
func (e *Election) activate(now time.Time) {
	if e.Status == StatusScheduled && !now.Before(e.StartAt) && now.Before(e.EndAt) {
		e.Status = StatusActive
	}
}

// Due 判断是否到点收尾：窗口已过且未完成。
func (e *Election) Due(now time.Time) bool {
	return e.Status != StatusCompleted && !now.Before(e.EndAt)
}

// RegisterCandidate 登记参选；重复参选冲突。
func (e *Election) RegisterCandidate(citizenID string, now time.Time) error {
	e.activate(now)
	if e.Status == StatusCompleted || !now.Before(e.EndAt) {
		return ErrNotActive
	}
	for _, c := range e.Candidates {
		if c.CitizenID == citizenID {
			return ErrAlreadyCandidate
		}
	}
	e.Candidates = append(e.Candidates, Candidate{CitizenID: citizenID, RegisteredAt: now})
	return nil
}

// Vote 记一票。先扫所有候选人的得票找重复投票（冲突），
// 再按计票算法落到平铺列表或所在地分桶。
func (e *Election) Vote(voterID, candidateID, voterLocation, residence string, now time.Time) error {
	e.activate(now)
	if e.Status != StatusActive || !now.Before(e.EndAt) {
		return ErrNotActive
	}
	if voterLocation != residence {
		return ErrResidenceMismatch
	}
	for _, c := range e.Candidates {
		for _, v := range c.Votes {
			if v == voterID {
				return ErrAlreadyVoted
			}
		}
		for _, regionVotes := range c.RegionVotes {
			for _, v := range regionVotes {
				if v == voterID {
					return ErrAlreadyVoted
				}
			}
		}
	}
	for i := range e.Candidates {
		if e.Candidates[i].CitizenID != candidateID {
			continue
		}
		switch e.Tally {
		case TallyCollege:
			if e.Candidates[i].RegionVotes == nil {
				e.Candidates[i].RegionVotes = map[string][]string{}
			}
			e.Candidates[i].RegionVotes[voterLocation] = append(e.Candidates[i].RegionVotes[voterLocation], voterID)
		default:
			e.Candidates[i].Votes = append(e.Candidates[i].Votes, voterID)
		}
		return nil
	}
	return ErrCandidateNotFound
}

// Close 收尾计票。已完成的选举原样返回当选名单（幂等）。
// regionWeights 只在选举人团计票时使用：地区 id → 选举人权重。
func (e *Election) Close(regionWeights map[string]float64, tieBreak TieBreak) ([]string, error) {
	if e.Status == StatusCompleted {
		return e.Winners, ErrAlreadyCompleted
	}
	if len(e.Candidates) == 0 {
		e.Status = StatusCompleted
		return nil, ErrNoCandidates
	}

	var winners []string
	switch e.Tally {
	case TallyCollege:
		winners = []string{e.collegeWinner(regionWeights, tieBreak)}
	default:
		winners = e.popularWinners(tieBreak)
	}

	e.Status = StatusCompleted
	e.Winners = winners
	return winners, nil
}

// popularWinners 简单多数：最长得票列表胜；国会选举取前 Seats 名。
func (e *Election) popularWinners(tieBreak TieBreak) []string {
	ranked := append([]Candidate(nil), e.Candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if len(ranked[i].Votes) != len(ranked[j].Votes) {
			return len(ranked[i].Votes) > len(ranked[j].Votes)
		}
		return beats(ranked[i], ranked[j], tieBreak)
	})

	n := e.Seats
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]string, 0, n)
	for _, c := range ranked[:n] {
		out = append(out, c.CitizenID)
	}
	return out
}

// collegeWinner 选举人团：每个地区赢者通吃该地区的全部选举人权重，
// 总权重最高者当选。容忍小数权重。
func (e *Election) collegeWinner(regionWeights map[string]float64, tieBreak TieBreak) string {
	// 先选出每个地区的多数派
	regions := map[string]bool{}
	for _, c := range e.Candidates {
		for region := range c.RegionVotes {
			regions[region] = true
		}
	}

	electors := map[string]float64{}
	for region := range regions {
		var best *Candidate
		bestVotes := -1
		for i := range e.Candidates {
			c := &e.Candidates[i]
			votes := len(c.RegionVotes[region])
			if votes > bestVotes || (votes == bestVotes && best != nil && beats(*c, *best, tieBreak)) {
				best = c
				bestVotes = votes
			}
		}
		if best != nil && bestVotes > 0 {
			electors[best.CitizenID] += regionWeights[region]
		}
	}

	winner := Candidate{}
	bestWeight := -1.0
	for i := range e.Candidates {
		c := e.Candidates[i]
		w := electors[c.CitizenID]
		if w > bestWeight || (w == bestWeight && beats(c, winner, tieBreak)) {
			winner = c
			bestWeight = w
		}
	}
	return winner.CitizenID
}

// beats 并列裁决：a 是否压过 b。
func beats(a, b Candidate, tieBreak TieBreak) bool {
	if b.CitizenID == "" {
		return true
	}
	switch tieBreak {
	case TieBreakAlphabetical:
		return a.CitizenID < b.CitizenID
	default: // TieBreakEarliest
		if !a.RegisteredAt.Equal(b.RegisteredAt) {
			return a.RegisteredAt.Before(b.RegisteredAt)
		}
		return a.CitizenID < b.CitizenID
	}
}
