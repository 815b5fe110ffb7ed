package domain

import (
	"time"

	"WorldRepublic/internal/ledger"
)

// TreasuryGold 是国库金币的固定键。
const TreasuryGold = "gold"

// MinisterOfTreasury 是内阁里可以提案的财政部长角色键。
const MinisterOfTreasury = "mot"

// Region 是国家名下的一块地区；Weight 是选举人团权重（人口占比）。
type Region struct {
	ID     string  `bson:"id"`
	Name   string  `bson:"name"`
	Weight float64 `bson:"weight"`
}

// Government 是在任政府：总统、副总统、内阁（角色 → 公民）与国会。
type Government struct {
	President     string            `bson:"president,omitempty"`
	VicePresident string            `bson:"vice_president,omitempty"`
	Cabinet       map[string]string `bson:"cabinet,omitempty"`
	Congress      []string          `bson:"congress,omitempty"`
}

// Law 是一条法律提案；到期未决的提案移入 pastLaws。
type Law struct {
	ID          string    `bson:"id"`
	Proposer    string    `bson:"proposer"`
	Description string    `bson:"description"`
	VotesYes    []string  `bson:"votes_yes,omitempty"`
	VotesNo     []string  `bson:"votes_no,omitempty"`
	ProposedAt  time.Time `bson:"proposed_at"`
	Expires     time.Time `bson:"expires"`
}

// Country 是国家聚合根。
type Country struct {
	ID       string
	Version  uint64
	Name     string
	Currency string
	// Rival 是脚本化的宿敌国：对其作战有本族敌人加成。
	Rival string

	Treasury   ledger.Treasury
	Regions    []Region
	Government Government

	PendingLaws []Law
	PastLaws    []Law

	CreatedAt time.Time
}

func NewCountry(id, name, currency, rival string, now time.Time) *Country {
	return &Country{
		ID:        id,
		Name:      name,
		Currency:  currency,
		Rival:     rival,
		Treasury:  ledger.Treasury{},
		CreatedAt: now,
	}
}

// CanProposeLaw 判断公民是否有提案资格：总统、副总统、国会议员或财政部长。
func (c *Country) CanProposeLaw(citizenID string) bool {
	g := c.Government
	if citizenID == "" {
		return false
	}
	if citizenID == g.President || citizenID == g.VicePresident {
		return true
	}
	if g.Cabinet[MinisterOfTreasury] == citizenID {
		return true
	}
	for _, m := range g.Congress {
		if m == citizenID {
			return true
		}
	}
	return false
}

// ProposeLaw 追加一条待决提案。
func (c *Country) ProposeLaw(law Law) {
	c.PendingLaws = append(c.PendingLaws, law)
}

// SweepExpiredLaws 把到期的待决提案移入历史，返回移动条数。
func (c *Country) SweepExpiredLaws(now time.Time) int {
	moved := 0
	kept := c.PendingLaws[:0]
	for _, law := range c.PendingLaws {
		if now.After(law.Expires) {
			c.PastLaws = append(c.PastLaws, law)
			moved++
			continue
		}
		kept = append(kept, law)
	}
	c.PendingLaws = kept
	return moved
}

// StartingRegion 返回新公民的初始地区（第一块国土）。
func (c *Country) StartingRegion() (string, error) {
	if len(c.Regions) == 0 {
		return "", ErrNoRegions
	}
	return c.Regions[0].ID, nil
}

// RemoveRegion 把地区从国土上摘走（战败移交），返回被摘走的地区。
func (c *Country) RemoveRegion(id string) (Region, error) {
	for i := range c.Regions {
		if c.Regions[i].ID == id {
			r := c.Regions[i]
			c.Regions = append(c.Regions[:i], c.Regions[i+1:]...)
			return r, nil
		}
	}
	return Region{}, ErrRegionNotFound
}

func (c *Country) AddRegion(r Region) {
	c.Regions = append(c.Regions, r)
}

// WarSpoil 返回战败时应移交的金币：round(国库金币 / 国土数)。
// 国土数为零时没有可移交的（国家已无地区，不参与分母）。
func (c *Country) WarSpoil() float64 {
	if len(c.Regions) == 0 {
		return 0
	}
	return ledger.Round(c.Treasury[TreasuryGold] / float64(len(c.Regions)))
}

// AppointPresident 选举收尾时就任总统。
func (c *Country) AppointPresident(citizenID string) {
	c.Government.President = citizenID
}

// AppointCongress 选举收尾时就任国会。
func (c *Country) AppointCongress(members []string) {
	c.Government.Congress = members
}
