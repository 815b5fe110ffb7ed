package app

import (
	"context"
	"time"

	"WorldRepublic/internal/election/domain"
)

// ElectionRepo 是选举聚合的存取端口。
// Save 按 (id, version) 做 CAS：版本已前进时返回 domain.ErrVersionConflict。
type ElectionRepo interface {
	Get(ctx context.Context, id string) (*domain.Election, error)
	// ListDue 返回窗口已过且未完成的选举。
	ListDue(ctx context.Context, now time.Time) ([]*domain.Election, error)
	Create(ctx context.Context, e *domain.Election) error
	Save(ctx context.Context, e *domain.Election) error
}

// VoterProfile 是投票/参选校验需要的公民侧快照。
type VoterProfile struct {
	Country   string
	Residence string
	Location  string
	Party     string
}

// VoterDirectory 是选举上下文对公民侧的消费方接口。
type VoterDirectory interface {
	Profile(ctx context.Context, citizenID string) (VoterProfile, error)
}

// RegionDirectory 提供选举人团计票用的地区权重。
type RegionDirectory interface {
	RegionWeights(ctx context.Context, countryID string) (map[string]float64, error)
}

// OfficeAppointer 把当选人写回对应的政府/政党文档。
type OfficeAppointer interface {
	AppointCountryPresident(ctx context.Context, countryID, citizenID string) error
	AppointCongress(ctx context.Context, countryID string, members []string) error
	AppointPartyPresident(ctx context.Context, partyID, citizenID string) error
}
