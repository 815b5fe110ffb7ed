package app

import (
	"context"
	"errors"
	"time"

	"WorldRepublic/internal/party/domain"
	"WorldRepublic/modules/kit/errx"
	"WorldRepublic/modules/kit/logx"

	"go.uber.org/zap"
)

const casRetries = 3

type Code = errx.Code

const (
	CodePartyNotFound Code = "PARTY_NOT_FOUND"
	CodeMembership    Code = "PARTY_MEMBERSHIP_INVALID"
	CodeNotOfficial   Code = "NOT_PARTY_OFFICIAL"
)

var (
	ErrPartyNotFound = errx.New(errx.KindNotFound, CodePartyNotFound, "政党不存在")
	ErrMembership    = errx.New(errx.KindConflict, CodeMembership, "党籍状态冲突")
	ErrNotOfficial   = errx.New(errx.KindUnauthorized, CodeNotOfficial, "只有党主席或副主席可以操作")
	ErrInvalidState  = errx.ErrInvalidState
	ErrConflict      = errx.ErrConflict
	ErrUnavailable   = errx.ErrUnavailable
)

// PartyRepo 是政党聚合的存取端口。
type PartyRepo interface {
	Get(ctx context.Context, id string) (*domain.Party, error)
	Create(ctx context.Context, p *domain.Party) error
	Save(ctx context.Context, p *domain.Party) error
}

// PartyBinder 是政党上下文对公民侧的消费方接口：维护公民文档上的 party 引用。
type PartyBinder interface {
	BindParty(ctx context.Context, citizenID, partyID string) error
}

type PartyService struct {
	repo     PartyRepo
	citizens PartyBinder
	log      logx.Logger
}

func NewPartyService(repo PartyRepo, citizens PartyBinder, log logx.Logger) *PartyService {
	return &PartyService{repo: repo, citizens: citizens, log: log}
}

func (s *PartyService) Get(ctx context.Context, id string) (*domain.Party, error) {
	return s.load(ctx, id)
}

// Join 入党：党侧落账后镜像到公民文档；镜像失败回滚党侧。
func (s *PartyService) Join(ctx context.Context, citizenID, partyID string) error {
	if err := s.mutate(ctx, partyID, func(p *domain.Party) error {
		return p.Join(citizenID)
	}); err != nil {
		return err
	}

	if err := s.citizens.BindParty(ctx, citizenID, partyID); err != nil {
		compErr := s.mutate(ctx, partyID, func(p *domain.Party) error {
			return p.Leave(citizenID, time.Time{}) // 零值时间不会落在选举日
		})
		if compErr != nil {
			s.log.Error("party join compensate failed",
				zap.String("party", partyID), zap.String("citizen", citizenID), zap.Error(compErr))
		}
		return err
	}
	return nil
}

// Leave 退党：选举日锁定在领域层校验。
func (s *PartyService) Leave(ctx context.Context, citizenID, partyID string) error {
	if err := s.mutate(ctx, partyID, func(p *domain.Party) error {
		return p.Leave(citizenID, time.Now())
	}); err != nil {
		return err
	}

	if err := s.citizens.BindParty(ctx, citizenID, ""); err != nil {
		compErr := s.mutate(ctx, partyID, func(p *domain.Party) error {
			return p.Join(citizenID)
		})
		if compErr != nil {
			s.log.Error("party leave compensate failed",
				zap.String("party", partyID), zap.String("citizen", citizenID), zap.Error(compErr))
		}
		return err
	}
	return nil
}

// SetStance 主席或副主席修改党纲立场。
func (s *PartyService) SetStance(ctx context.Context, actorID, partyID, topic, position string) error {
	return s.mutate(ctx, partyID, func(p *domain.Party) error {
		return p.SetStance(actorID, topic, position)
	})
}

// AppointPresident 党主席选举收尾时就任。
func (s *PartyService) AppointPresident(ctx context.Context, partyID, citizenID string) error {
	return s.mutate(ctx, partyID, func(p *domain.Party) error {
		p.AppointPresident(citizenID)
		return nil
	})
}

// ---- 内部 ----

func (s *PartyService) load(ctx context.Context, id string) (*domain.Party, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPartyNotFound) {
			return nil, ErrPartyNotFound.WithData("party", id)
		}
		return nil, ErrUnavailable.WithCause(err)
	}
	return p, nil
}

func (s *PartyService) mutate(ctx context.Context, id string, fn func(*domain.Party) error) error {
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return s.mapDomainErr(err)
		}
		if err := s.repo.Save(ctx, p); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return ErrUnavailable.WithCause(err)
		}
		return nil
	}
	return ErrConflict.WithData("party", id).WithCause(lastErr)
}

func (s *PartyService) mapDomainErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrAlreadyMember), errors.Is(err, domain.ErrNotMember):
		return ErrMembership.WithCause(err)
	case errors.Is(err, domain.ErrElectionDayLock):
		return ErrInvalidState.WithData("reason", "party moves are locked on election days")
	case errors.Is(err, domain.ErrNotPartyOfficial):
		return ErrNotOfficial
	default:
		return errx.ErrInternal.WithCause(err)
	}
}
