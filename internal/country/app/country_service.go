package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"WorldRepublic/internal/country/domain"
	"WorldRepublic/modules/kit/errx"
	"WorldRepublic/modules/kit/logx"

	"go.uber.org/zap"
)

const casRetries = 3

// 提案的默认有效期。
const defaultLawTTL = 7 * 24 * time.Hour

type CountryService struct {
	repo  CountryRepo
	idGen IDGen
	log   logx.Logger
}

func NewCountryService(repo CountryRepo, idGen IDGen, log logx.Logger) *CountryService {
	return &CountryService{repo: repo, idGen: idGen, log: log}
}

func (s *CountryService) Get(ctx context.Context, id string) (*domain.Country, error) {
	return s.load(ctx, id)
}

// CurrencyOf 实现公民上下文的 CountryDirectory。
func (s *CountryService) CurrencyOf(ctx context.Context, countryID string) (string, error) {
	c, err := s.load(ctx, countryID)
	if err != nil {
		return "", err
	}
	return c.Currency, nil
}

// StartingRegionOf 实现公民上下文的 CountryDirectory。
func (s *CountryService) StartingRegionOf(ctx context.Context, countryID string) (string, error) {
	c, err := s.load(ctx, countryID)
	if err != nil {
		return "", err
	}
	region, err := c.StartingRegion()
	if err != nil {
		return "", ErrInvalidState.WithData("reason", "country owns no regions")
	}
	return region, nil
}

// RegionWeights 返回国土的选举人团权重表（选举上下文的消费方接口）。
func (s *CountryService) RegionWeights(ctx context.Context, countryID string) (map[string]float64, error) {
	c, err := s.load(ctx, countryID)
	if err != nil {
		return nil, err
	}
	weights := make(map[string]float64, len(c.Regions))
	for _, r := range c.Regions {
		weights[r.ID] = r.Weight
	}
	return weights, nil
}

// AppointPresident 总统选举收尾时就任。
func (s *CountryService) AppointCountryPresident(ctx context.Context, countryID, citizenID string) error {
	return s.mutate(ctx, countryID, func(c *domain.Country) error {
		c.AppointPresident(citizenID)
		return nil
	})
}

// AppointCongress 国会选举收尾时就任整个名单。
func (s *CountryService) AppointCongress(ctx context.Context, countryID string, members []string) error {
	return s.mutate(ctx, countryID, func(c *domain.Country) error {
		c.AppointCongress(members)
		return nil
	})
}

// ProposeLaw 提案：资格校验后生成雪花 id，挂到待决列表。
func (s *CountryService) ProposeLaw(ctx context.Context, actorID, countryID, description string) (string, error) {
	rawID, err := s.idGen()
	if err != nil {
		return "", ErrUnavailable.WithCause(err)
	}
	lawID := strconv.FormatInt(rawID, 10)
	now := time.Now()

	err = s.mutate(ctx, countryID, func(c *domain.Country) error {
		if !c.CanProposeLaw(actorID) {
			return domain.ErrNotLawmaker
		}
		c.ProposeLaw(domain.Law{
			ID:          lawID,
			Proposer:    actorID,
			Description: description,
			ProposedAt:  now,
			Expires:     now.Add(defaultLawTTL),
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return lawID, nil
}

// SweepLaws 定时清扫：所有国家的到期待决提案移入历史。
func (s *CountryService) SweepLaws(ctx context.Context) error {
	countries, err := s.repo.List(ctx)
	if err != nil {
		return ErrUnavailable.WithCause(err)
	}
	now := time.Now()
	for _, country := range countries {
		id := country.ID
		err := s.mutate(ctx, id, func(c *domain.Country) error {
			if c.SweepExpiredLaws(now) == 0 {
				return errSweepNoop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errSweepNoop) {
			s.log.Warn("law sweep failed", zap.String("country", id), zap.Error(err))
		}
	}
	return nil
}

// errSweepNoop 让无事可做的国家跳过写回。
var errSweepNoop = errors.New("law sweep noop")

// ---- 内部 ----

func (s *CountryService) load(ctx context.Context, id string) (*domain.Country, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCountryNotFound) {
			return nil, ErrCountryNotFound.WithData("country", id)
		}
		return nil, ErrUnavailable.WithCause(err)
	}
	return c, nil
}

func (s *CountryService) mutate(ctx context.Context, id string, fn func(*domain.Country) error) error {
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		c, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return s.mapDomainErr(err)
		}
		if err := s.repo.Save(ctx, c); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return ErrUnavailable.WithCause(err)
		}
		return nil
	}
	return ErrConflict.WithData("country", id).WithCause(lastErr)
}

func (s *CountryService) mapDomainErr(err error) error {
	switch {
	case errors.Is(err, errSweepNoop):
		return errSweepNoop
	case errors.Is(err, domain.ErrNotLawmaker):
		return ErrNotLawmaker
	case errors.Is(err, domain.ErrNoRegions):
		return ErrInvalidState.WithCause(err)
	default:
		return errx.ErrInternal.WithCause(err)
	}
}
