package app

import (
	"context"
	"errors"
	"time"

	"WorldRepublic/internal/company/domain"
	"WorldRepublic/internal/ledger"
	"WorldRepublic/modules/kit/errx"
	"WorldRepublic/modules/kit/logx"

	"go.uber.org/zap"
)

const casRetries = 3

type CompanyService struct {
	repo     CompanyRepo
	citizens CitizenGateway
	journal  ledger.Journal
	offerID  OfferIDGen
	log      logx.Logger
}

func NewCompanyService(repo CompanyRepo, citizens CitizenGateway, journal ledger.Journal, offerID OfferIDGen, log logx.Logger) *CompanyService {
	return &CompanyService{
		repo:     repo,
		citizens: citizens,
		journal:  journal,
		offerID:  offerID,
		log:      log,
	}
}

// Create 建立公司（种子数据与后台用，不在动作闭集内）。
func (s *CompanyService) Create(ctx context.Context, id, name, ceo, country, region, currency, product string) (*domain.Company, error) {
	c := domain.NewCompany(id, name, ceo, country, region, currency, product, time.Now())
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, ErrUnavailable.WithCause(err)
	}
	return c, nil
}

func (s *CompanyService) Get(ctx context.Context, id string) (*domain.Company, error) {
	return s.load(ctx, id)
}

// ---- 报价管理（仅 CEO）----

func (s *CompanyService) CreateJobOffer(ctx context.Context, actorID, companyID, title string, wage float64, positions int) (string, error) {
	if positions <= 0 || wage <= 0 {
		return "", ErrInvalidState.WithData("reason", "wage and positions must be positive")
	}
	offerID := s.offerID()
	err := s.mutateAs(ctx, actorID, companyID, func(c *domain.Company) error {
		c.AddJobOffer(domain.JobOffer{ID: offerID, Title: title, Wage: ledger.Round(wage), Positions: positions})
		return nil
	})
	if err != nil {
		return "", err
	}
	return offerID, nil
}

func (s *CompanyService) EditJobOffer(ctx context.Context, actorID, companyID, offerID, title string, wage float64, positions int) error {
	return s.mutateAs(ctx, actorID, companyID, func(c *domain.Company) error {
		return c.EditJobOffer(offerID, title, wage, positions)
	})
}

func (s *CompanyService) DeleteJobOffer(ctx context.Context, actorID, companyID, offerID string) error {
	return s.mutateAs(ctx, actorID, companyID, func(c *domain.Company) error {
		return c.DeleteJobOffer(offerID)
	})
}

func (s *CompanyService) CreateProductOffer(ctx context.Context, actorID, companyID, itemID string, price float64, quantity int) (string, error) {
	if quantity <= 0 || price <= 0 {
		return "", ErrInvalidState.WithData("reason", "price and quantity must be positive")
	}
	offerID := s.offerID()
	err := s.mutateAs(ctx, actorID, companyID, func(c *domain.Company) error {
		return c.AddProductOffer(domain.ProductOffer{ID: offerID, ItemID: itemID, Price: price, Quantity: quantity})
	})
	if err != nil {
		return "", err
	}
	return offerID, nil
}

func (s *CompanyService) EditProductOffer(ctx context.Context, actorID, companyID, offerID string, price float64, quantity int) error {
	return s.mutateAs(ctx, actorID, companyID, func(c *domain.Company) error {
		return c.EditProductOffer(offerID, price, quantity)
	})
}

func (s *CompanyService) DeleteProductOffer(ctx context.Context, actorID, companyID, offerID string) error {
	return s.mutateAs(ctx, actorID, companyID, func(c *domain.Company) error {
		return c.DeleteProductOffer(offerID)
	})
}

// ---- 雇佣与结薪 ----

// ApplyJob 求职：消耗名额、登记雇员，再把公民的工作指过来；
// 公民侧失败时退回名额。
func (s *CompanyService) ApplyJob(ctx context.Context, citizenID, companyID, offerID string) error {
	var taken domain.JobOffer
	err := s.mutate(ctx, companyID, func(c *domain.Company) error {
		offer, err := c.TakeJob(offerID, citizenID)
		if err != nil {
			return err
		}
		taken = offer
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.citizens.BindJob(ctx, citizenID, companyID, taken.Title, taken.Wage); err != nil {
		compErr := s.mutate(ctx, companyID, func(c *domain.Company) error {
			c.RestoreJobSlot(taken, citizenID)
			return nil
		})
		if compErr != nil {
			s.log.Error("apply_job compensate failed",
				zap.String("company", companyID), zap.String("citizen", citizenID), zap.Error(compErr))
		}
		return err
	}
	return nil
}

// Work 工作结薪：雇主出工资与入产出，公民入账工资并推冷却。
// 公民侧失败时撤回雇主侧变更。
func (s *CompanyService) Work(ctx context.Context, citizenID string) error {
	profile, err := s.citizens.WorkProfile(ctx, citizenID)
	if err != nil {
		return err
	}
	if profile.Employer == "" {
		return ErrInvalidState.WithData("reason", "citizen has no job")
	}
	if time.Now().Before(profile.CanWork) {
		return ErrInvalidState.WithData("reason", "work cooldown active")
	}

	yield := domain.WorkYield(profile.Health)
	wage := ledger.Round(profile.Wage)
	var currency, product string
	err = s.mutate(ctx, profile.Employer, func(c *domain.Company) error {
		if err := c.PayWage(wage); err != nil {
			return err
		}
		c.AddStock(c.Product, yield)
		currency, product = c.Currency, c.Product
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.citizens.Paycheck(ctx, citizenID, currency); err != nil {
		compErr := s.mutate(ctx, profile.Employer, func(c *domain.Company) error {
			c.CreditFunds(wage)
			return c.RemoveStock(product, yield)
		})
		if compErr != nil {
			s.log.Error("work compensate failed",
				zap.String("company", profile.Employer), zap.String("citizen", citizenID), zap.Error(compErr))
		}
		return err
	}

	s.record(ctx, ledger.JournalEntry{
		Kind:      ledger.JournalWork,
		FromOwner: "company:" + profile.Employer,
		ToOwner:   "citizen:" + citizenID,
		Currency:  currency,
		Amount:    wage,
	})
	return nil
}

// BuyItem 市场购买：卖家侧出库入账，买家侧付款入包；
// 买家侧失败时卖家侧整体回滚。守恒：买家恰好少 round(q×p)，公司恰好多同额。
func (s *CompanyService) BuyItem(ctx context.Context, buyerID, companyID, offerID string, quantity int) error {
	var (
		cost     float64
		price    float64
		itemID   string
		currency string
	)
	err := s.mutate(ctx, companyID, func(c *domain.Company) error {
		for _, o := range c.ProductOffers {
			if o.ID == offerID {
				price = o.Price
			}
		}
		got, item, err := c.Reserve(offerID, quantity)
		if err != nil {
			return err
		}
		c.CreditFunds(got)
		cost, itemID, currency = got, item, c.Currency
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.citizens.PayAndReceive(ctx, buyerID, currency, cost, itemID, quantity); err != nil {
		compErr := s.mutate(ctx, companyID, func(c *domain.Company) error {
			c.Restock(offerID, itemID, price, quantity)
			next, ok := c.Funds.Debit(c.Currency, cost)
			if !ok {
				return domain.ErrInsufficientFunds
			}
			c.Funds = next
			return nil
		})
		if compErr != nil {
			s.log.Error("buy_item compensate failed",
				zap.String("company", companyID), zap.String("offer", offerID), zap.Error(compErr))
		}
		return err
	}

	s.record(ctx, ledger.JournalEntry{
		Kind:      ledger.JournalPurchase,
		FromOwner: "citizen:" + buyerID,
		ToOwner:   "company:" + companyID,
		Currency:  currency,
		Amount:    cost,
		Ref:       offerID,
	})
	return nil
}

// ---- 内部 ----

func (s *CompanyService) load(ctx context.Context, id string) (*domain.Company, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCompanyNotFound) {
			return nil, ErrCompanyNotFound.WithData("company", id)
		}
		return nil, ErrUnavailable.WithCause(err)
	}
	return c, nil
}

// mutate 读-改-写公司文档，CAS 冲突时重试。
func (s *CompanyService) mutate(ctx context.Context, id string, fn func(*domain.Company) error) error {
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
	return ErrConflict.WithData("company", id).WithCause(lastErr)
}

// mutateAs 先做 CEO 授权再变更（报价管理专用）。
func (s *CompanyService) mutateAs(ctx context.Context, actorID, companyID string, fn func(*domain.Company) error) error {
	return s.mutate(ctx, companyID, func(c *domain.Company) error {
		if !c.IsCEO(actorID) {
			return domain.ErrNotCEO
		}
		return fn(c)
	})
}

func (s *CompanyService) record(ctx context.Context, e ledger.JournalEntry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, e); err != nil {
		s.log.Warn("journal record failed", zap.String("kind", e.Kind), zap.Error(err))
	}
}

func (s *CompanyService) mapDomainErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotCEO):
		return ErrNotCEO
	case errors.Is(err, domain.ErrOfferNotFound):
		return ErrOfferNotFound
	case errors.Is(err, domain.ErrAlreadyEmployed):
		return ErrAlreadyEmployed
	case errors.Is(err, domain.ErrNoPositions),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrQuantityOverStock):
		return ErrInsufficient.WithCause(err)
	default:
		return errx.ErrInternal.WithCause(err)
	}
}
