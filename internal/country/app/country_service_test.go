package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"WorldRepublic/internal/country/domain"
	"WorldRepublic/modules/kit/logx"
)

type fakeCountryRepo struct {
	store map[string]*domain.Country
}

func newFakeRepo() *fakeCountryRepo {
	return &fakeCountryRepo{store: make(map[string]*domain.Country)}
}

func (r *fakeCountryRepo) Get(ctx context.Context, id string) (*domain.Country, error) {
	c, ok := r.store[id]
	if !ok {
		return nil, domain.ErrCountryNotFound
	}
	cp := *c
	cp.Regions = append([]domain.Region(nil), c.Regions...)
	cp.PendingLaws = append([]domain.Law(nil), c.PendingLaws...)
	cp.PastLaws = append([]domain.Law(nil), c.PastLaws...)
	return &cp, nil
}

func (r *fakeCountryRepo) List(ctx context.Context) ([]*domain.Country, error) {
	out := make([]*domain.Country, 0, len(r.store))
	for id := range r.store {
		c, _ := r.Get(ctx, id)
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCountryRepo) Create(ctx context.Context, c *domain.Country) error {
	cp := *c
	r.store[c.ID] = &cp
	return nil
}

func (r *fakeCountryRepo) Save(ctx context.Context, c *domain.Country) error {
	cur, ok := r.store[c.ID]
	if !ok {
		return domain.ErrCountryNotFound
	}
	if cur.Version != c.Version {
		return domain.ErrVersionConflict
	}
	cp := *c
	cp.Version++
	r.store[c.ID] = &cp
	return nil
}

func seedCountry(repo *fakeCountryRepo) *domain.Country {
	c := domain.NewCountry("usa", "USA", "USD", "rival-land", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c.Regions = []domain.Region{{ID: "r1", Name: "East", Weight: 1}}
	c.Government = domain.Government{President: "p1", Congress: []string{"g1"}}
	repo.store["usa"] = c
	return c
}

func newService(repo *fakeCountryRepo) *CountryService {
	next := int64(0)
	idGen := func() (int64, error) { next++; return next, nil }
	return NewCountryService(repo, idGen, logx.NewZapLogger(nil))
}

func TestProposeLaw_资格与落账(t *testing.T) {
	repo := newFakeRepo()
	seedCountry(repo)
	svc := newService(repo)
	ctx := context.Background()

	if _, err := svc.ProposeLaw(ctx, "nobody", "usa", "tax cut"); !errors.Is(err, ErrNotLawmaker) {
		t.Fatalf("平民提案应失败, got=%v", err)
	}

	lawID, err := svc.ProposeLaw(ctx, "p1", "usa", "tax cut")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if lawID == "" {
		t.Fatalf("应返回法律 id")
	}
	laws := repo.store["usa"].PendingLaws
	if len(laws) != 1 || laws[0].Proposer != "p1" || laws[0].ID != lawID {
		t.Fatalf("pending=%v", laws)
	}
	if !laws[0].Expires.After(laws[0].ProposedAt) {
		t.Fatalf("提案应有有效期")
	}
}

func TestProposeLaw_国家不存在(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	if _, err := svc.ProposeLaw(context.Background(), "p1", "ghost", "x"); !errors.Is(err, ErrCountryNotFound) {
		t.Fatalf("got=%v", err)
	}
}

func TestSweepLaws_到期移入历史(t *testing.T) {
	repo := newFakeRepo()
	c := seedCountry(repo)
	now := time.Now()
	c.PendingLaws = []domain.Law{
		{ID: "l1", Expires: now.Add(-time.Hour)},
		{ID: "l2", Expires: now.Add(time.Hour)},
	}
	svc := newService(repo)

	if err := svc.SweepLaws(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
	after := repo.store["usa"]
	if len(after.PendingLaws) != 1 || after.PendingLaws[0].ID != "l2" {
		t.Fatalf("pending=%v", after.PendingLaws)
	}
	if len(after.PastLaws) != 1 || after.PastLaws[0].ID != "l1" {
		t.Fatalf("past=%v", after.PastLaws)
	}

	// 无事可做时不写回（版本不前进）
	v := after.Version
	if err := svc.SweepLaws(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
	if repo.store["usa"].Version != v {
		t.Fatalf("空清扫不应写回")
	}
}

func TestStartingRegionOf_无国土失败(t *testing.T) {
	repo := newFakeRepo()
	c := seedCountry(repo)
	svc := newService(repo)
	ctx := context.Background()

	region, err := svc.StartingRegionOf(ctx, "usa")
	if err != nil || region != "r1" {
		t.Fatalf("region=%q err=%v", region, err)
	}

	c.Regions = nil
	repo.store["usa"] = c
	if _, err := svc.StartingRegionOf(ctx, "usa"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got=%v", err)
	}
}
