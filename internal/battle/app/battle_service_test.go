package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"WorldRepublic/internal/battle/domain"
	"WorldRepublic/internal/ledger"
	"WorldRepublic/modules/kit/logx"
)

type fakeBattleRepo struct {
	store map[string]*domain.Battle
	// hitErr 模拟 Get 与 RecordHit 之间被结算器抢先写 winner 的竞态。
	hitErr error
}

func newFakeRepo() *fakeBattleRepo {
	return &fakeBattleRepo{store: make(map[string]*domain.Battle)}
}

func (r *fakeBattleRepo) Get(ctx context.Context, id string) (*domain.Battle, error) {
	b, ok := r.store[id]
	if !ok {
		return nil, domain.ErrBattleNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBattleRepo) ListDue(ctx context.Context, now time.Time) ([]*domain.Battle, error) {
	var out []*domain.Battle
	for id := range r.store {
		if r.store[id].Due(now) {
			b, _ := r.Get(ctx, id)
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBattleRepo) Create(ctx context.Context, b *domain.Battle) error {
	cp := *b
	r.store[b.ID] = &cp
	return nil
}

func (r *fakeBattleRepo) RecordHit(ctx context.Context, battleID string, side domain.Side, hit Hit) error {
	if r.hitErr != nil {
		return r.hitErr
	}
	b, ok := r.store[battleID]
	if !ok {
		return domain.ErrBattleNotFound
	}
	return b.RecordHit(side, hit, time.Now())
}

type fakeFighters struct {
	profiles map[string]FighterProfile
	deducts  int
	refunds  int
}

func (f *fakeFighters) FighterProfile(ctx context.Context, citizenID string) (FighterProfile, error) {
	p, ok := f.profiles[citizenID]
	if !ok {
		return FighterProfile{}, errors.New("citizen not found")
	}
	return p, nil
}

func (f *fakeFighters) DeductFightCost(ctx context.Context, citizenID string) error {
	f.deducts++
	p := f.profiles[citizenID]
	p.Health -= domain.FightHealthCost
	f.profiles[citizenID] = p
	return nil
}

func (f *fakeFighters) RefundFightCost(ctx context.Context, citizenID string) error {
	f.refunds++
	p := f.profiles[citizenID]
	p.Health += domain.FightHealthCost
	f.profiles[citizenID] = p
	return nil
}

type fakeIntel struct {
	rivals map[string]string
}

func (f *fakeIntel) RivalOf(ctx context.Context, countryID string) (string, error) {
	return f.rivals[countryID], nil
}

type fakeResolver struct {
	results map[string]Resolution
	err     error
	calls   int
	batches [][]string
}

func (f *fakeResolver) ResolveBatch(ctx context.Context, battleIDs []string) ([]Resolution, error) {
	f.calls++
	f.batches = append(f.batches, battleIDs)
	if f.err != nil {
		return nil, f.err
	}
	var out []Resolution
	for _, id := range battleIDs {
		if res, ok := f.results[id]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}

type fakeJournal struct {
	entries []ledger.JournalEntry
}

func (j *fakeJournal) Record(ctx context.Context, e ledger.JournalEntry) error {
	j.entries = append(j.entries, e)
	return nil
}

func newService(repo *fakeBattleRepo, fighters *fakeFighters, intel *fakeIntel, resolver *fakeResolver) (*BattleService, *fakeJournal) {
	journal := &fakeJournal{}
	return NewBattleService(repo, fighters, intel, resolver, journal, logx.NewZapLogger(nil)), journal
}

func seedBattle(repo *fakeBattleRepo, expiresAt time.Time) *domain.Battle {
	b := domain.NewBattle("b1", "atk-land", "def-land", "r1", 40, expiresAt, time.Now())
	repo.store["b1"] = b
	return b
}

func TestFight_落击并扣生命(t *testing.T) {
	repo := newFakeRepo()
	seedBattle(repo, time.Now().Add(time.Hour))
	fighters := &fakeFighters{profiles: map[string]FighterProfile{
		"c1": {Country: "atk-land", Level: 3, Strength: 7, Health: 100},
	}}
	svc, _ := newService(repo, fighters, &fakeIntel{rivals: map[string]string{}}, &fakeResolver{})

	if err := svc.Fight(context.Background(), "c1", "b1"); err != nil {
		t.Fatalf("err=%v", err)
	}
	b := repo.store["b1"]
	if b.Attackers.Damage["c1"] != 22 {
		t.Fatalf("damage=%v, want 22", b.Attackers.Damage)
	}
	if fighters.profiles["c1"].Health != 90 {
		t.Fatalf("health=%d, want 90", fighters.profiles["c1"].Health)
	}
}

func TestFight_宿敌加成(t *testing.T) {
	repo := newFakeRepo()
	seedBattle(repo, time.Now().Add(time.Hour))
	fighters := &fakeFighters{profiles: map[string]FighterProfile{
		"c1": {Country: "atk-land", Level: 3, Strength: 7, Health: 100},
	}}
	intel := &fakeIntel{rivals: map[string]string{"atk-land": "def-land"}}
	svc, _ := newService(repo, fighters, intel, &fakeResolver{})

	if err := svc.Fight(context.Background(), "c1", "b1"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if repo.store["b1"].Attackers.Damage["c1"] != 25 {
		t.Fatalf("宿敌加成 damage=%v, want 25", repo.store["b1"].Attackers.Damage)
	}
}

func TestFight_守方公民落到守方(t *testing.T) {
	repo := newFakeRepo()
	seedBattle(repo, time.Now().Add(time.Hour))
	fighters := &fakeFighters{profiles: map[string]FighterProfile{
		"d1": {Country: "def-land", Level: 1, Strength: 0, Health: 50},
	}}
	svc, _ := newService(repo, fighters, &fakeIntel{rivals: map[string]string{}}, &fakeResolver{})

	if err := svc.Fight(context.Background(), "d1", "b1"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if repo.store["b1"].Defenders.Damage["d1"] != 5 {
		t.Fatalf("damage=%v", repo.store["b1"].Defenders.Damage)
	}
}

func TestFight_生命不足拒绝(t *testing.T) {
	repo := newFakeRepo()
	seedBattle(repo, time.Now().Add(time.Hour))
	fighters := &fakeFighters{profiles: map[string]FighterProfile{
		"c1": {Country: "atk-land", Level: 3, Strength: 7, Health: 9},
	}}
	svc, _ := newService(repo, fighters, &fakeIntel{rivals: map[string]string{}}, &fakeResolver{})

	if err := svc.Fight(context.Background(), "c1", "b1"); !errors.Is(err, ErrFighterTooWeak) {
		t.Fatalf("got=%v", err)
	}
	if fighters.deducts != 0 {
		t.Fatalf("失败不应扣生命")
	}
}

func TestFight_中立国拒绝(t *testing.T) {
	repo := newFakeRepo()
	seedBattle(repo, time.Now().Add(time.Hour))
	fighters := &fakeFighters{profiles: map[string]FighterProfile{
		"c1": {Country: "neutral", Level: 3, Strength: 7, Health: 100},
	}}
	svc, _ := newService(repo, fighters, &fakeIntel{rivals: map[string]string{}}, &fakeResolver{})

	if err := svc.Fight(context.Background(), "c1", "b1"); !errors.Is(err, ErrNotBelligerent) {
		t.Fatalf("got=%v", err)
	}
}

func TestFight_战斗刚结算则退回生命(t *testing.T) {
	repo := newFakeRepo()
	seedBattle(repo, time.Now().Add(time.Hour))
	repo.hitErr = domain.ErrBattleNotActive
	fighters := &fakeFighters{profiles: map[string]FighterProfile{
		"c1": {Country: "atk-land", Level: 3, Strength: 7, Health: 100},
	}}
	svc, _ := newService(repo, fighters, &fakeIntel{rivals: map[string]string{}}, &fakeResolver{})

	err := svc.Fight(context.Background(), "c1", "b1")
	if !errors.Is(err, ErrBattleOver) {
		t.Fatalf("got=%v", err)
	}
	if fighters.deducts != 1 || fighters.refunds != 1 {
		t.Fatalf("落击被拒后应退回生命, deducts=%d refunds=%d", fighters.deducts, fighters.refunds)
	}
	if fighters.profiles["c1"].Health != 100 {
		t.Fatalf("health=%d, want 100", fighters.profiles["c1"].Health)
	}
}

func TestResolveDue_记战利品流水(t *testing.T) {
	repo := newFakeRepo()
	b := seedBattle(repo, time.Now().Add(-time.Hour))
	_ = b
	resolver := &fakeResolver{results: map[string]Resolution{
		"b1": {BattleID: "b1", Winner: "atk-land", AttackerWon: true, Region: "r1", Spoil: 50.5},
	}}
	svc, journal := newService(repo, &fakeFighters{}, &fakeIntel{rivals: map[string]string{}}, resolver)

	if err := svc.ResolveDue(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
	if resolver.calls != 1 {
		t.Fatalf("calls=%d", resolver.calls)
	}
	if len(journal.entries) != 1 || journal.entries[0].Kind != ledger.JournalWarSpoil {
		t.Fatalf("应记一条 war_spoil 流水, got=%v", journal.entries)
	}
	if journal.entries[0].Amount != 50.5 {
		t.Fatalf("amount=%v", journal.entries[0].Amount)
	}
}

func TestResolveDue_守方保住不记流水(t *testing.T) {
	repo := newFakeRepo()
	seedBattle(repo, time.Now().Add(-time.Hour))
	resolver := &fakeResolver{results: map[string]Resolution{
		"b1": {BattleID: "b1", Winner: "def-land", AttackerWon: false},
	}}
	svc, journal := newService(repo, &fakeFighters{}, &fakeIntel{rivals: map[string]string{}}, resolver)

	if err := svc.ResolveDue(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(journal.entries) != 0 {
		t.Fatalf("守住不应记流水, got=%v", journal.entries)
	}
}

func TestResolveDue_已结算空操作(t *testing.T) {
	repo := newFakeRepo()
	seedBattle(repo, time.Now().Add(-time.Hour))
	// 另一个结算器抢先写完 winner：批内被跳过，结果为空
	resolver := &fakeResolver{}
	svc, journal := newService(repo, &fakeFighters{}, &fakeIntel{rivals: map[string]string{}}, resolver)

	if err := svc.ResolveDue(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(journal.entries) != 0 {
		t.Fatalf("空操作不应记流水")
	}
}

func TestResolveDue_整批同一事务(t *testing.T) {
	repo := newFakeRepo()
	seedBattle(repo, time.Now().Add(-time.Hour))
	b2 := domain.NewBattle("b2", "atk-land", "def-land", "r2", 40, time.Now().Add(-time.Hour), time.Now())
	repo.store["b2"] = b2
	resolver := &fakeResolver{results: map[string]Resolution{
		"b1": {BattleID: "b1", Winner: "atk-land", AttackerWon: true, Region: "r1", Spoil: 10},
		"b2": {BattleID: "b2", Winner: "atk-land", AttackerWon: true, Region: "r2", Spoil: 20},
	}}
	svc, journal := newService(repo, &fakeFighters{}, &fakeIntel{rivals: map[string]string{}}, resolver)

	if err := svc.ResolveDue(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
	if resolver.calls != 1 {
		t.Fatalf("两场到期战斗应合进一次事务, calls=%d", resolver.calls)
	}
	if len(resolver.batches[0]) != 2 {
		t.Fatalf("batch=%v", resolver.batches[0])
	}
	if len(journal.entries) != 2 {
		t.Fatalf("entries=%v", journal.entries)
	}
}

func TestResolveDue_中途失败整批回滚(t *testing.T) {
	repo := newFakeRepo()
	seedBattle(repo, time.Now().Add(-time.Hour))
	b2 := domain.NewBattle("b2", "atk-land", "def-land", "r2", 40, time.Now().Add(-time.Hour), time.Now())
	repo.store["b2"] = b2
	resolver := &fakeResolver{err: errors.New("transaction aborted")}
	svc, journal := newService(repo, &fakeFighters{}, &fakeIntel{rivals: map[string]string{}}, resolver)

	if err := svc.ResolveDue(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got=%v", err)
	}
	if len(journal.entries) != 0 {
		t.Fatalf("回滚的批不应记任何流水, got=%v", journal.entries)
	}
}
