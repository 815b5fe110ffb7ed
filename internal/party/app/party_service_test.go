package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"WorldRepublic/internal/party/domain"
	"WorldRepublic/modules/kit/logx"
)

type fakePartyRepo struct {
	store map[string]*domain.Party
}

func newFakeRepo() *fakePartyRepo {
	return &fakePartyRepo{store: make(map[string]*domain.Party)}
}

func (r *fakePartyRepo) Get(ctx context.Context, id string) (*domain.Party, error) {
	p, ok := r.store[id]
	if !ok {
		return nil, domain.ErrPartyNotFound
	}
	cp := *p
	cp.Members = append([]string(nil), p.Members...)
	return &cp, nil
}

func (r *fakePartyRepo) Create(ctx context.Context, p *domain.Party) error {
	cp := *p
	r.store[p.ID] = &cp
	return nil
}

func (r *fakePartyRepo) Save(ctx context.Context, p *domain.Party) error {
	cur, ok := r.store[p.ID]
	if !ok {
		return domain.ErrPartyNotFound
	}
	if cur.Version != p.Version {
		return domain.ErrVersionConflict
	}
	cp := *p
	cp.Version++
	r.store[p.ID] = &cp
	return nil
}

type fakeBinder struct {
	bound map[string]string
	err   error
}

func (b *fakeBinder) BindParty(ctx context.Context, citizenID, partyID string) error {
	if b.err != nil {
		return b.err
	}
	if b.bound == nil {
		b.bound = map[string]string{}
	}
	b.bound[citizenID] = partyID
	return nil
}

func TestJoin_镜像到公民文档(t *testing.T) {
	repo := newFakeRepo()
	repo.store["pt1"] = domain.NewParty("pt1", "Workers", "usa", time.Now())
	binder := &fakeBinder{}
	svc := NewPartyService(repo, binder, logx.NewZapLogger(nil))

	if err := svc.Join(context.Background(), "c1", "pt1"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if !repo.store["pt1"].IsMember("c1") {
		t.Fatalf("members=%v", repo.store["pt1"].Members)
	}
	if binder.bound["c1"] != "pt1" {
		t.Fatalf("公民侧应指向政党, got=%v", binder.bound)
	}

	if err := svc.Join(context.Background(), "c1", "pt1"); !errors.Is(err, ErrMembership) {
		t.Fatalf("重复入党应失败, got=%v", err)
	}
}

func TestJoin_镜像失败回滚党侧(t *testing.T) {
	repo := newFakeRepo()
	repo.store["pt1"] = domain.NewParty("pt1", "Workers", "usa", time.Now())
	binder := &fakeBinder{err: errors.New("citizen gone")}
	svc := NewPartyService(repo, binder, logx.NewZapLogger(nil))

	if err := svc.Join(context.Background(), "c1", "pt1"); err == nil {
		t.Fatalf("应失败")
	}
	if repo.store["pt1"].IsMember("c1") {
		t.Fatalf("镜像失败应回滚党侧, members=%v", repo.store["pt1"].Members)
	}
}

func TestLeave_清空公民侧引用(t *testing.T) {
	repo := newFakeRepo()
	p := domain.NewParty("pt1", "Workers", "usa", time.Now())
	if err := p.Join("c1"); err != nil {
		t.Fatalf("err=%v", err)
	}
	repo.store["pt1"] = p
	binder := &fakeBinder{bound: map[string]string{"c1": "pt1"}}
	svc := NewPartyService(repo, binder, logx.NewZapLogger(nil))

	err := svc.Leave(context.Background(), "c1", "pt1")
	if utilsIsElectionDay() {
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("选举日退党应锁定, got=%v", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if repo.store["pt1"].IsMember("c1") {
		t.Fatalf("members=%v", repo.store["pt1"].Members)
	}
	if binder.bound["c1"] != "" {
		t.Fatalf("公民侧应清空, got=%v", binder.bound)
	}
}

// Leave 走真实时钟；跑在 5/15/25 号时走锁定分支。
func utilsIsElectionDay() bool {
	switch time.Now().UTC().Day() {
	case 5, 15, 25:
		return true
	}
	return false
}
