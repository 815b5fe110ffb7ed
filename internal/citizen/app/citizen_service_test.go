package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"WorldRepublic/internal/citizen/domain"
	"WorldRepublic/internal/ledger"
	"WorldRepublic/modules/kit/logx"
)

// ---- 测试替身 ----

type fakeCitizenRepo struct {
	store map[string]*domain.Citizen
	// 前 failSaves 次 Save 返回版本冲突（模拟并发写）。
	failSaves int
	// saveErr 非空时 Save 固定失败（模拟存储不可用）。
	saveErr error
	saves   int
}

func newFakeRepo() *fakeCitizenRepo {
	return &fakeCitizenRepo{store: make(map[string]*domain.Citizen)}
}

func (r *fakeCitizenRepo) Get(ctx context.Context, id string) (*domain.Citizen, error) {
	c, ok := r.store[id]
	if !ok {
		return nil, domain.ErrCitizenNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCitizenRepo) GetByUsername(ctx context.Context, username string) (*domain.Citizen, error) {
	for _, c := range r.store {
		if c.Username == username {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCitizenNotFound
}

func (r *fakeCitizenRepo) Create(ctx context.Context, c *domain.Citizen) error {
	if _, ok := r.store[c.ID]; ok {
		return domain.ErrVersionConflict
	}
	cp := *c
	r.store[c.ID] = &cp
	return nil
}

func (r *fakeCitizenRepo) Save(ctx context.Context, c *domain.Citizen) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	if r.failSaves > 0 {
		r.failSaves--
		return domain.ErrVersionConflict
	}
	cur, ok := r.store[c.ID]
	if !ok {
		return domain.ErrCitizenNotFound
	}
	if cur.Version != c.Version {
		return domain.ErrVersionConflict
	}
	cp := *c
	cp.Version++
	r.store[c.ID] = &cp
	return nil
}

type fakeDirectory struct{}

func (fakeDirectory) CurrencyOf(ctx context.Context, countryID string) (string, error) {
	return strings.ToUpper(countryID) + "D", nil
}

func (fakeDirectory) StartingRegionOf(ctx context.Context, countryID string) (string, error) {
	return countryID + "-capital", nil
}

type fakePusher struct {
	pushed []string
}

func (p *fakePusher) Push(citizenID string, alert any) {
	p.pushed = append(p.pushed, citizenID)
}

type fakeJournal struct {
	entries []ledger.JournalEntry
}

func (j *fakeJournal) Record(ctx context.Context, e ledger.JournalEntry) error {
	j.entries = append(j.entries, e)
	return nil
}

func newService(repo *fakeCitizenRepo) (*CitizenService, *fakePusher, *fakeJournal) {
	pusher := &fakePusher{}
	journal := &fakeJournal{}
	idGen := func() (int64, error) { return 1001, nil }
	svc := NewCitizenService(repo, fakeDirectory{}, journal, pusher, idGen, logx.NewZapLogger(nil))
	return svc, pusher, journal
}

func seed(repo *fakeCitizenRepo, id, username string) *domain.Citizen {
	c := domain.NewCitizen(id, username, "usa", "usa-capital", "USAD", time.Now().Add(-time.Hour))
	repo.store[id] = c
	return c
}

// ---- 用例 ----

func TestRegister_用户名冲突(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := newService(repo)
	ctx := context.Background()

	c, err := svc.Register(ctx, "c1", "alice", "usa")
	if err != nil {
		t.Fatalf("首次注册应成功, err=%v", err)
	}
	if c.Wallet.Amount("USAD") != 25 {
		t.Fatalf("初始母国货币持仓=%v, want 25", c.Wallet.Amount("USAD"))
	}

	_, err = svc.Register(ctx, "c2", "alice", "usa")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("重名注册应失败, got=%v", err)
	}
}

func TestTrain_版本冲突重试后成功(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "c1", "alice")
	repo.failSaves = 2
	svc, _, _ := newService(repo)

	if err := svc.Train(context.Background(), "c1"); err != nil {
		t.Fatalf("重试内应成功, err=%v", err)
	}
	if repo.saves != 3 {
		t.Fatalf("saves=%d, want 3", repo.saves)
	}
	if repo.store["c1"].Strength != 1 {
		t.Fatalf("Strength=%d, want 1", repo.store["c1"].Strength)
	}
}

func TestTrain_冲突超限返回CONFLICT(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "c1", "alice")
	repo.failSaves = 99
	svc, _, _ := newService(repo)

	err := svc.Train(context.Background(), "c1")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("重试耗尽应返回冲突, got=%v", err)
	}
}

func TestTrain_公民不存在(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := newService(repo)

	err := svc.Train(context.Background(), "ghost")
	if !errors.Is(err, ErrCitizenNotFound) {
		t.Fatalf("got=%v", err)
	}
}

func TestCollectRewards_记流水(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "c1", "alice")
	svc, _, journal := newService(repo)

	if err := svc.CollectRewards(context.Background(), "c1"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(journal.entries) != 1 || journal.entries[0].Kind != ledger.JournalReward {
		t.Fatalf("应记一条 reward 流水, got=%v", journal.entries)
	}
	if repo.store["c1"].Gold != 5.5 {
		t.Fatalf("Gold=%v, want 5.5", repo.store["c1"].Gold)
	}
}

func TestDonate_金币守恒且接收方收到告警(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "c1", "alice")
	seed(repo, "c2", "bob")
	svc, pusher, journal := newService(repo)

	if err := svc.Donate(context.Background(), "c1", "c2", "gold", 2.5); err != nil {
		t.Fatalf("err=%v", err)
	}
	from, to := repo.store["c1"], repo.store["c2"]
	if from.Gold != 2.5 || to.Gold != 7.5 {
		t.Fatalf("转账后 from=%v to=%v", from.Gold, to.Gold)
	}
	if len(to.Alerts) != 1 || to.Alerts[0].Type != "DONATION" {
		t.Fatalf("接收方应有捐赠告警, got=%v", to.Alerts)
	}
	if len(pusher.pushed) != 1 || pusher.pushed[0] != "c2" {
		t.Fatalf("告警应推给 c2, got=%v", pusher.pushed)
	}
	if len(journal.entries) != 1 || journal.entries[0].Kind != ledger.JournalDonate {
		t.Fatalf("应记一条 donate 流水, got=%v", journal.entries)
	}
}

func TestDonate_余额不足不变更(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "c1", "alice")
	seed(repo, "c2", "bob")
	svc, _, journal := newService(repo)

	err := svc.Donate(context.Background(), "c1", "c2", "gold", 100)
	if !errors.Is(err, ErrInsufficient) {
		t.Fatalf("got=%v", err)
	}
	if repo.store["c1"].Gold != 5 || repo.store["c2"].Gold != 5 {
		t.Fatalf("失败的转账不应改变双方余额")
	}
	if len(journal.entries) != 0 {
		t.Fatalf("失败不应记流水")
	}
}

func TestDonate_接收方不存在则补偿发起方(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "c1", "alice")
	svc, _, journal := newService(repo)

	err := svc.Donate(context.Background(), "c1", "ghost", "gold", 2)
	if !errors.Is(err, ErrCitizenNotFound) {
		t.Fatalf("got=%v", err)
	}
	if repo.store["c1"].Gold != 5 {
		t.Fatalf("补偿后发起方余额应复原, got=%v", repo.store["c1"].Gold)
	}
	if len(journal.entries) != 0 {
		t.Fatalf("失败不应记流水")
	}
}

func TestDonate_货币转账走钱包(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "c1", "alice")
	seed(repo, "c2", "bob")
	svc, _, _ := newService(repo)

	if err := svc.Donate(context.Background(), "c1", "c2", "USAD", 25); err != nil {
		t.Fatalf("err=%v", err)
	}
	if repo.store["c1"].Wallet.Amount("USAD") != 0 {
		t.Fatalf("扣光后余额应为 0")
	}
	if len(repo.store["c1"].Wallet) != 0 {
		t.Fatalf("归零后钱包条目应删除, got=%v", repo.store["c1"].Wallet)
	}
	if repo.store["c2"].Wallet.Amount("USAD") != 50 {
		t.Fatalf("接收方余额=%v, want 50", repo.store["c2"].Wallet.Amount("USAD"))
	}
}

func TestGift_物品转移与补偿(t *testing.T) {
	repo := newFakeRepo()
	c1 := seed(repo, "c1", "alice")
	seed(repo, "c2", "bob")
	c1.AddItem("bread", 3)
	svc, _, _ := newService(repo)

	if err := svc.Gift(context.Background(), "c1", "c2", "bread", 2); err != nil {
		t.Fatalf("err=%v", err)
	}
	if repo.store["c1"].Inventory[0].Quantity != 1 {
		t.Fatalf("from 剩余=%v", repo.store["c1"].Inventory)
	}
	if repo.store["c2"].Inventory[0].Quantity != 2 {
		t.Fatalf("to 收到=%v", repo.store["c2"].Inventory)
	}

	// 接收方不存在：物品退回
	if err := svc.Gift(context.Background(), "c1", "ghost", "bread", 1); err == nil {
		t.Fatalf("应失败")
	}
	if repo.store["c1"].Inventory[0].Quantity != 1 {
		t.Fatalf("补偿后物品应退回, got=%v", repo.store["c1"].Inventory)
	}
}

func TestAcceptFriendRequest_双向落账(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "c1", "alice")
	seed(repo, "c2", "bob")
	svc, _, _ := newService(repo)
	ctx := context.Background()

	if err := svc.SendFriendRequest(ctx, "c1", "c2"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(repo.store["c2"].PendingFriends) != 1 {
		t.Fatalf("请求应挂在对方待处理列表")
	}

	if err := svc.AcceptFriendRequest(ctx, "c2", "c1"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(repo.store["c2"].Friends) != 1 || repo.store["c2"].Friends[0] != "c1" {
		t.Fatalf("接受方好友=%v", repo.store["c2"].Friends)
	}
	if len(repo.store["c1"].Friends) != 1 || repo.store["c1"].Friends[0] != "c2" {
		t.Fatalf("请求方镜像好友=%v", repo.store["c1"].Friends)
	}
}

func TestAcceptFriendRequest_镜像失败回滚(t *testing.T) {
	repo := newFakeRepo()
	c2 := seed(repo, "c2", "bob")
	c2.PendingFriends = []string{"ghost"}
	svc, _, _ := newService(repo)

	err := svc.AcceptFriendRequest(context.Background(), "c2", "ghost")
	if !errors.Is(err, ErrCitizenNotFound) {
		t.Fatalf("got=%v", err)
	}
	after := repo.store["c2"]
	if len(after.Friends) != 0 || len(after.PendingFriends) != 1 {
		t.Fatalf("镜像失败后应回滚, friends=%v pending=%v", after.Friends, after.PendingFriends)
	}
}

func TestCreateThread_双方各有一份镜像(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "c1", "alice")
	seed(repo, "c2", "bob")
	svc, _, _ := newService(repo)

	threadID, err := svc.CreateThread(context.Background(), "c1", "c2", "hello", "hi bob")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if threadID == "" {
		t.Fatalf("应返回会话 id")
	}
	for _, id := range []string{"c1", "c2"} {
		c := repo.store[id]
		if len(c.Threads) != 1 || c.Threads[0].ID != threadID {
			t.Fatalf("%s 应有会话镜像, got=%v", id, c.Threads)
		}
		if len(c.Threads[0].Messages) != 1 {
			t.Fatalf("应包含首条消息")
		}
	}
}

func TestSendMessage_镜像到所有参与者(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "c1", "alice")
	seed(repo, "c2", "bob")
	svc, _, _ := newService(repo)
	ctx := context.Background()

	threadID, err := svc.CreateThread(ctx, "c1", "c2", "hello", "hi")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if err := svc.SendMessage(ctx, "c2", threadID, "hi alice"); err != nil {
		t.Fatalf("err=%v", err)
	}
	for _, id := range []string{"c1", "c2"} {
		if got := len(repo.store[id].Threads[0].Messages); got != 2 {
			t.Fatalf("%s 消息数=%d, want 2", id, got)
		}
	}
}

func TestSubscribe_作者必须存在且不可重复(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "c1", "alice")
	seed(repo, "c2", "bob")
	svc, _, _ := newService(repo)
	ctx := context.Background()

	if err := svc.Subscribe(ctx, "c1", "ghost"); !errors.Is(err, ErrCitizenNotFound) {
		t.Fatalf("got=%v", err)
	}
	if err := svc.Subscribe(ctx, "c1", "c2"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if err := svc.Subscribe(ctx, "c1", "c2"); !errors.Is(err, ErrSubscription) {
		t.Fatalf("重复订阅应失败, got=%v", err)
	}
	if err := svc.Unsubscribe(ctx, "c1", "c2"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if err := svc.Unsubscribe(ctx, "c1", "c2"); !errors.Is(err, ErrSubscription) {
		t.Fatalf("未订阅时取消应失败, got=%v", err)
	}
}
