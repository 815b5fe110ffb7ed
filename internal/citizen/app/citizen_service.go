package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"WorldRepublic/internal/citizen/domain"
	"WorldRepublic/internal/ledger"
	"WorldRepublic/modules/kit/errx"
	"WorldRepublic/modules/kit/logx"

	"go.uber.org/zap"
)

// 版本冲突重试次数。公民自身的动作经 actor 串行化，冲突主要来自
// 跨公民转账时对方文档的并发写。
const casRetries = 3

type CitizenService struct {
	repo      CitizenRepo
	countries CountryDirectory
	journal   ledger.Journal
	pusher    AlertPusher
	idGen     IDGen
	log       logx.Logger
}

func NewCitizenService(repo CitizenRepo, countries CountryDirectory, journal ledger.Journal, pusher AlertPusher, idGen IDGen, log logx.Logger) *CitizenService {
	return &CitizenService{
		repo:      repo,
		countries: countries,
		journal:   journal,
		pusher:    pusher,
		idGen:     idGen,
		log:       log,
	}
}

// Register 注册新公民：唯一用户名 + 母国初始地区与货币持仓。
func (s *CitizenService) Register(ctx context.Context, id, username, country string) (*domain.Citizen, error) {
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrCitizenNotFound) {
		return nil, ErrUnavailable.WithCause(err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken.WithData("username", username)
	}

	currency, err := s.countries.CurrencyOf(ctx, country)
	if err != nil {
		return nil, ErrUnavailable.WithCause(err)
	}
	region, err := s.countries.StartingRegionOf(ctx, country)
	if err != nil {
		return nil, ErrUnavailable.WithCause(err)
	}

	c := domain.NewCitizen(id, username, country, region, currency, time.Now())
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, ErrUsernameTaken.WithData("username", username)
		}
		return nil, ErrUnavailable.WithCause(err)
	}
	return c, nil
}

// Train 每日训练。
func (s *CitizenService) Train(ctx context.Context, uid string) error {
	return s.mutate(ctx, uid, func(c *domain.Citizen, now time.Time) error {
		return c.Train(now)
	})
}

// Heal 每日治疗。
func (s *CitizenService) Heal(ctx context.Context, uid string) error {
	return s.mutate(ctx, uid, func(c *domain.Citizen, now time.Time) error {
		return c.Heal(now)
	})
}

// CollectRewards 每日奖励，金币入账记流水。
func (s *CitizenService) CollectRewards(ctx context.Context, uid string) error {
	err := s.mutate(ctx, uid, func(c *domain.Citizen, now time.Time) error {
		return c.CollectRewards(now)
	})
	if err != nil {
		return err
	}
	s.record(ctx, ledger.JournalEntry{
		Kind:     ledger.JournalReward,
		ToOwner:  "citizen:" + uid,
		Currency: "gold",
		Amount:   0.5,
	})
	return nil
}

// SendFriendRequest 把请求挂到对方的待处理列表并告警。
func (s *CitizenService) SendFriendRequest(ctx context.Context, fromID, toID string) error {
	from, err := s.load(ctx, fromID)
	if err != nil {
		return err
	}

	return s.mutateOther(ctx, toID, func(target *domain.Citizen, now time.Time) error {
		if err := target.ReceiveFriendRequest(fromID); err != nil {
			return err
		}
		target.AddAlert("FRIEND_REQUEST", from.Username+" sent you a friend request", now)
		return nil
	})
}

// AcceptFriendRequest 先在自己文档落账，再镜像写请求方；
// 镜像失败时回滚自己的变更（两边要么都有这条好友，要么都没有）。
func (s *CitizenService) AcceptFriendRequest(ctx context.Context, uid, fromID string) error {
	if err := s.mutate(ctx, uid, func(c *domain.Citizen, now time.Time) error {
		return c.AcceptFriendRequest(fromID)
	}); err != nil {
		return err
	}

	err := s.mutateOther(ctx, fromID, func(requester *domain.Citizen, now time.Time) error {
		requester.AddFriend(uid)
		requester.AddAlert("FRIEND_ACCEPT", "Your friend request was accepted", now)
		return nil
	})
	if err == nil {
		return nil
	}

	// 补偿：把自己的变更撤回去。
	compErr := s.mutate(ctx, uid, func(c *domain.Citizen, now time.Time) error {
		c.Friends = removeID(c.Friends, fromID)
		c.PendingFriends = append(c.PendingFriends, fromID)
		return nil
	})
	if compErr != nil {
		s.log.Error("accept_fr compensate failed",
			zap.String("uid", uid), zap.String("from", fromID), zap.Error(compErr))
	}
	return err
}

// Donate 公民间资金转移（currency=="gold" 时走金币），全有或全无。
func (s *CitizenService) Donate(ctx context.Context, fromID, toID, currency string, amount float64) error {
	if fromID == toID {
		return ErrFriendInvalid.WithData("reason", "cannot donate to yourself")
	}
	amount = ledger.Round(amount)
	if amount <= 0 {
		return errx.ErrInvalidState.WithData("amount", amount)
	}

	// 1. 借记发起方
	if err := s.mutate(ctx, fromID, func(c *domain.Citizen, now time.Time) error {
		if currency == "gold" {
			return c.DebitGold(amount)
		}
		return c.DebitCurrency(currency, amount)
	}); err != nil {
		return err
	}

	// 2. 贷记接收方；失败则补偿第 1 步
	err := s.mutateOther(ctx, toID, func(c *domain.Citizen, now time.Time) error {
		if currency == "gold" {
			c.CreditGold(amount)
		} else {
			c.CreditCurrency(currency, amount)
		}
		c.AddAlert("DONATION", "You received a donation of "+formatAmount(amount)+" "+currency, now)
		return nil
	})
	if err != nil {
		s.compensateCredit(ctx, fromID, currency, amount)
		return err
	}

	s.record(ctx, ledger.JournalEntry{
		Kind:      ledger.JournalDonate,
		FromOwner: "citizen:" + fromID,
		ToOwner:   "citizen:" + toID,
		Currency:  currency,
		Amount:    amount,
	})
	return nil
}

// Gift 公民间物品转移，全有或全无。
func (s *CitizenService) Gift(ctx context.Context, fromID, toID, itemID string, quantity int) error {
	if fromID == toID {
		return ErrFriendInvalid.WithData("reason", "cannot gift to yourself")
	}
	if quantity <= 0 {
		return errx.ErrInvalidState.WithData("quantity", quantity)
	}

	if err := s.mutate(ctx, fromID, func(c *domain.Citizen, now time.Time) error {
		return c.RemoveItem(itemID, quantity)
	}); err != nil {
		return err
	}

	err := s.mutateOther(ctx, toID, func(c *domain.Citizen, now time.Time) error {
		c.AddItem(itemID, quantity)
		c.AddAlert("GIFT", "You received "+strconv.Itoa(quantity)+"x "+itemID, now)
		return nil
	})
	if err != nil {
		compErr := s.mutate(ctx, fromID, func(c *domain.Citizen, now time.Time) error {
			c.AddItem(itemID, quantity)
			return nil
		})
		if compErr != nil {
			s.log.Error("gift compensate failed",
				zap.String("from", fromID), zap.String("item", itemID), zap.Error(compErr))
		}
		return err
	}
	return nil
}

// CreateThread 在双方文档各建一份会话镜像。
func (s *CitizenService) CreateThread(ctx context.Context, uid, recipientID, subject, body string) (string, error) {
	rawID, err := s.idGen()
	if err != nil {
		return "", ErrUnavailable.WithCause(err)
	}
	threadID := strconv.FormatInt(rawID, 10)
	participants := []string{uid, recipientID}
	now := time.Now()
	first := domain.Message{From: uid, Body: body, Timestamp: now}

	if err := s.mutate(ctx, uid, func(c *domain.Citizen, _ time.Time) error {
		c.CreateThread(threadID, subject, participants, first)
		return nil
	}); err != nil {
		return "", err
	}

	err = s.mutateOther(ctx, recipientID, func(c *domain.Citizen, _ time.Time) error {
		c.CreateThread(threadID, subject, participants, first)
		c.AddAlert("NEW_MESSAGE", "New message thread: "+subject, now)
		return nil
	})
	if err != nil {
		compErr := s.mutate(ctx, uid, func(c *domain.Citizen, _ time.Time) error {
			c.Threads = removeThread(c.Threads, threadID)
			return nil
		})
		if compErr != nil {
			s.log.Error("create_thread compensate failed", zap.String("uid", uid), zap.Error(compErr))
		}
		return "", err
	}
	return threadID, nil
}

// SendMessage 向会话追加消息并镜像到其余参与者。
func (s *CitizenService) SendMessage(ctx context.Context, uid, threadID, body string) error {
	now := time.Now()
	msg := domain.Message{From: uid, Body: body, Timestamp: now}

	var participants []string
	if err := s.mutate(ctx, uid, func(c *domain.Citizen, _ time.Time) error {
		if err := c.AppendMessage(threadID, msg); err != nil {
			return err
		}
		for _, t := range c.Threads {
			if t.ID == threadID {
				participants = t.Participants
			}
		}
		return nil
	}); err != nil {
		return err
	}

	// 镜像写不参与守恒，失败只告警不回滚（对方下次拉取时以自己文档为准）。
	for _, p := range participants {
		if p == uid {
			continue
		}
		if err := s.mutateOther(ctx, p, func(c *domain.Citizen, _ time.Time) error {
			if err := c.AppendMessage(threadID, msg); err != nil {
				return err
			}
			c.AddAlert("NEW_MESSAGE", "New message from "+uid, now)
			return nil
		}); err != nil {
			s.log.Warn("send_msg mirror failed",
				zap.String("thread", threadID), zap.String("participant", p), zap.Error(err))
		}
	}
	return nil
}

// Paycheck 工作结薪的公民侧落账：入账工资、经验 +1、推工作冷却。
// 工资额以公民文档上的聘用条款为准。
func (s *CitizenService) Paycheck(ctx context.Context, uid, currency string) error {
	return s.mutate(ctx, uid, func(c *domain.Citizen, now time.Time) error {
		if c.Job == nil {
			return domain.ErrNoJob
		}
		return c.ReceivePaycheck(currency, ledger.Round(c.Job.Wage), now)
	})
}

// BindJob 把公民的工作指向雇主（求职流程的公民侧落账）。
func (s *CitizenService) BindJob(ctx context.Context, uid, companyID, title string, wage float64) error {
	return s.mutate(ctx, uid, func(c *domain.Citizen, _ time.Time) error {
		c.Job = &domain.JobRef{Company: companyID, Title: title, Wage: ledger.Round(wage)}
		return nil
	})
}

// BindParty 维护公民文档上的政党引用（入党/退党的公民侧镜像）。
func (s *CitizenService) BindParty(ctx context.Context, uid, partyID string) error {
	return s.mutate(ctx, uid, func(c *domain.Citizen, _ time.Time) error {
		c.Party = partyID
		return nil
	})
}

// PayAndReceive 市场购买的买家侧一次落账：扣货币并把物品入包。
func (s *CitizenService) PayAndReceive(ctx context.Context, uid, currency string, cost float64, itemID string, quantity int) error {
	return s.mutate(ctx, uid, func(c *domain.Citizen, _ time.Time) error {
		if err := c.DebitCurrency(currency, cost); err != nil {
			return err
		}
		c.AddItem(itemID, quantity)
		return nil
	})
}

// DeductHealth 扣生命（战斗上下文的出击消耗）。
func (s *CitizenService) DeductHealth(ctx context.Context, uid string, amount int) error {
	return s.mutate(ctx, uid, func(c *domain.Citizen, _ time.Time) error {
		return c.DeductHealth(amount)
	})
}

// CreditHealth 回补生命（出击被拒的补偿），封顶不超过满血。
func (s *CitizenService) CreditHealth(ctx context.Context, uid string, amount int) error {
	return s.mutate(ctx, uid, func(c *domain.Citizen, _ time.Time) error {
		c.CreditHealth(amount)
		return nil
	})
}

// Subscribe 订阅作者动态。
func (s *CitizenService) Subscribe(ctx context.Context, uid, authorID string) error {
	if _, err := s.load(ctx, authorID); err != nil {
		return err
	}
	return s.mutate(ctx, uid, func(c *domain.Citizen, _ time.Time) error {
		return c.Subscribe(authorID)
	})
}

// Unsubscribe 取消订阅。
func (s *CitizenService) Unsubscribe(ctx context.Context, uid, authorID string) error {
	return s.mutate(ctx, uid, func(c *domain.Citizen, _ time.Time) error {
		return c.Unsubscribe(authorID)
	})
}

// Get 读取公民（供分发器与其他上下文查询）。
func (s *CitizenService) Get(ctx context.Context, uid string) (*domain.Citizen, error) {
	return s.load(ctx, uid)
}

// ---- 内部 ----

func (s *CitizenService) load(ctx context.Context, uid string) (*domain.Citizen, error) {
	c, err := s.repo.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrCitizenNotFound) {
			return nil, ErrCitizenNotFound.WithData("uid", uid)
		}
		return nil, ErrUnavailable.WithCause(err)
	}
	return c, nil
}

// mutate 读-改-写一个公民文档，CAS 冲突时重试，并把升级等新告警推送出去。
func (s *CitizenService) mutate(ctx context.Context, uid string, fn func(*domain.Citizen, time.Time) error) error {
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		c, err := s.load(ctx, uid)
		if err != nil {
			return err
		}

		alertsBefore := len(c.Alerts)
		now := time.Now()
		if err := fn(c, now); err != nil {
			return s.mapDomainErr(err)
		}

		if err := s.repo.Save(ctx, c); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return ErrUnavailable.WithCause(err)
		}

		s.pushNewAlerts(uid, c.Alerts[alertsBefore:])
		return nil
	}
	return ErrConflict.WithData("uid", uid).WithCause(lastErr)
}

// mutateOther 等价于 mutate，语义上用于“动作波及的另一方”。
func (s *CitizenService) mutateOther(ctx context.Context, uid string, fn func(*domain.Citizen, time.Time) error) error {
	return s.mutate(ctx, uid, fn)
}

func (s *CitizenService) compensateCredit(ctx context.Context, uid, currency string, amount float64) {
	err := s.mutate(ctx, uid, func(c *domain.Citizen, _ time.Time) error {
		if currency == "gold" {
			c.CreditGold(amount)
		} else {
			c.CreditCurrency(currency, amount)
		}
		return nil
	})
	if err != nil {
		s.log.Error("donate compensate failed",
			zap.String("uid", uid), zap.String("currency", currency),
			zap.Float64("amount", amount), zap.Error(err))
	}
}

func (s *CitizenService) pushNewAlerts(uid string, alerts []domain.Alert) {
	if s.pusher == nil {
		return
	}
	for _, a := range alerts {
		s.pusher.Push(uid, a)
	}
}

func (s *CitizenService) record(ctx context.Context, e ledger.JournalEntry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, e); err != nil {
		s.log.Warn("journal record failed", zap.String("kind", e.Kind), zap.Error(err))
	}
}

func (s *CitizenService) mapDomainErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrCooldownActive):
		return ErrCooldownActive
	case errors.Is(err, domain.ErrHealthFull):
		return ErrHealthFull
	case errors.Is(err, domain.ErrHealthTooLow):
		return errx.ErrInvalidState.WithData("reason", "health too low")
	case errors.Is(err, domain.ErrNoJob):
		return errx.ErrInvalidState.WithData("reason", "citizen has no job")
	case errors.Is(err, domain.ErrInsufficientGold),
		errors.Is(err, domain.ErrInsufficientCurrency),
		errors.Is(err, domain.ErrInsufficientItems):
		return ErrInsufficient.WithCause(err)
	case errors.Is(err, domain.ErrSelfFriend),
		errors.Is(err, domain.ErrDuplicateRequest),
		errors.Is(err, domain.ErrAlreadyFriends),
		errors.Is(err, domain.ErrNoPendingRequest):
		return ErrFriendInvalid.WithCause(err)
	case errors.Is(err, domain.ErrAlreadySubscribed),
		errors.Is(err, domain.ErrNotSubscribed):
		return ErrSubscription.WithCause(err)
	case errors.Is(err, domain.ErrThreadNotFound):
		return ErrThreadNotFound
	default:
		return errx.ErrInternal.WithCause(err)
	}
}

func removeID(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func removeThread(list []domain.Thread, id string) []domain.Thread {
	out := list[:0]
	for _, t := range list {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func formatAmount(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
