package app

import (
	"context"
	"errors"
	"time"

	"WorldRepublic/internal/battle/domain"
	"WorldRepublic/internal/ledger"
	"WorldRepublic/modules/kit/errx"
	"WorldRepublic/modules/kit/logx"

	"go.uber.org/zap"
)

type Code = errx.Code

const (
	CodeBattleNotFound Code = "BATTLE_NOT_FOUND"
	CodeBattleOver     Code = "BATTLE_NOT_ACTIVE"
	CodeNotBelligerent Code = "NOT_BELLIGERENT"
	CodeFighterTooWeak Code = "FIGHTER_HEALTH_LOW"
)

var (
	ErrBattleNotFound = errx.New(errx.KindNotFound, CodeBattleNotFound, "战斗不存在")
	ErrBattleOver     = errx.New(errx.KindInvalidState, CodeBattleOver, "战斗已结束")
	ErrNotBelligerent = errx.New(errx.KindUnauthorized, CodeNotBelligerent, "所在国不是参战方")
	ErrFighterTooWeak = errx.New(errx.KindInvalidState, CodeFighterTooWeak, "生命值不足以出击")
	ErrUnavailable    = errx.ErrUnavailable
)

type BattleService struct {
	repo     BattleRepo
	fighters FighterDirectory
	intel    CountryIntel
	resolver WarResolver
	journal  ledger.Journal
	log      logx.Logger
}

func NewBattleService(repo BattleRepo, fighters FighterDirectory, intel CountryIntel, resolver WarResolver, journal ledger.Journal, log logx.Logger) *BattleService {
	return &BattleService{
		repo:     repo,
		fighters: fighters,
		intel:    intel,
		resolver: resolver,
		journal:  journal,
		log:      log,
	}
}

func (s *BattleService) Get(ctx context.Context, id string) (*domain.Battle, error) {
	return s.load(ctx, id)
}

// Declare 开战（定时器与后台用，不在动作闭集内）。
func (s *BattleService) Declare(ctx context.Context, b *domain.Battle) error {
	if err := s.repo.Create(ctx, b); err != nil {
		return ErrUnavailable.WithCause(err)
	}
	return nil
}

// Fight 出击：先扣生命消耗，再原子落一击；
// 落击失败（战斗刚被结算）时退回生命消耗。
func (s *BattleService) Fight(ctx context.Context, citizenID, battleID string) error {
	b, err := s.load(ctx, battleID)
	if err != nil {
		return err
	}
	now := time.Now()
	if !b.Active(now) {
		return ErrBattleOver.WithData("battle", battleID)
	}

	profile, err := s.fighters.FighterProfile(ctx, citizenID)
	if err != nil {
		return err
	}
	side, err := b.SideOf(profile.Country)
	if err != nil {
		return ErrNotBelligerent.WithData("country", profile.Country)
	}
	if profile.Health < domain.FightHealthCost {
		return ErrFighterTooWeak.WithData("health", profile.Health)
	}

	rival, err := s.intel.RivalOf(ctx, profile.Country)
	if err != nil {
		return err
	}
	damage := domain.DamageOf(profile.Level, profile.Strength, profile.MilitaryRank,
		rival == b.EnemyOf(side))

	if err := s.fighters.DeductFightCost(ctx, citizenID); err != nil {
		return err
	}
	hit := Hit{CitizenID: citizenID, Damage: damage, At: now}
	if err := s.repo.RecordHit(ctx, battleID, side, hit); err != nil {
		if refundErr := s.fighters.RefundFightCost(ctx, citizenID); refundErr != nil {
			s.log.Error("fight refund failed",
				zap.String("citizen", citizenID), zap.String("battle", battleID), zap.Error(refundErr))
		}
		if errors.Is(err, domain.ErrBattleNotActive) {
			return ErrBattleOver.WithData("battle", battleID)
		}
		return ErrUnavailable.WithCause(err)
	}
	return nil
}

// ResolveDue 结算所有到期未分胜负的战斗。
// 整批在一个存储事务里提交：中途失败整批回滚，等下一轮重试，
// 不会出现一轮里前几场落定、后几场悬着的半截状态。
func (s *BattleService) ResolveDue(ctx context.Context) error {
	due, err := s.repo.ListDue(ctx, time.Now())
	if err != nil {
		return ErrUnavailable.WithCause(err)
	}
	if len(due) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Battle, len(due))
	ids := make([]string, 0, len(due))
	for _, b := range due {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	results, err := s.resolver.ResolveBatch(ctx, ids)
	if err != nil {
		s.log.Warn("battle batch resolve failed", zap.Int("due", len(ids)), zap.Error(err))
		return ErrUnavailable.WithCause(err)
	}
	for _, res := range results {
		s.log.Info("battle resolved",
			zap.String("battle", res.BattleID), zap.String("winner", res.Winner),
			zap.Bool("attacker_won", res.AttackerWon), zap.Float64("spoil", res.Spoil))
		b := byID[res.BattleID]
		if b != nil && res.AttackerWon && res.Spoil > 0 {
			s.record(ctx, ledger.JournalEntry{
				Kind:      ledger.JournalWarSpoil,
				FromOwner: "country:" + b.Defender,
				ToOwner:   "country:" + b.Attacker,
				Currency:  "gold",
				Amount:    res.Spoil,
				Ref:       b.ID,
			})
		}
	}
	return nil
}

func (s *BattleService) load(ctx context.Context, id string) (*domain.Battle, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBattleNotFound) {
			return nil, ErrBattleNotFound.WithData("battle", id)
		}
		return nil, ErrUnavailable.WithCause(err)
	}
	return b, nil
}

func (s *BattleService) record(ctx context.Context, e ledger.JournalEntry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, e); err != nil {
		s.log.Warn("journal record failed", zap.String("kind", e.Kind), zap.Error(err))
	}
}
