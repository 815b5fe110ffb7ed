package app

import (
	"context"
	"errors"
	"time"

	"WorldRepublic/internal/election/domain"
	"WorldRepublic/modules/kit/errx"
	"WorldRepublic/modules/kit/logx"

	"go.uber.org/zap"
)

const casRetries = 3

type Code = errx.Code

const (
	CodeElectionNotFound  Code = "ELECTION_NOT_FOUND"
	CodeCandidateNotFound Code = "CANDIDATE_NOT_FOUND"
	CodeAlreadyVoted      Code = "ALREADY_VOTED"
	CodeAlreadyCandidate  Code = "ALREADY_CANDIDATE"
	CodeWrongJurisdiction Code = "WRONG_JURISDICTION"
)

var (
	ErrElectionNotFound  = errx.New(errx.KindNotFound, CodeElectionNotFound, "选举不存在")
	ErrCandidateNotFound = errx.New(errx.KindNotFound, CodeCandidateNotFound, "候选人不存在")
	ErrAlreadyVoted      = errx.New(errx.KindConflict, CodeAlreadyVoted, "已投过票")
	ErrAlreadyCandidate  = errx.New(errx.KindConflict, CodeAlreadyCandidate, "已登记参选")
	ErrWrongJurisdiction = errx.New(errx.KindUnauthorized, CodeWrongJurisdiction, "不在本选举辖区内")
	ErrInvalidState      = errx.ErrInvalidState
	ErrConflict          = errx.ErrConflict
	ErrUnavailable       = errx.ErrUnavailable
)

type ElectionService struct {
	repo     ElectionRepo
	voters   VoterDirectory
	regions  RegionDirectory
	offices  OfficeAppointer
	tieBreak domain.TieBreak
	log      logx.Logger
}

func NewElectionService(repo ElectionRepo, voters VoterDirectory, regions RegionDirectory, offices OfficeAppointer, tieBreak domain.TieBreak, log logx.Logger) *ElectionService {
	if tieBreak == "" {
		tieBreak = domain.TieBreakEarliest
	}
	return &ElectionService{
		repo:     repo,
		voters:   voters,
		regions:  regions,
		offices:  offices,
		tieBreak: tieBreak,
		log:      log,
	}
}

func (s *ElectionService) Get(ctx context.Context, id string) (*domain.Election, error) {
	return s.load(ctx, id)
}

// Schedule 建立一场选举（定时器与后台用，不在动作闭集内）。
func (s *ElectionService) Schedule(ctx context.Context, e *domain.Election) error {
	if err := s.repo.Create(ctx, e); err != nil {
		return ErrUnavailable.WithCause(err)
	}
	return nil
}

// Vote 投票：辖区 → 居住地 → 重复投票 → 落票。
func (s *ElectionService) Vote(ctx context.Context, voterID, electionID, candidateID string) error {
	profile, err := s.voters.Profile(ctx, voterID)
	if err != nil {
		return err
	}
	return s.mutate(ctx, electionID, func(e *domain.Election) error {
		if err := s.checkJurisdiction(e, profile); err != nil {
			return err
		}
		return e.Vote(voterID, candidateID, profile.Location, profile.Residence, time.Now())
	})
}

// RunFor 登记参选；run_for_cp / run_for_congress / run_for_pp 共用，
// 选举类型由选举文档自带。
func (s *ElectionService) RunFor(ctx context.Context, citizenID, electionID string) error {
	profile, err := s.voters.Profile(ctx, citizenID)
	if err != nil {
		return err
	}
	return s.mutate(ctx, electionID, func(e *domain.Election) error {
		if err := s.checkJurisdiction(e, profile); err != nil {
			return err
		}
		return e.RegisterCandidate(citizenID, time.Now())
	})
}

// CloseDue 定时收尾：窗口已过的选举计票并就任。
// 已完成的被 ListDue 排除；同一场重复收尾是空操作（幂等）。
func (s *ElectionService) CloseDue(ctx context.Context) error {
	due, err := s.repo.ListDue(ctx, time.Now())
	if err != nil {
		return ErrUnavailable.WithCause(err)
	}
	for _, e := range due {
		if err := s.closeOne(ctx, e.ID); err != nil {
			s.log.Warn("election close failed", zap.String("election", e.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *ElectionService) closeOne(ctx context.Context, electionID string) error {
	var winners []string
	var closed *domain.Election
	err := s.mutate(ctx, electionID, func(e *domain.Election) error {
		var weights map[string]float64
		if e.Tally == domain.TallyCollege {
			var err error
			weights, err = s.regions.RegionWeights(ctx, e.Country)
			if err != nil {
				return err
			}
		}
		w, err := e.Close(weights, s.tieBreak)
		if err != nil {
			// 无候选人也要把完成态落库，否则每个 tick 都会再捞到它
			if errors.Is(err, domain.ErrNoCandidates) {
				winners, closed = nil, e
				return nil
			}
			return err
		}
		winners, closed = w, e
		return nil
	})
	if err != nil {
		// 已完成的收尾为空操作
		if errors.Is(err, errAlreadyCompleted) {
			return nil
		}
		return err
	}
	if len(winners) == 0 {
		return nil
	}
	return s.appoint(ctx, closed, winners)
}

func (s *ElectionService) appoint(ctx context.Context, e *domain.Election, winners []string) error {
	switch e.Type {
	case domain.TypeCountryPresident:
		return s.offices.AppointCountryPresident(ctx, e.Country, winners[0])
	case domain.TypeCongress:
		return s.offices.AppointCongress(ctx, e.Country, winners)
	case domain.TypePartyPresident:
		return s.offices.AppointPartyPresident(ctx, e.Party, winners[0])
	}
	return nil
}

func (s *ElectionService) checkJurisdiction(e *domain.Election, p VoterProfile) error {
	if e.Country != "" && p.Country != e.Country {
		return domain.ErrWrongJurisdiction
	}
	if e.Type == domain.TypePartyPresident && p.Party != e.Party {
		return domain.ErrWrongJurisdiction
	}
	return nil
}

// ---- 内部 ----

// Close 的空操作信号：映射后仍可用 errors.Is 识别。
var (
	errAlreadyCompleted = errx.New(errx.KindInvalidState, "ELECTION_COMPLETED", "选举已完成")
	errNoCandidates     = errx.New(errx.KindInvalidState, "NO_CANDIDATES", "没有候选人")
)

func (s *ElectionService) load(ctx context.Context, id string) (*domain.Election, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrElectionNotFound) {
			return nil, ErrElectionNotFound.WithData("election", id)
		}
		return nil, ErrUnavailable.WithCause(err)
	}
	return e, nil
}

func (s *ElectionService) mutate(ctx context.Context, id string, fn func(*domain.Election) error) error {
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return s.mapDomainErr(err)
		}
		if err := s.repo.Save(ctx, e); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return ErrUnavailable.WithCause(err)
		}
		return nil
	}
	return ErrConflict.WithData("election", id).WithCause(lastErr)
}

func (s *ElectionService) mapDomainErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotActive):
		return ErrInvalidState.WithData("reason", "election is not active")
	case errors.Is(err, domain.ErrAlreadyVoted):
		return ErrAlreadyVoted
	case errors.Is(err, domain.ErrAlreadyCandidate):
		return ErrAlreadyCandidate
	case errors.Is(err, domain.ErrCandidateNotFound):
		return ErrCandidateNotFound
	case errors.Is(err, domain.ErrResidenceMismatch):
		return ErrInvalidState.WithData("reason", "voter location does not match residence")
	case errors.Is(err, domain.ErrWrongJurisdiction):
		return ErrWrongJurisdiction
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return errAlreadyCompleted
	case errors.Is(err, domain.ErrNoCandidates):
		return errNoCandidates
	default:
		return errx.ErrInternal.WithCause(err)
	}
}
