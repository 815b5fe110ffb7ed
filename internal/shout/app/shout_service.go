package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"WorldRepublic/internal/shout/domain"
	"WorldRepublic/modules/kit/errx"
	"WorldRepublic/modules/kit/logx"
)

type Code = errx.Code

const (
	CodeShoutNotFound Code = "SHOUT_NOT_FOUND"
	CodeLikeConflict  Code = "LIKE_CONFLICT"
)

var (
	ErrShoutNotFound = errx.New(errx.KindNotFound, CodeShoutNotFound, "动态不存在")
	ErrLikeConflict  = errx.New(errx.KindConflict, CodeLikeConflict, "点赞状态冲突")
	ErrConflict      = errx.ErrConflict
	ErrUnavailable   = errx.ErrUnavailable
)

const casRetries = 3

// ShoutRepo 是动态聚合的存取端口。
type ShoutRepo interface {
	Get(ctx context.Context, id string) (*domain.Shout, error)
	// ListByAuthors 按作者集合倒序返回动态（订阅流），最多 limit 条。
	ListByAuthors(ctx context.Context, authors []string, limit int) ([]*domain.Shout, error)
	Create(ctx context.Context, s *domain.Shout) error
	Save(ctx context.Context, s *domain.Shout) error
}

// IDGen 生成动态 id（snowflake）。
type IDGen func() (int64, error)

type ShoutService struct {
	repo  ShoutRepo
	idGen IDGen
	log   logx.Logger
}

func NewShoutService(repo ShoutRepo, idGen IDGen, log logx.Logger) *ShoutService {
	return &ShoutService{repo: repo, idGen: idGen, log: log}
}

// Post 发布一条动态。
func (s *ShoutService) Post(ctx context.Context, authorID, message string) (*domain.Shout, error) {
	rawID, err := s.idGen()
	if err != nil {
		return nil, ErrUnavailable.WithCause(err)
	}
	sh := domain.NewShout(strconv.FormatInt(rawID, 10), authorID, message, time.Now())
	if err := s.repo.Create(ctx, sh); err != nil {
		return nil, ErrUnavailable.WithCause(err)
	}
	return sh, nil
}

// Like 点赞；重复点赞冲突。
func (s *ShoutService) Like(ctx context.Context, citizenID, shoutID string) error {
	return s.mutate(ctx, shoutID, func(sh *domain.Shout) error {
		return sh.Like(citizenID)
	})
}

// Unlike 取消点赞。
func (s *ShoutService) Unlike(ctx context.Context, citizenID, shoutID string) error {
	return s.mutate(ctx, shoutID, func(sh *domain.Shout) error {
		return sh.Unlike(citizenID)
	})
}

// Feed 返回公民订阅作者的动态流。
func (s *ShoutService) Feed(ctx context.Context, authors []string, limit int) ([]*domain.Shout, error) {
	if len(authors) == 0 {
		return nil, nil
	}
	out, err := s.repo.ListByAuthors(ctx, authors, limit)
	if err != nil {
		return nil, ErrUnavailable.WithCause(err)
	}
	return out, nil
}

func (s *ShoutService) mutate(ctx context.Context, id string, fn func(*domain.Shout) error) error {
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		sh, err := s.repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrShoutNotFound) {
				return ErrShoutNotFound.WithData("shout", id)
			}
			return ErrUnavailable.WithCause(err)
		}

		if err := fn(sh); err != nil {
			if errors.Is(err, domain.ErrAlreadyLiked) || errors.Is(err, domain.ErrNotLiked) {
				return ErrLikeConflict.WithCause(err)
			}
			return errx.ErrInternal.WithCause(err)
		}

		if err := s.repo.Save(ctx, sh); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return ErrUnavailable.WithCause(err)
		}
		return nil
	}
	return ErrConflict.WithData("shout", id).WithCause(lastErr)
}
