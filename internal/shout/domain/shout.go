package domain

import (
	"errors"
	"time"
)

var (
	ErrShoutNotFound   = errors.New("shout not found")
	ErrVersionConflict = errors.New("shout version conflict")
	ErrAlreadyLiked    = errors.New("already liked")
	ErrNotLiked        = errors.New("not liked")
)

// Shout 是公开动态聚合根；Likes 是点赞公民集合（文档内数组，成员唯一）。
type Shout struct {
	ID      string
	Version uint64

	Author  string
	Message string
	Likes   []string

	CreatedAt time.Time
}

func NewShout(id, author, message string, now time.Time) *Shout {
	return &Shout{
		ID:        id,
		Author:    author,
		Message:   message,
		CreatedAt: now,
	}
}

// Like 点赞；重复点赞报错不变更。
func (s *Shout) Like(citizenID string) error {
	for _, id := range s.Likes {
		if id == citizenID {
			return ErrAlreadyLiked
		}
	}
	s.Likes = append(s.Likes, citizenID)
	return nil
}

// Unlike 取消点赞；未点赞过报错。
func (s *Shout) Unlike(citizenID string) error {
	for i, id := range s.Likes {
		if id == citizenID {
			s.Likes = append(s.Likes[:i], s.Likes[i+1:]...)
			return nil
		}
	}
	return ErrNotLiked
}
