package repo

import (
	"context"

	"tg-rating-bot/internal/domain"
)

// Unavailable подставляется вместо Postgres, когда база на старте
// оказалась недоступна. Бот продолжает работать, а каждая операция
// с хранилищем отвечает пользователю понятной ошибкой.
type Unavailable struct{}

// NewUnavailable создаёт заглушку деградированного режима.
func NewUnavailable() *Unavailable {
	return &Unavailable{}
}

// CreatePost реализует domain.PostRepo.
func (u *Unavailable) CreatePost(context.Context, domain.Post) error {
	return domain.ErrStoreUnavailable
}

// UpsertVote реализует domain.PostRepo.
func (u *Unavailable) UpsertVote(context.Context, int64, int64, string, string, domain.Vote) error {
	return domain.ErrStoreUnavailable
}

// GetPost реализует domain.PostRepo.
func (u *Unavailable) GetPost(context.Context, int64) (domain.Post, error) {
	return domain.Post{}, domain.ErrStoreUnavailable
}

// ListPosts реализует domain.PostRepo.
func (u *Unavailable) ListPosts(context.Context) ([]domain.Post, error) {
	return nil, domain.ErrStoreUnavailable
}
