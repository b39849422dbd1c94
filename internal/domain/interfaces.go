package domain

import (
	"context"
	"time"
)

// PostRepo управляет постами и голосами. Это единственный путь мутации
// данных Post/Vote во всей системе.
type PostRepo interface {
	// CreatePost сохраняет новый пост с пустой картой голосов.
	// Повторное создание с тем же идентификатором — no-op.
	CreatePost(ctx context.Context, post Post) error
	// UpsertVote атомарно записывает голос пользователя. Если записи поста
	// нет, она синтезируется с переданными chat_id и заголовком. Запись
	// другого пользователя не должна теряться при конкурентном апсерте.
	UpsertVote(ctx context.Context, msgID, chatID int64, title, voterID string, vote Vote) error
	// GetPost возвращает пост или ErrPostNotFound.
	GetPost(ctx context.Context, msgID int64) (Post, error)
	// ListPosts возвращает все посты.
	ListPosts(ctx context.Context) ([]Post, error)
}

// Membership разрешает роль пользователя в канале.
type Membership interface {
	IsAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
}
