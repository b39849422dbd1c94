package repo

import (
	"context"
	"sync"

	"tg-rating-bot/internal/domain"
)

// Memory реализует domain.PostRepo в памяти процесса. Используется,
// когда PG_DSN не задан, и в тестах. Мьютекс заменяет атомарный
// jsonb-апсерт Postgres: конкурентные голоса не теряются.
type Memory struct {
	mu    sync.Mutex
	posts map[int64]domain.Post
}

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{posts: make(map[int64]domain.Post)}
}

// CreatePost реализует domain.PostRepo. Повторное создание — no-op.
func (m *Memory) CreatePost(_ context.Context, post domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[post.TGMsgID]; ok {
		return nil
	}
	stored := post
	stored.Votes = copyVotes(post.Votes)
	m.posts[post.TGMsgID] = stored
	return nil
}

// UpsertVote реализует domain.PostRepo, синтезируя запись при отсутствии.
func (m *Memory) UpsertVote(_ context.Context, msgID, chatID int64, title, voterID string, vote domain.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[msgID]
	if !ok {
		post = domain.Post{TGMsgID: msgID, ChatID: chatID, Title: title, Votes: make(map[string]domain.Vote)}
	}
	post.Votes[voterID] = vote
	m.posts[msgID] = post
	return nil
}

// GetPost реализует domain.PostRepo.
func (m *Memory) GetPost(_ context.Context, msgID int64) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[msgID]
	if !ok {
		return domain.Post{}, domain.ErrPostNotFound
	}
	out := post
	out.Votes = copyVotes(post.Votes)
	return out, nil
}

// ListPosts реализует domain.PostRepo.
func (m *Memory) ListPosts(_ context.Context) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := make([]domain.Post, 0, len(m.posts))
	for _, post := range m.posts {
		out := post
		out.Votes = copyVotes(post.Votes)
		posts = append(posts, out)
	}
	return posts, nil
}

func copyVotes(votes map[string]domain.Vote) map[string]domain.Vote {
	out := make(map[string]domain.Vote, len(votes))
	for voter, vote := range votes {
		out[voter] = vote
	}
	return out
}
