package leaderboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tg-rating-bot/internal/domain"
)

var errCacheMiss = errors.New("ключ не найден")

type stubRepo struct {
	posts []domain.Post
	calls int
}

func (s *stubRepo) CreatePost(context.Context, domain.Post) error { return nil }
func (s *stubRepo) UpsertVote(context.Context, int64, int64, string, string, domain.Vote) error {
	return nil
}
func (s *stubRepo) GetPost(context.Context, int64) (domain.Post, error) {
	return domain.Post{}, domain.ErrPostNotFound
}
func (s *stubRepo) ListPosts(context.Context) ([]domain.Post, error) {
	s.calls++
	return s.posts, nil
}

type stubCache struct {
	data map[string][]byte
}

func (s *stubCache) Set(key string, value []byte, _ time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *stubCache) Get(key string) ([]byte, error) {
	value, ok := s.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return value, nil
}

func postWithScores(msgID int64, scores ...int) domain.Post {
	votes := make(map[string]domain.Vote, len(scores))
	for i, score := range scores {
		votes[strings.Repeat("v", i+1)] = domain.Vote{Score: score, Name: "user"}
	}
	return domain.Post{TGMsgID: msgID, ChatID: -100123, Title: "post", Votes: votes}
}

func TestRankOrdering(t *testing.T) {
	a := postWithScores(1, 9, 9, 9)    // среднее 9.0, три голоса
	b := postWithScores(2, 9, 9, 9, 9, 9) // среднее 9.0, пять голосов
	c := postWithScores(3, 10, 9)      // среднее 9.5

	ranked := Rank([]domain.Post{a, b, c}, 5)
	if len(ranked) != 3 {
		t.Fatalf("ожидали 3 поста, получили %d", len(ranked))
	}
	order := []int64{3, 2, 1}
	for i, want := range order {
		if ranked[i].Post.TGMsgID != want {
			t.Fatalf("позиция %d: ожидали пост %d, получили %d", i+1, want, ranked[i].Post.TGMsgID)
		}
	}
}

func TestRankSkipsZeroVotesAndLimits(t *testing.T) {
	posts := []domain.Post{postWithScores(1)}
	for i := int64(2); i <= 8; i++ {
		posts = append(posts, postWithScores(i, int(i)))
	}
	ranked := Rank(posts, 5)
	if len(ranked) != 5 {
		t.Fatalf("ожидали 5 постов после лимита, получили %d", len(ranked))
	}
	for _, item := range ranked {
		if item.Stats.Count == 0 {
			t.Fatal("посты без голосов не должны попадать в топ")
		}
	}
}

func TestFormatTopEmpty(t *testing.T) {
	if text := FormatTop(nil); text != "No rated posts yet." {
		t.Fatalf("ожидали заглушку, получили %q", text)
	}
}

func TestFormatTopLinksAndAverages(t *testing.T) {
	post := postWithScores(501, 10, 8, 6)
	post.Title = "Hello <world>"
	text := FormatTop(Rank([]domain.Post{post}, 5))
	if !strings.Contains(text, "https://t.me/c/123/501") {
		t.Fatalf("ожидали ссылку без префикса -100: %q", text)
	}
	if !strings.Contains(text, "8.0/10 (3 votes)") {
		t.Fatalf("ожидали среднее с одним знаком: %q", text)
	}
	if !strings.Contains(text, "Hello &lt;world&gt;") {
		t.Fatalf("заголовок должен экранироваться: %q", text)
	}
}

func TestPostLink(t *testing.T) {
	if link := PostLink(-100123, 501); link != "https://t.me/c/123/501" {
		t.Fatalf("неожиданная ссылка: %q", link)
	}
}

func TestTopUsesCache(t *testing.T) {
	repo := &stubRepo{posts: []domain.Post{postWithScores(1, 9)}}
	cache := &stubCache{data: map[string][]byte{}}
	service := NewService(repo, cache, 5, time.Minute)

	first, err := service.Top(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	second, err := service.Top(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if first != second {
		t.Fatal("кэшированный ответ должен совпадать")
	}
	if repo.calls != 1 {
		t.Fatalf("ожидали одно обращение к хранилищу, получили %d", repo.calls)
	}
}
