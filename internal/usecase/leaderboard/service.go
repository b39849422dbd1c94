package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tg-rating-bot/internal/domain"
	"tg-rating-bot/internal/usecase/ratings"
)

const cacheKey = "leaderboard:top"

// Service строит топ постов по среднему рейтингу.
type Service struct {
	repo  domain.PostRepo
	cache domain.Cache
	limit int
	ttl   time.Duration
}

// NewService создаёт сервис лидерборда. cache может быть nil,
// тогда текст строится заново на каждый запрос.
func NewService(repo domain.PostRepo, cache domain.Cache, limit int, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: cache, limit: limit, ttl: ttl}
}

// Top возвращает готовый HTML-текст топа постов.
func (s *Service) Top(ctx context.Context) (string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(cacheKey); err == nil && len(cached) > 0 {
			return string(cached), nil
		}
	}
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return "", fmt.Errorf("чтение постов: %w", err)
	}
	text := FormatTop(Rank(posts, s.limit))
	if s.cache != nil {
		_ = s.cache.Set(cacheKey, []byte(text), s.ttl)
	}
	return text, nil
}

// Rank отбрасывает посты без голосов и сортирует остальные по убыванию:
// сначала среднее, при равенстве — количество голосов.
func Rank(posts []domain.Post, limit int) []domain.RatedPost {
	ranked := make([]domain.RatedPost, 0, len(posts))
	for _, post := range posts {
		stats := ratings.Aggregate(post)
		if stats.Count == 0 {
			continue
		}
		ranked = append(ranked, domain.RatedPost{Post: post, Stats: stats})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Stats.Average != ranked[j].Stats.Average {
			return ranked[i].Stats.Average > ranked[j].Stats.Average
		}
		return ranked[i].Stats.Count > ranked[j].Stats.Count
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
