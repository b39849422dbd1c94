package ratings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"tg-rating-bot/internal/domain"
)

// Границы шкалы оценок. Клавиатура предлагает только 1..10, но значение
// из callback-данных всё равно проверяется.
const (
	MinScore = 1
	MaxScore = 10
)

// unknownTitle присваивается постам, синтезированным при голосе по записи,
// которой нет в хранилище (рестарт процесса, пост старше бота).
const unknownTitle = "Unknown Post"

// Service — леджер голосов: владеет данными Post/Vote и считает агрегаты.
type Service struct {
	repo domain.PostRepo
}

// NewService создаёт леджер поверх хранилища.
func NewService(repo domain.PostRepo) *Service {
	return &Service{repo: repo}
}

// CreatePost регистрирует новый пост с пустой картой голосов.
// Повторная регистрация того же поста — no-op: при доставке
// «хотя бы один раз» дубликат не должен затирать голоса.
func (s *Service) CreatePost(ctx context.Context, msgID, chatID int64, title string) error {
	post := domain.Post{
		TGMsgID: msgID,
		ChatID:  chatID,
		Title:   title,
		Votes:   map[string]domain.Vote{},
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return fmt.Errorf("создание поста: %w", err)
	}
	return nil
}

// RecordVote записывает голос пользователя и возвращает пересчитанный
// агрегат. Повторный голос того же пользователя заменяет прежний. Если
// записи поста нет, она синтезируется с заголовком "Unknown Post".
func (s *Service) RecordVote(ctx context.Context, msgID, chatID, voterID int64, score int, name string) (domain.AggregateStats, error) {
	if score < MinScore || score > MaxScore {
		return domain.AggregateStats{}, domain.ErrScoreOutOfRange
	}
	key := strconv.FormatInt(voterID, 10)
	vote := domain.Vote{Score: score, Name: name}
	if err := s.repo.UpsertVote(ctx, msgID, chatID, unknownTitle, key, vote); err != nil {
		return domain.AggregateStats{}, fmt.Errorf("запись голоса: %w", err)
	}
	return s.GetAggregate(ctx, msgID)
}

// GetAggregate возвращает агрегат поста. Неизвестный пост читается мягко:
// нулевой агрегат вместо ошибки, это нормальная гонка.
func (s *Service) GetAggregate(ctx context.Context, msgID int64) (domain.AggregateStats, error) {
	post, err := s.repo.GetPost(ctx, msgID)
	if errors.Is(err, domain.ErrPostNotFound) {
		return domain.AggregateStats{}, nil
	}
	if err != nil {
		return domain.AggregateStats{}, fmt.Errorf("чтение поста: %w", err)
	}
	return Aggregate(post), nil
}

// Aggregate считает среднее и количество голосов поста.
func Aggregate(post domain.Post) domain.AggregateStats {
	if len(post.Votes) == 0 {
		return domain.AggregateStats{}
	}
	sum := 0
	for _, vote := range post.Votes {
		sum += vote.Score
	}
	return domain.AggregateStats{
		Average: float64(sum) / float64(len(post.Votes)),
		Count:   len(post.Votes),
	}
}

// ListVoters возвращает список проголосовавших с учётом роли запросившего.
// Админ видит имена и оценки; обычный пользователь — только имена, и лишь
// если голосовал сам, иначе ErrNotAVoter. Чужая оценка не-админу не
// показывается никогда.
func (s *Service) ListVoters(ctx context.Context, msgID, requesterID int64, isAdmin bool) (domain.VoterView, error) {
	post, err := s.repo.GetPost(ctx, msgID)
	if errors.Is(err, domain.ErrPostNotFound) {
		if !isAdmin {
			return domain.VoterView{}, domain.ErrNotAVoter
		}
		return domain.VoterView{Admin: true}, nil
	}
	if err != nil {
		return domain.VoterView{}, fmt.Errorf("чтение поста: %w", err)
	}
	if !isAdmin {
		key := strconv.FormatInt(requesterID, 10)
		if _, ok := post.Votes[key]; !ok {
			return domain.VoterView{}, domain.ErrNotAVoter
		}
	}
	view := domain.VoterView{
		Admin: isAdmin,
		Lines: make([]domain.VoterLine, 0, len(post.Votes)),
	}
	for _, vote := range post.Votes {
		view.Lines = append(view.Lines, domain.VoterLine{
			Name:      vote.Name,
			Score:     vote.Score,
			ShowScore: isAdmin,
		})
	}
	sort.Slice(view.Lines, func(i, j int) bool {
		if view.Lines[i].Name != view.Lines[j].Name {
			return view.Lines[i].Name < view.Lines[j].Name
		}
		return view.Lines[i].Score < view.Lines[j].Score
	})
	return view, nil
}
