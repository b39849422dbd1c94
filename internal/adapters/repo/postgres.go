package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tg-rating-bot/internal/domain"
	"tg-rating-bot/internal/infra/metrics"
)

// Postgres реализует domain.PostRepo поверх pgxpool. Голоса лежат в
// jsonb-колонке votes, ключ — идентификатор проголосовавшего.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// voteDoc — формат одного голоса внутри колонки votes.
type voteDoc struct {
	Score int    `json:"score"`
	Name  string `json:"name"`
}

// EnsureSchema создаёт таблицу постов, если её ещё нет.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	start := time.Now()
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS posts (
    tg_msg_id  BIGINT PRIMARY KEY,
    chat_id    BIGINT NOT NULL,
    title      TEXT NOT NULL,
    votes      JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	metrics.ObserveNetworkRequest("postgres", "ensure_schema", "posts", start, err)
	return err
}

// CreatePost реализует domain.PostRepo. Повторная вставка того же поста —
// no-op, существующие голоса не затираются.
func (p *Postgres) CreatePost(ctx context.Context, post domain.Post) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO posts (tg_msg_id, chat_id, title)
VALUES ($1, $2, $3)
ON CONFLICT (tg_msg_id) DO NOTHING
`, post.TGMsgID, post.ChatID, post.Title)
	metrics.ObserveNetworkRequest("postgres", "posts_insert", "posts", start, err)
	return err
}

// UpsertVote пишет голос одним запросом: вставка с синтезом записи либо
// точечное jsonb_set по ключу пользователя. Конкурентные голоса разных
// пользователей обновляют разные ключи и не теряются.
func (p *Postgres) UpsertVote(ctx context.Context, msgID, chatID int64, title, voterID string, vote domain.Vote) error {
	payload, err := json.Marshal(voteDoc{Score: vote.Score, Name: vote.Name})
	if err != nil {
		return fmt.Errorf("marshal vote: %w", err)
	}
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	start := time.Now()
	_, err = p.pool.Exec(ctx, `
INSERT INTO posts (tg_msg_id, chat_id, title, votes)
VALUES ($1, $2, $3, jsonb_build_object($4::text, $5::jsonb))
ON CONFLICT (tg_msg_id) DO UPDATE SET votes = jsonb_set(posts.votes, ARRAY[$4::text], $5::jsonb)
`, msgID, chatID, title, voterID, payload)
	metrics.ObserveNetworkRequest("postgres", "votes_upsert", "posts", start, err)
	return err
}

// GetPost реализует domain.PostRepo.
func (p *Postgres) GetPost(ctx context.Context, msgID int64) (domain.Post, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	start := time.Now()
	row := p.pool.QueryRow(ctx, `SELECT tg_msg_id, chat_id, title, votes FROM posts WHERE tg_msg_id = $1`, msgID)
	post, err := scanPost(row)
	metrics.ObserveNetworkRequest("postgres", "posts_select", "posts", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Post{}, domain.ErrPostNotFound
	}
	if err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

// ListPosts реализует domain.PostRepo.
func (p *Postgres) ListPosts(ctx context.Context) ([]domain.Post, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT tg_msg_id, chat_id, title, votes FROM posts ORDER BY tg_msg_id`)
	metrics.ObserveNetworkRequest("postgres", "posts_select_all", "posts", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func scanPost(row pgx.Row) (domain.Post, error) {
	var post domain.Post
	var votes []byte
	if err := row.Scan(&post.TGMsgID, &post.ChatID, &post.Title, &votes); err != nil {
		return domain.Post{}, err
	}
	var docs map[string]voteDoc
	if err := json.Unmarshal(votes, &docs); err != nil {
		return domain.Post{}, fmt.Errorf("decode votes: %w", err)
	}
	post.Votes = make(map[string]domain.Vote, len(docs))
	for voter, doc := range docs {
		post.Votes[voter] = domain.Vote{Score: doc.Score, Name: doc.Name}
	}
	return post, nil
}
