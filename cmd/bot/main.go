package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tg-rating-bot/internal/adapters/bot"
	"tg-rating-bot/internal/adapters/repo"
	"tg-rating-bot/internal/adapters/telegram"
	"tg-rating-bot/internal/domain"
	"tg-rating-bot/internal/infra/cache"
	"tg-rating-bot/internal/infra/config"
	"tg-rating-bot/internal/infra/db"
	httpinfra "tg-rating-bot/internal/infra/http"
	applog "tg-rating-bot/internal/infra/log"
	"tg-rating-bot/internal/infra/metrics"
	"tg-rating-bot/internal/usecase/leaderboard"
	"tg-rating-bot/internal/usecase/ratings"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	if cfg.Telegram.Token == "" {
		logger.Fatal().Msg("TG_BOT_TOKEN не задан")
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	postRepo := buildRepo(cfg, logger)

	var boardCache domain.Cache
	if cfg.RedisAddr != "" {
		boardCache = cache.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}
	logger.Info().Str("bot", botAPI.Self.UserName).Msg("авторизация в Telegram прошла")

	ratingsUC := ratings.NewService(postRepo)
	boardUC := leaderboard.NewService(postRepo, boardCache, cfg.Leaderboard.Limit, cfg.Leaderboard.CacheTTL)
	handler := bot.NewHandler(botAPI, logger, ratingsUC, boardUC, telegram.NewMembershipChecker(botAPI))

	srv := httpinfra.NewServer(logger)
	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	updCfg := tgbotapi.NewUpdate(0)
	updCfg.Timeout = 30
	updCfg.AllowedUpdates = []string{"message", "channel_post", "callback_query"}
	updates := botAPI.GetUpdatesChan(updCfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for upd := range updates {
			handler.HandleUpdate(ctx, upd)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	logger.Info().Msg("остановка бота")

	botAPI.StopReceivingUpdates()
	cancel()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

// buildRepo выбирает хранилище: Postgres при заданном PG_DSN, иначе
// память процесса. Недоступная база не валит процесс — бот переходит
// в деградированный режим и отвечает пользователям об этом.
func buildRepo(cfg config.AppConfig, logger zerolog.Logger) domain.PostRepo {
	if cfg.PGDSN == "" {
		logger.Warn().Msg("PG_DSN не задан, голоса хранятся в памяти процесса")
		return repo.NewMemory()
	}
	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Error().Err(err).Msg("БД недоступна, бот работает в деградированном режиме")
		return repo.NewUnavailable()
	}
	pg := repo.NewPostgres(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pg.EnsureSchema(ctx); err != nil {
		logger.Error().Err(err).Msg("не удалось подготовить схему, бот работает в деградированном режиме")
		return repo.NewUnavailable()
	}
	return pg
}
