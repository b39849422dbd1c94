package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию бота.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	Telegram struct {
		Token string `envconfig:"TG_BOT_TOKEN"`
	} `envconfig:""`

	// PGDSN пустой — посты и голоса живут в памяти процесса.
	PGDSN string `envconfig:"PG_DSN"`

	// RedisAddr пустой — лидерборд не кэшируется.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	Leaderboard struct {
		Limit    int           `envconfig:"LEADERBOARD_LIMIT" default:"5"`
		CacheTTL time.Duration `envconfig:"LEADERBOARD_CACHE_TTL" default:"30s"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
