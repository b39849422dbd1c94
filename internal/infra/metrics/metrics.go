package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	VotesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "votes_total",
		Help: "Общее количество записанных голосов",
	})
	VotesByScore = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "votes_by_score_total",
		Help: "Количество голосов по оценкам",
	}, []string{"score"})
	PanelEditsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "panel_edits_total",
		Help: "Количество перерисовок панели рейтинга",
	})
	PanelEditsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "panel_edits_skipped_total",
		Help: "Перерисовки, пропущенные из-за неизменного текста",
	})
	VoterViewRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voter_view_requests_total",
		Help: "Запросы списка проголосовавших по исходу",
	}, []string{"outcome"})
	LeaderboardRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leaderboard_requests_total",
		Help: "Количество запросов /top",
	})
	BotSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_send_errors_total",
		Help: "Ошибки отправки сообщений ботом",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		VotesTotal,
		VotesByScore,
		PanelEditsTotal,
		PanelEditsSkipped,
		VoterViewRequests,
		LeaderboardRequests,
		BotSendErrors,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncVote увеличивает счётчики голосов.
func IncVote(score int) {
	VotesTotal.Inc()
	VotesByScore.WithLabelValues(strconv.Itoa(score)).Inc()
}

// IncVoterView увеличивает счётчик запросов списка по исходу.
func IncVoterView(outcome string) {
	VoterViewRequests.WithLabelValues(outcome).Inc()
}
