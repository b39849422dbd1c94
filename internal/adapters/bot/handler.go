package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tg-rating-bot/internal/adapters/telegram"
	"tg-rating-bot/internal/domain"
	"tg-rating-bot/internal/infra/metrics"
	"tg-rating-bot/internal/usecase/leaderboard"
	"tg-rating-bot/internal/usecase/ratings"
)

const (
	titleLimit      = 30
	mediaTitle      = "Media Post"
	checkVotersData = "check_voters"

	storeUnavailableText = "Database unavailable, please try again later."
)

// BotAPI — минимальная поверхность клиента Telegram, нужная обработчику.
// *tgbotapi.BotAPI её реализует; в тестах подставляется запись вызовов.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler обслуживает входящие апдейты бота.
type Handler struct {
	bot        BotAPI
	log        zerolog.Logger
	ratingsUC  *ratings.Service
	boardUC    *leaderboard.Service
	membership domain.Membership
}

// NewHandler создаёт обработчик.
func NewHandler(bot BotAPI, log zerolog.Logger, ratingsUC *ratings.Service, boardUC *leaderboard.Service, membership domain.Membership) *Handler {
	return &Handler{
		bot:        bot,
		log:        log,
		ratingsUC:  ratingsUC,
		boardUC:    boardUC,
		membership: membership,
	}
}

// HandleUpdate обрабатывает входящий апдейт. Сбой одного апдейта не
// должен влиять на остальные, поэтому паника гасится здесь.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Msg("паника в обработчике апдейта")
		}
	}()
	switch {
	case upd.ChannelPost != nil:
		// Команды в канале отвечают как обычные команды, панель к ним
		// не цепляется.
		if strings.HasPrefix(strings.TrimSpace(upd.ChannelPost.Text), "/") {
			h.handleMessage(ctx, upd.ChannelPost)
			return
		}
		h.handleChannelPost(ctx, upd.ChannelPost)
	case upd.Message != nil:
		h.handleMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		h.handleCallback(ctx, upd.CallbackQuery)
	}
}

func (h *Handler) handleChannelPost(ctx context.Context, post *tgbotapi.Message) {
	if !rateable(post) {
		return
	}
	title := deriveTitle(post.Text, post.Caption)
	if err := h.ratingsUC.CreatePost(ctx, int64(post.MessageID), post.Chat.ID, title); err != nil {
		// Панель отправляется всё равно: голос позже синтезирует запись.
		h.log.Error().Err(err).Int("msg", post.MessageID).Msg("не удалось сохранить пост")
	}

	msg := tgbotapi.NewMessage(post.Chat.ID, ratings.FormatPanel(domain.AggregateStats{}))
	msg.ReplyToMessageID = post.MessageID
	msg.ReplyMarkup = RatingKeyboard()
	start := time.Now()
	_, err := h.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram_bot", "send_panel", strconv.FormatInt(post.Chat.ID, 10), start, err)
	if err != nil {
		metrics.BotSendErrors.Inc()
		h.log.Error().Err(err).Int("msg", post.MessageID).Msg("не удалось отправить панель рейтинга")
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, "/start"):
		h.reply(msg.Chat.ID, buildStartMessage(), "")
	case strings.HasPrefix(text, "/help"):
		h.reply(msg.Chat.ID, buildHelpMessage(), "")
	case strings.HasPrefix(text, "/top"):
		h.handleTop(ctx, msg.Chat.ID)
	}
}

func (h *Handler) handleTop(ctx context.Context, chatID int64) {
	metrics.LeaderboardRequests.Inc()
	text, err := h.boardUC.Top(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			h.reply(chatID, storeUnavailableText, "")
			return
		}
		h.log.Error().Err(err).Msg("не удалось построить топ")
		h.reply(chatID, "Failed to build the leaderboard, please try again later.", "")
		return
	}
	h.reply(chatID, text, tgbotapi.ModeHTML)
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb.ID, "", false)
		return
	}
	if cb.Data == checkVotersData {
		h.handleVoterView(ctx, cb)
		return
	}
	h.handleVote(ctx, cb)
}

func (h *Handler) handleVoterView(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	isAdmin, err := h.membership.IsAdmin(ctx, chatID, cb.From.ID)
	if err != nil {
		h.log.Warn().Err(err).Int64("user", cb.From.ID).Msg("не удалось проверить роль, считаем обычным пользователем")
		isAdmin = false
	}

	view, err := h.ratingsUC.ListVoters(ctx, ratedMessageID(cb.Message), cb.From.ID, isAdmin)
	switch {
	case errors.Is(err, domain.ErrNotAVoter):
		metrics.IncVoterView("denied")
		h.answerCallback(cb.ID, "Vote first to see who voted.", true)
	case errors.Is(err, domain.ErrStoreUnavailable):
		metrics.IncVoterView("store_unavailable")
		h.answerCallback(cb.ID, storeUnavailableText, true)
	case err != nil:
		metrics.IncVoterView("error")
		h.log.Error().Err(err).Msg("не удалось получить список проголосовавших")
		h.answerCallback(cb.ID, "Failed to load voters, please try again later.", true)
	case len(view.Lines) == 0:
		metrics.IncVoterView("empty")
		h.answerCallback(cb.ID, "No votes yet.", true)
	default:
		metrics.IncVoterView("ok")
		h.answerCallback(cb.ID, ratings.FormatVoterView(view), true)
	}
}

func (h *Handler) handleVote(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	score, err := strconv.Atoi(cb.Data)
	if err != nil {
		h.log.Warn().Str("data", cb.Data).Msg("неизвестный payload кнопки")
		h.answerCallback(cb.ID, "", false)
		return
	}
	msgID := ratedMessageID(cb.Message)
	chatID := cb.Message.Chat.ID

	stats, err := h.ratingsUC.RecordVote(ctx, msgID, chatID, cb.From.ID, score, displayName(cb.From))
	switch {
	case errors.Is(err, domain.ErrScoreOutOfRange):
		h.answerCallback(cb.ID, "Scores go from 1 to 10.", true)
		return
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.answerCallback(cb.ID, storeUnavailableText, true)
		return
	case err != nil:
		h.log.Error().Err(err).Int64("msg", msgID).Msg("не удалось записать голос")
		h.answerCallback(cb.ID, "Failed to record the vote, please try again.", true)
		return
	}

	metrics.IncVote(score)
	// Подтверждение уходит до перерисовки, чтобы кнопка не «висела»
	// в ожидании редактирования панели.
	h.answerCallback(cb.ID, fmt.Sprintf("Rated %d/10", score), false)
	h.renderPanel(cb.Message, stats)
}

// renderPanel заменяет текст панели, только если он изменился.
func (h *Handler) renderPanel(panel *tgbotapi.Message, stats domain.AggregateStats) {
	newText := ratings.FormatPanel(stats)
	if newText == panel.Text {
		metrics.PanelEditsSkipped.Inc()
		return
	}
	edit := tgbotapi.NewEditMessageText(panel.Chat.ID, panel.MessageID, newText)
	markup := RatingKeyboard()
	edit.ReplyMarkup = &markup
	start := time.Now()
	_, err := h.bot.Send(edit)
	metrics.ObserveNetworkRequest("telegram_bot", "edit_panel", strconv.FormatInt(panel.Chat.ID, 10), start, err)
	if err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			// Гонка двух голосов с одинаковым итоговым текстом.
			h.log.Debug().Err(err).Msg("панель уже в актуальном состоянии")
			return
		}
		metrics.BotSendErrors.Inc()
		h.log.Error().Err(err).Msg("не удалось обновить панель")
		return
	}
	metrics.PanelEditsTotal.Inc()
}

func (h *Handler) answerCallback(id, text string, alert bool) {
	callback := tgbotapi.NewCallback(id, text)
	if alert {
		callback = tgbotapi.NewCallbackWithAlert(id, text)
	}
	start := time.Now()
	_, err := h.bot.Request(callback)
	metrics.ObserveNetworkRequest("telegram_bot", "answer_callback", "callback", start, err)
	if err != nil {
		h.log.Error().Err(err).Msg("не удалось ответить на callback")
	}
}

func (h *Handler) reply(chatID int64, text, parseMode string) {
	for _, part := range telegram.SplitMessage(text) {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = parseMode
		msg.DisableWebPagePreview = true
		start := time.Now()
		_, err := h.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(chatID, 10), start, err)
		if err != nil {
			metrics.BotSendErrors.Inc()
			h.log.Error().Err(err).Msg("не удалось отправить сообщение")
			return
		}
	}
}

// ratedMessageID возвращает идентификатор оцениваемого поста. Панель
// привязана к посту через reply; если привязки нет, голос ложится на
// саму панель.
func ratedMessageID(panel *tgbotapi.Message) int64 {
	if panel.ReplyToMessage != nil {
		return int64(panel.ReplyToMessage.MessageID)
	}
	return int64(panel.MessageID)
}

// rateable отбирает посты, к которым цепляется панель: текст, фото,
// видео, документы и анимации. Команды исключаются.
func rateable(post *tgbotapi.Message) bool {
	if strings.HasPrefix(strings.TrimSpace(post.Text), "/") {
		return false
	}
	return post.Text != "" || post.Caption != "" || len(post.Photo) > 0 ||
		post.Video != nil || post.Document != nil || post.Animation != nil
}

// deriveTitle строит короткий заголовок поста для леджера и лидерборда.
func deriveTitle(text, caption string) string {
	source := strings.TrimSpace(text)
	if source == "" {
		source = strings.TrimSpace(caption)
	}
	if source == "" {
		return mediaTitle
	}
	runes := []rune(source)
	if len(runes) <= titleLimit {
		return source
	}
	return string(runes[:titleLimit]) + "..."
}

// displayName собирает имя голосующего на момент голосования.
func displayName(user *tgbotapi.User) string {
	if user == nil {
		return "Anonymous"
	}
	name := strings.TrimSpace(user.FirstName)
	if user.LastName != "" {
		name = strings.TrimSpace(name + " " + user.LastName)
	}
	if name == "" {
		name = user.UserName
	}
	if name == "" {
		name = "Anonymous"
	}
	return name
}

func buildStartMessage() string {
	lines := []string{
		"👋 This bot attaches a 1-10 rating panel to every new channel post.",
		"",
		"Add the bot to a channel as an administrator and it will reply to",
		"each post with rating buttons. Tap a number to vote; tap another",
		"number to change your vote.",
		"",
		"Commands:",
		"• /top — top rated posts.",
		"• /help — how the bot works.",
	}
	return strings.Join(lines, "\n")
}

func buildHelpMessage() string {
	lines := []string{
		"📖 How it works:",
		"",
		"• Every new channel post gets a reply with buttons 1-10.",
		"• The panel shows the running average and a progress bar.",
		"• Your repeated vote replaces the previous one.",
		"• \"👥 See who voted\" shows the voter list: admins see names and",
		"  scores, voters see names only.",
		"• /top lists the five best rated posts.",
	}
	return strings.Join(lines, "\n")
}
