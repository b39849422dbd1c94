package telegram

import (
	"context"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-rating-bot/internal/infra/metrics"
)

// MembershipChecker реализует domain.Membership через getChatMember.
type MembershipChecker struct {
	bot *tgbotapi.BotAPI
}

// NewMembershipChecker создаёт проверку ролей.
func NewMembershipChecker(bot *tgbotapi.BotAPI) *MembershipChecker {
	return &MembershipChecker{bot: bot}
}

// IsAdmin возвращает true для создателя и администраторов канала.
// Контекст есть в сигнатуре domain.Membership, но клиент tgbotapi v5
// не принимает context.Context, поэтому здесь он не используется.
func (m *MembershipChecker) IsAdmin(_ context.Context, chatID, userID int64) (bool, error) {
	start := time.Now()
	member, err := m.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	metrics.ObserveNetworkRequest("telegram_bot", "get_chat_member", strconv.FormatInt(chatID, 10), start, err)
	if err != nil {
		return false, err
	}
	return member.IsCreator() || member.IsAdministrator(), nil
}
