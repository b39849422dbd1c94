package leaderboard

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"tg-rating-bot/internal/domain"
)

const emptyText = "No rated posts yet."

// FormatTop формирует нумерованный список топа со ссылками на посты.
func FormatTop(ranked []domain.RatedPost) string {
	if len(ranked) == 0 {
		return emptyText
	}
	var b strings.Builder
	b.WriteString("🏆 <b>Top rated posts</b>\n")
	for i, item := range ranked {
		b.WriteString(fmt.Sprintf(
			"\n%d. <a href=\"%s\">%s</a> — %.1f/10 (%d votes)",
			i+1,
			PostLink(item.Post.ChatID, item.Post.TGMsgID),
			html.EscapeString(item.Post.Title),
			item.Stats.Average,
			item.Stats.Count,
		))
	}
	return b.String()
}

// PostLink строит ссылку вида t.me/c/{chat}/{msg}. Идентификатор
// супергруппы теряет числовой префикс -100.
func PostLink(chatID, msgID int64) string {
	chat := strings.TrimPrefix(strconv.FormatInt(chatID, 10), "-100")
	return fmt.Sprintf("https://t.me/c/%s/%d", chat, msgID)
}
