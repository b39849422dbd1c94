package ratings

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"tg-rating-bot/internal/domain"
)

const (
	barLength      = 10
	panelEmptyText = "📊 Rate this post:\nNo ratings yet."

	// Telegram обрезает alert callback-ответа на 200 символах,
	// поэтому список голосовавших режется заранее по целым строкам.
	voterViewLimit = 200
	truncationMark = "…"
)

// FormatPanel формирует текст панели рейтинга под постом.
func FormatPanel(stats domain.AggregateStats) string {
	if stats.Count == 0 {
		return panelEmptyText
	}
	return fmt.Sprintf("📊 Rating: %.1f / 10\n%s\n(%d votes)", stats.Average, ProgressBar(stats.Average), stats.Count)
}

// ProgressBar строит 10-символьную шкалу из заполненных и пустых блоков.
// Половинки округляются вверх: среднее 7.5 даёт 8 заполненных блоков.
func ProgressBar(average float64) string {
	filled := int(math.Floor(average + 0.5))
	if filled < 0 {
		filled = 0
	}
	if filled > barLength {
		filled = barLength
	}
	return strings.Repeat("■", filled) + strings.Repeat("□", barLength-filled)
}

// FormatVoterView формирует текст всплывающего списка проголосовавших.
// Текст не превышает voterViewLimit символов: лишние строки отбрасываются
// целиком, в конце добавляется маркер усечения.
func FormatVoterView(view domain.VoterView) string {
	header := fmt.Sprintf("Voters (%d)", len(view.Lines))
	if view.Admin {
		header = fmt.Sprintf("Admin view (%d voters)", len(view.Lines))
	}
	lines := make([]string, 0, len(view.Lines)+1)
	lines = append(lines, header)
	for _, line := range view.Lines {
		if line.ShowScore {
			lines = append(lines, fmt.Sprintf("• %s — %d/10", line.Name, line.Score))
		} else {
			lines = append(lines, "• "+line.Name)
		}
	}
	full := strings.Join(lines, "\n")
	if utf8.RuneCountInString(full) <= voterViewLimit {
		return full
	}
	budget := voterViewLimit - utf8.RuneCountInString("\n"+truncationMark)
	var b strings.Builder
	length := 0
	for i, line := range lines {
		cost := utf8.RuneCountInString(line)
		if i > 0 {
			cost++
		}
		if length+cost > budget {
			break
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
		length += cost
	}
	return b.String() + "\n" + truncationMark
}
