package ratings

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"tg-rating-bot/internal/domain"
)

func TestProgressBarHalfUp(t *testing.T) {
	if bar := ProgressBar(7.5); bar != "■■■■■■■■□□" {
		t.Fatalf("7.5 должно давать 8 заполненных блоков, получили %q", bar)
	}
}

func TestProgressBarBounds(t *testing.T) {
	if bar := ProgressBar(0); bar != strings.Repeat("□", 10) {
		t.Fatalf("ожидали пустую шкалу, получили %q", bar)
	}
	if bar := ProgressBar(10); bar != strings.Repeat("■", 10) {
		t.Fatalf("ожидали полную шкалу, получили %q", bar)
	}
}

func TestFormatPanelEmpty(t *testing.T) {
	text := FormatPanel(domain.AggregateStats{})
	if !strings.Contains(text, "No ratings yet.") {
		t.Fatalf("ожидали текст без оценок, получили %q", text)
	}
	if strings.Contains(text, "/ 10") {
		t.Fatalf("пустой агрегат не должен показывать среднее: %q", text)
	}
}

func TestFormatPanelThreeVotes(t *testing.T) {
	text := FormatPanel(domain.AggregateStats{Average: 8, Count: 3})
	expected := "📊 Rating: 8.0 / 10\n■■■■■■■■□□\n(3 votes)"
	if text != expected {
		t.Fatalf("ожидали %q, получили %q", expected, text)
	}
}

func TestFormatPanelDeterministic(t *testing.T) {
	stats := domain.AggregateStats{Average: 7.5, Count: 2}
	if FormatPanel(stats) != FormatPanel(stats) {
		t.Fatal("одинаковый агрегат должен давать одинаковый текст")
	}
}

func TestFormatVoterViewAdmin(t *testing.T) {
	view := domain.VoterView{
		Admin: true,
		Lines: []domain.VoterLine{
			{Name: "Anna", Score: 9, ShowScore: true},
			{Name: "Ivan", Score: 7, ShowScore: true},
		},
	}
	text := FormatVoterView(view)
	if !strings.HasPrefix(text, "Admin view (2 voters)") {
		t.Fatalf("неверный заголовок: %q", text)
	}
	if !strings.Contains(text, "• Anna — 9/10") || !strings.Contains(text, "• Ivan — 7/10") {
		t.Fatalf("админ должен видеть оценки: %q", text)
	}
}

func TestFormatVoterViewNamesOnly(t *testing.T) {
	view := domain.VoterView{
		Lines: []domain.VoterLine{
			{Name: "Anna", Score: 9},
			{Name: "Ivan", Score: 7},
		},
	}
	text := FormatVoterView(view)
	if !strings.HasPrefix(text, "Voters (2)") {
		t.Fatalf("неверный заголовок: %q", text)
	}
	if strings.Contains(text, "/10") {
		t.Fatalf("оценки не должны попадать в обычный вид: %q", text)
	}
}

func TestFormatVoterViewTruncates(t *testing.T) {
	var lines []domain.VoterLine
	for i := 0; i < 20; i++ {
		lines = append(lines, domain.VoterLine{Name: fmt.Sprintf("Very Long Display Name %02d", i), Score: 5})
	}
	text := FormatVoterView(domain.VoterView{Lines: lines})
	if got := utf8.RuneCountInString(text); got > voterViewLimit {
		t.Fatalf("текст превышает лимит: %d символов", got)
	}
	if !strings.HasSuffix(text, truncationMark) {
		t.Fatalf("ожидали маркер усечения в конце: %q", text)
	}
	for _, line := range strings.Split(text, "\n")[1:] {
		if line != truncationMark && !strings.HasPrefix(line, "• ") {
			t.Fatalf("строка обрезана не целиком: %q", line)
		}
	}
}
