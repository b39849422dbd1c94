package bot

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// RatingKeyboard строит клавиатуру панели: две строки оценок 1-5 и 6-10
// и строка раскрытия списка проголосовавших.
func RatingKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := func(from, to int) []tgbotapi.InlineKeyboardButton {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, to-from+1)
		for i := from; i <= to; i++ {
			label := strconv.Itoa(i)
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(label, label))
		}
		return buttons
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row(1, 5),
		row(6, 10),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 See who voted", checkVotersData),
		),
	)
}
