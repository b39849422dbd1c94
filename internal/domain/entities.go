package domain

// Vote хранит оценку одного пользователя с именем на момент голосования.
// Имя не обновляется задним числом при смене профиля.
type Vote struct {
	Score int
	Name  string
}

// Post представляет пост канала и все его голоса.
// Ключ карты — строковый идентификатор проголосовавшего пользователя.
type Post struct {
	TGMsgID int64
	ChatID  int64
	Title   string
	Votes   map[string]Vote
}

// AggregateStats — пересчитанный агрегат по голосам поста.
type AggregateStats struct {
	Average float64
	Count   int
}

// VoterLine — одна строка списка проголосовавших.
// ShowScore выставляется только для администраторов.
type VoterLine struct {
	Name      string
	Score     int
	ShowScore bool
}

// VoterView — результат раскрытия списка проголосовавших.
type VoterView struct {
	Admin bool
	Lines []VoterLine
}

// RatedPost — пост с агрегатом для лидерборда.
type RatedPost struct {
	Post  Post
	Stats AggregateStats
}
