package domain

import "errors"

var (
	// ErrPostNotFound возвращается при чтении неизвестного поста.
	ErrPostNotFound = errors.New("пост не найден")
	// ErrScoreOutOfRange возвращается при оценке вне диапазона 1..10.
	ErrScoreOutOfRange = errors.New("оценка вне диапазона 1..10")
	// ErrNotAVoter возвращается, когда не-админ запрашивает список, не проголосовав.
	ErrNotAVoter = errors.New("пользователь ещё не голосовал")
	// ErrStoreUnavailable возвращается в деградированном режиме без хранилища.
	ErrStoreUnavailable = errors.New("хранилище недоступно")
)
