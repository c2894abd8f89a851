package domain

import (
	"context"
	"strings"
)

// ChatKind тип чата, из которого пришло событие.
type ChatKind int

const (
	ChatPrivate ChatKind = iota
	ChatGroup
)

// Sender автор входящего события.
type Sender struct {
	ID       int64
	Username string
	FullName string
}

// Display возвращает @username или полное имя.
func (s Sender) Display() string {
	if s.Username != "" {
		return "@" + s.Username
	}
	return strings.TrimSpace(s.FullName)
}

// MediaEvent входящее фото/изображение. GroupID задан для альбомов.
type MediaEvent struct {
	Sender   Sender
	Source   Location
	Chat     ChatKind
	MediaRef string
	Caption  string
	GroupID  string
}

// CallbackEvent нажатие inline-кнопки.
type CallbackEvent struct {
	ID      string
	Sender  Sender
	Message Location
	Chat    ChatKind
	Data    string
}

// CommandEvent текстовая команда или текст в личном чате.
type CommandEvent struct {
	Sender  Sender
	Source  Location
	Chat    ChatKind
	Command string
	Args    string
	Text    string
}

// JoinEvent новый участник группового чата.
type JoinEvent struct {
	Sender Sender
	ChatID int64
}

// Update одно входящее событие платформы. Заполнено ровно одно поле.
type Update struct {
	ID       int
	Media    *MediaEvent
	Callback *CallbackEvent
	Command  *CommandEvent
	Joined   *JoinEvent
}

// Button inline-кнопка: либо Data (callback), либо URL.
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard строки inline-кнопок.
type Keyboard [][]Button

// Notifier исходящие вызовы к чат-платформе. Если адресат никогда не открывал
// чат с ботом или заблокировал его, методы возвращают ErrUnreachable.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb Keyboard) (Location, error)
	ReplyMessage(ctx context.Context, to Location, text string, kb Keyboard) (Location, error)
	SendMedia(ctx context.Context, chatID int64, mediaRef string, kb Keyboard) (Location, error)
	CopyMessage(ctx context.Context, chatID int64, from Location) (Location, error)
	DeleteMessage(ctx context.Context, loc Location) error
	EditButtons(ctx context.Context, loc Location, kb Keyboard) error
	EditText(ctx context.Context, loc Location, text string, kb Keyboard) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	// DeepLink возвращает ссылку для открытия личного чата с ботом.
	DeepLink(payload string) string
}
