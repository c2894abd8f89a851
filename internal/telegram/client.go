// Package telegram связывает Telegram Bot API с доменными событиями и Notifier.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"shiftbot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// botAPI часть *tgbotapi.BotAPI, которой пользуется клиент.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	CopyMessage(config tgbotapi.CopyMessageConfig) (tgbotapi.MessageID, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Client реализует domain.Notifier поверх Telegram Bot API.
type Client struct {
	api      botAPI
	username string
}

// NewClient авторизуется по токену бота.
func NewClient(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize bot: %w", err)
	}
	return &Client{api: api, username: api.Self.UserName}, nil
}

// Username имя бота без @.
func (c *Client) Username() string {
	return c.username
}

// SendMessage отправляет текст. В личный чат без inline-кнопок прикладывается
// постоянное меню.
func (c *Client) SendMessage(_ context.Context, chatID int64, text string, kb domain.Keyboard) (domain.Location, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	switch {
	case len(kb) > 0:
		msg.ReplyMarkup = toMarkup(kb)
	case isPrivate(chatID):
		msg.ReplyMarkup = privateMenu()
	}
	return c.send(msg)
}

func (c *Client) ReplyMessage(_ context.Context, to domain.Location, text string, kb domain.Keyboard) (domain.Location, error) {
	msg := tgbotapi.NewMessage(to.ChatID, text)
	msg.ReplyToMessageID = to.MessageID
	msg.AllowSendingWithoutReply = true
	if len(kb) > 0 {
		msg.ReplyMarkup = toMarkup(kb)
	}
	return c.send(msg)
}

func (c *Client) SendMedia(_ context.Context, chatID int64, mediaRef string, kb domain.Keyboard) (domain.Location, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(mediaRef))
	if len(kb) > 0 {
		photo.ReplyMarkup = toMarkup(kb)
	}
	return c.send(photo)
}

func (c *Client) CopyMessage(_ context.Context, chatID int64, from domain.Location) (domain.Location, error) {
	id, err := c.api.CopyMessage(tgbotapi.NewCopyMessage(chatID, from.ChatID, from.MessageID))
	if err != nil {
		return domain.Location{}, mapError(err)
	}
	return domain.Location{ChatID: chatID, MessageID: id.MessageID}, nil
}

func (c *Client) DeleteMessage(_ context.Context, loc domain.Location) error {
	return c.request(tgbotapi.NewDeleteMessage(loc.ChatID, loc.MessageID))
}

// EditButtons заменяет кнопки сообщения, nil убирает их.
func (c *Client) EditButtons(_ context.Context, loc domain.Location, kb domain.Keyboard) error {
	return c.request(tgbotapi.NewEditMessageReplyMarkup(loc.ChatID, loc.MessageID, toMarkup(kb)))
}

// EditText заменяет текст сообщения. Без kb кнопки убираются.
func (c *Client) EditText(_ context.Context, loc domain.Location, text string, kb domain.Keyboard) error {
	edit := tgbotapi.NewEditMessageText(loc.ChatID, loc.MessageID, text)
	if len(kb) > 0 {
		markup := toMarkup(kb)
		edit.ReplyMarkup = &markup
	}
	return c.request(edit)
}

func (c *Client) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	answer := tgbotapi.NewCallback(callbackID, text)
	answer.ShowAlert = alert
	return c.request(answer)
}

// DeepLink ссылка https://t.me/<bot>?start=<payload>.
func (c *Client) DeepLink(payload string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", c.username, payload)
}

func (c *Client) send(msg tgbotapi.Chattable) (domain.Location, error) {
	sent, err := c.api.Send(msg)
	if err != nil {
		return domain.Location{}, mapError(err)
	}
	var chatID int64
	if sent.Chat != nil {
		chatID = sent.Chat.ID
	}
	return domain.Location{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func (c *Client) request(req tgbotapi.Chattable) error {
	if _, err := c.api.Request(req); err != nil {
		return mapError(err)
	}
	return nil
}

// mapError переводит отказ доставки пользователю в domain.ErrUnreachable.
func mapError(err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		var value tgbotapi.Error
		if !errors.As(err, &value) {
			return fmt.Errorf("telegram request failed: %w", err)
		}
		apiErr = &value
	}

	if apiErr.Code == http.StatusForbidden ||
		strings.Contains(strings.ToLower(apiErr.Message), "chat not found") {
		return fmt.Errorf("%w: %s", domain.ErrUnreachable, apiErr.Message)
	}
	return fmt.Errorf("telegram api error %d: %s", apiErr.Code, apiErr.Message)
}

// Личные чаты в Telegram имеют положительный id, группы отрицательный.
func isPrivate(chatID int64) bool {
	return chatID > 0
}
