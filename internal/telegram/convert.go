package telegram

import (
	"strings"

	"shiftbot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Кнопки постоянного меню личного чата.
const (
	menuMine   = "I miei turni"
	menuSearch = "Cerca"
	menuDates  = "Date"
)

func toMarkup(kb domain.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func privateMenu() tgbotapi.ReplyKeyboardMarkup {
	menu := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuMine)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuSearch), tgbotapi.NewKeyboardButton(menuDates)),
	)
	menu.ResizeKeyboard = true
	return menu
}

// toUpdate переводит обновление Telegram в доменное событие. false означает,
// что событие боту не интересно.
func toUpdate(u tgbotapi.Update) (domain.Update, bool) {
	upd := domain.Update{ID: u.UpdateID}

	switch {
	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		if cb.From == nil {
			return upd, false
		}
		ev := &domain.CallbackEvent{
			ID:     cb.ID,
			Sender: toSender(cb.From),
			Data:   cb.Data,
		}
		if cb.Message != nil && cb.Message.Chat != nil {
			ev.Message = domain.Location{ChatID: cb.Message.Chat.ID, MessageID: cb.Message.MessageID}
			ev.Chat = chatKind(cb.Message.Chat)
		}
		upd.Callback = ev
		return upd, true

	case u.ChatMember != nil:
		m := u.ChatMember
		if !joined(m.OldChatMember.Status, m.NewChatMember.Status) || m.NewChatMember.User == nil {
			return upd, false
		}
		upd.Joined = &domain.JoinEvent{Sender: toSender(m.NewChatMember.User), ChatID: m.Chat.ID}
		return upd, true

	case u.Message != nil:
		return fromMessage(upd, u.Message)
	}

	return upd, false
}

func fromMessage(upd domain.Update, msg *tgbotapi.Message) (domain.Update, bool) {
	if msg.From == nil || msg.Chat == nil {
		return upd, false
	}
	sender := toSender(msg.From)
	source := domain.Location{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
	chat := chatKind(msg.Chat)

	if ref, ok := imageRef(msg); ok {
		upd.Media = &domain.MediaEvent{
			Sender:   sender,
			Source:   source,
			Chat:     chat,
			MediaRef: ref,
			Caption:  strings.TrimSpace(msg.Caption),
			GroupID:  msg.MediaGroupID,
		}
		return upd, true
	}

	if msg.Text == "" {
		return upd, false
	}
	cmd := &domain.CommandEvent{Sender: sender, Source: source, Chat: chat, Text: msg.Text}
	if msg.IsCommand() {
		cmd.Command = strings.ToLower(msg.Command())
		cmd.Args = strings.TrimSpace(msg.CommandArguments())
	} else if chat == domain.ChatGroup {
		return upd, false
	}
	upd.Command = cmd
	return upd, true
}

// imageRef file id самой крупной фотографии или изображения-документа.
func imageRef(msg *tgbotapi.Message) (string, bool) {
	if n := len(msg.Photo); n > 0 {
		return msg.Photo[n-1].FileID, true
	}
	if d := msg.Document; d != nil && strings.HasPrefix(d.MimeType, "image/") {
		return d.FileID, true
	}
	return "", false
}

func toSender(u *tgbotapi.User) domain.Sender {
	return domain.Sender{
		ID:       u.ID,
		Username: u.UserName,
		FullName: strings.TrimSpace(u.FirstName + " " + u.LastName),
	}
}

func chatKind(c *tgbotapi.Chat) domain.ChatKind {
	if c.IsPrivate() {
		return domain.ChatPrivate
	}
	return domain.ChatGroup
}

func joined(oldStatus, newStatus string) bool {
	return (oldStatus == "left" || oldStatus == "kicked") &&
		(newStatus == "member" || newStatus == "restricted")
}
