package usecase

import (
	"context"
	"errors"

	"shiftbot/internal/domain"

	"github.com/sirupsen/logrus"
)

// delivery отправляет уведомления владельцу в личный чат, а если это
// невозможно, оставляет сообщение на месте со ссылкой на личный чат.
type delivery struct {
	notifier domain.Notifier
	log      logrus.FieldLogger
}

// toOwner пишет владельцу в личку. Если адресат недоступен:
//   - при заданном prompt текст календаря заменяется сообщением со ссылкой;
//   - иначе ссылка отправляется ответом на origin.
//
// При успешной доставке prompt удаляется. Возвращает true, если сообщение
// дошло в личный чат.
func (d delivery) toOwner(ctx context.Context, ownerID int64, text string, origin domain.Location, prompt domain.Location) bool {
	_, err := d.notifier.SendMessage(ctx, ownerID, text, nil)
	if err == nil {
		if !prompt.IsZero() {
			d.dropPrompt(ctx, prompt)
		}
		return true
	}

	entry := d.log.WithFields(logrus.Fields{"owner_id": ownerID, "error": err})
	if errors.Is(err, domain.ErrUnreachable) {
		entry.Debug("Owner unreachable in private chat, degrading")
	} else {
		entry.Warn("Failed to notify owner")
	}

	kb := d.privateLink()
	if !prompt.IsZero() {
		if err := d.notifier.EditText(ctx, prompt, text+"\n\n"+textOpenPrivate, kb); err == nil {
			return false
		}
	}
	if !origin.IsZero() {
		if _, err := d.notifier.ReplyMessage(ctx, origin, text+"\n\n"+textOpenPrivate, kb); err != nil {
			entry.WithField("reply_error", err).Warn("Failed to reply in place")
		}
	}
	return false
}

// dropPrompt удаляет сообщение-календарь, а если удалить нельзя, снимает кнопки.
func (d delivery) dropPrompt(ctx context.Context, prompt domain.Location) {
	if err := d.notifier.DeleteMessage(ctx, prompt); err != nil {
		if err := d.notifier.EditButtons(ctx, prompt, nil); err != nil {
			d.log.WithField("error", err).Debug("Failed to clear prompt")
		}
	}
}

// failPrompt заменяет текст календаря сообщением об ошибке.
func (d delivery) failPrompt(ctx context.Context, prompt domain.Location, text string) {
	if prompt.IsZero() {
		return
	}
	if err := d.notifier.EditText(ctx, prompt, text, nil); err != nil {
		d.log.WithField("error", err).Debug("Failed to edit prompt")
	}
}

// deleteQuietly удаляет сообщение, ошибки только логируются.
func (d delivery) deleteQuietly(ctx context.Context, loc domain.Location) {
	if err := d.notifier.DeleteMessage(ctx, loc); err != nil {
		d.log.WithFields(logrus.Fields{"chat_id": loc.ChatID, "message_id": loc.MessageID, "error": err}).
			Debug("Failed to delete message")
	}
}

func (d delivery) privateLink() domain.Keyboard {
	return domain.Keyboard{{{Text: textOpenPrivateBtn, URL: d.notifier.DeepLink("start")}}}
}
