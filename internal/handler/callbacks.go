package handler

import (
	"context"
	"errors"

	"shiftbot/internal/calendar"
	"shiftbot/internal/callback"
	"shiftbot/internal/domain"

	"github.com/sirupsen/logrus"
)

// handleCallback отвечает на каждое нажатие ровно один раз.
func (h *BotHandler) handleCallback(ctx context.Context, updateID int, cb *domain.CallbackEvent) {
	logEntry := h.logUpdate(updateID, "callback", cb.Message.ChatID, cb.Sender.ID).WithField("data", cb.Data)

	text, alert := h.routeCallback(ctx, logEntry, cb)

	if err := h.notifier.AnswerCallback(ctx, cb.ID, text, alert); err != nil {
		logEntry.WithError(err).Debug("Failed to answer callback")
	}
}

func (h *BotHandler) routeCallback(ctx context.Context, logEntry *logrus.Entry, cb *domain.CallbackEvent) (string, bool) {
	tok, err := callback.Decode(cb.Data)
	if err != nil {
		// битый токен: снимаем «часики» без текста
		logEntry.WithError(err).Warn("Malformed callback data")
		return "", false
	}
	logEntry = logEntry.WithField("action", string(tok.Action))

	switch tok.Action {
	case callback.ActionIgnore:
		return "", false
	case callback.ActionNav:
		return h.onNav(ctx, logEntry, cb, tok)
	case callback.ActionSetDate, callback.ActionSetDateAlbum:
		return h.onSetDate(ctx, logEntry, cb, tok)
	case callback.ActionSearch:
		return h.onSearch(ctx, logEntry, cb, tok)
	case callback.ActionContact:
		return h.onContact(ctx, logEntry, cb, tok)
	case callback.ActionClose:
		return h.onClose(ctx, logEntry, cb, tok)
	case callback.ActionApprove, callback.ActionReject, callback.ActionRevoke:
		return h.onTransition(ctx, logEntry, cb, tok)
	case callback.ActionJoin:
		return h.onJoin(ctx, logEntry, cb, tok)
	}
	logEntry.Warn("Unknown callback action")
	return "", false
}

func (h *BotHandler) fail(logEntry *logrus.Entry, err error, msg string) (string, bool) {
	h.logError(logEntry, err, msg)
	return errorText(err), domain.KindOf(err) == domain.KindForbidden
}

func (h *BotHandler) editText(ctx context.Context, logEntry *logrus.Entry, loc domain.Location, text string) {
	if err := h.notifier.EditText(ctx, loc, text, nil); err != nil {
		logEntry.WithError(err).Debug("Failed to edit message")
	}
}

func (h *BotHandler) onNav(ctx context.Context, logEntry *logrus.Entry, cb *domain.CallbackEvent, tok callback.Token) (string, bool) {
	kb, err := calendar.Build(tok.Month, *tok.Mode)
	if err != nil {
		return h.fail(logEntry, err, "Failed to build calendar")
	}
	if err := h.notifier.EditButtons(ctx, cb.Message, kb); err != nil {
		logEntry.WithError(err).Debug("Failed to update calendar")
	}
	return "", false
}

func (h *BotHandler) onSetDate(ctx context.Context, logEntry *logrus.Entry, cb *domain.CallbackEvent, tok callback.Token) (string, bool) {
	res, err := h.posting.ChooseDate(ctx, &domain.DateChoice{
		Actor:    cb.Sender,
		Prompt:   cb.Message,
		Date:     tok.Date,
		AlbumID:  tok.GroupID,
		Fallback: tok.Fallback,
	})
	if err != nil {
		return h.fail(logEntry, err, "Date was not applied")
	}

	logEntry.WithFields(logrus.Fields{
		"outcome": res.Outcome.String(),
		"date":    tok.Date.Format(domain.DateLayout),
	}).Info("Date chosen")
	if res.Outcome == domain.OutcomeSaved {
		return textDateSaved, false
	}
	return "", false
}

func (h *BotHandler) onSearch(ctx context.Context, logEntry *logrus.Entry, cb *domain.CallbackEvent, tok callback.Token) (string, bool) {
	shifts, err := h.browse.Search(ctx, cb.Sender, tok.Date)
	if err != nil {
		return h.fail(logEntry, err, "Search failed")
	}

	if err := h.presentSearch(ctx, cb.Message.ChatID, tok.Date, shifts); err != nil {
		h.logError(logEntry, err, "Failed to present search results")
	}
	h.editText(ctx, logEntry, cb.Message, textSearchShown(tok.Date))
	return "", false
}

func (h *BotHandler) onContact(ctx context.Context, logEntry *logrus.Entry, cb *domain.CallbackEvent, tok callback.Token) (string, bool) {
	shift, err := h.browse.Contact(ctx, cb.Sender, tok.ShiftID)
	if err != nil {
		return h.fail(logEntry, err, "Contact refused")
	}

	err = h.sendContact(ctx, cb.Sender.ID, shift)
	if errors.Is(err, domain.ErrUnreachable) {
		kb := urlKeyboard(btnOpenBot, h.notifier.DeepLink("start"))
		if _, err := h.notifier.ReplyMessage(ctx, cb.Message, textContactNeedsDM, kb); err != nil {
			logEntry.WithError(err).Debug("Failed to prompt private chat")
		}
		return "", false
	}
	if err != nil {
		return h.fail(logEntry, err, "Failed to send contact")
	}

	logEntry.WithField("shift_id", shift.ID).Info("Contact sent")
	return textContactSent, false
}

// sendContact отправляет в личный чат скриншот смены и ссылку на автора.
func (h *BotHandler) sendContact(ctx context.Context, userID int64, s *domain.Shift) error {
	if _, err := h.showMedia(ctx, userID, s); err != nil {
		return err
	}
	_, err := h.notifier.SendMessage(ctx, userID, textContactOpenChat, ownerKeyboard(s))
	return err
}

func (h *BotHandler) onClose(ctx context.Context, logEntry *logrus.Entry, cb *domain.CallbackEvent, tok callback.Token) (string, bool) {
	shift, err := h.browse.Close(ctx, cb.Sender, tok.ShiftID)
	switch {
	case errors.Is(err, domain.ErrAlreadyResolved):
		logEntry.Info("Shift already closed")
		h.editText(ctx, logEntry, cb.Message, textCloseMissing)
		return "", false
	case domain.KindOf(err) == domain.KindForbidden:
		h.logError(logEntry, err, "Close refused")
		return textCloseDenied, true
	case err != nil:
		return h.fail(logEntry, err, "Failed to close shift")
	}

	logEntry.WithField("shift_id", shift.ID).Info("Shift closed")
	h.editText(ctx, logEntry, cb.Message, textClosed(shift.Date))
	return "", false
}

func (h *BotHandler) onTransition(ctx context.Context, logEntry *logrus.Entry, cb *domain.CallbackEvent, tok callback.Token) (string, bool) {
	action, _ := tok.Action.Membership()
	logEntry = logEntry.WithFields(logrus.Fields{"target_id": tok.UserID, "org": tok.Org})

	out, err := h.membership.Transition(ctx, cb.Sender, action, tok.UserID, tok.Org)
	if err != nil {
		return h.fail(logEntry, err, "Transition refused")
	}

	h.editText(ctx, logEntry, cb.Message, textTransition(out))
	if !out.Changed {
		return textAlreadyDone, false
	}
	logEntry.WithField("status", out.User.Status).Info("Membership changed")
	return "", false
}

func (h *BotHandler) onJoin(ctx context.Context, logEntry *logrus.Entry, cb *domain.CallbackEvent, tok callback.Token) (string, bool) {
	out, err := h.membership.Request(ctx, cb.Sender, tok.Org)
	if err != nil {
		return h.fail(logEntry, err, "Join request refused")
	}

	logEntry.WithFields(logrus.Fields{"org": tok.Org, "status": out.User.Status}).Info("Join requested")
	h.editText(ctx, logEntry, cb.Message, textMembership(out))
	return "", false
}
