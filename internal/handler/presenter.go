package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shiftbot/internal/callback"
	"shiftbot/internal/domain"
)

// showMedia показывает смену в chatID: копия исходного сообщения, затем
// сохранённое изображение, затем текстовая заглушка.
func (h *BotHandler) showMedia(ctx context.Context, chatID int64, s *domain.Shift) (domain.Location, error) {
	loc, err := h.notifier.CopyMessage(ctx, chatID, s.Source)
	if err == nil || errors.Is(err, domain.ErrUnreachable) {
		return loc, err
	}

	if s.MediaRef != "" {
		loc, err = h.notifier.SendMedia(ctx, chatID, s.MediaRef, nil)
		if err == nil || errors.Is(err, domain.ErrUnreachable) {
			return loc, err
		}
	}

	return h.notifier.SendMessage(ctx, chatID, textImageMissing(s.Date), nil)
}

// showShift показывает смену и кнопки ответом под ней.
func (h *BotHandler) showShift(ctx context.Context, chatID int64, s *domain.Shift, kb domain.Keyboard) error {
	loc, err := h.showMedia(ctx, chatID, s)
	if err != nil {
		return err
	}

	if _, err = h.notifier.ReplyMessage(ctx, loc, nbsp, kb); err == nil || errors.Is(err, domain.ErrUnreachable) {
		return err
	}
	_, err = h.notifier.SendMessage(ctx, chatID, nbsp, kb)
	return err
}

func (h *BotHandler) showShifts(ctx context.Context, chatID int64, shifts []*domain.Shift, kb func(*domain.Shift) domain.Keyboard) error {
	for _, s := range shifts {
		if err := h.showShift(ctx, chatID, s, kb(s)); err != nil {
			return fmt.Errorf("show shift %d: %w", s.ID, err)
		}
	}
	return nil
}

func contactKeyboard(s *domain.Shift) domain.Keyboard {
	return domain.Keyboard{{
		{Text: btnContact, Data: callback.MustEncode(callback.Token{Action: callback.ActionContact, ShiftID: s.ID})},
	}}
}

func closeKeyboard(s *domain.Shift) domain.Keyboard {
	return domain.Keyboard{{
		{Text: btnResolved, Data: callback.MustEncode(callback.Token{Action: callback.ActionClose, ShiftID: s.ID})},
	}}
}

func ownerKeyboard(s *domain.Shift) domain.Keyboard {
	return domain.Keyboard{{{Text: textContactButton(s), URL: ownerURL(s)}}}
}

func urlKeyboard(text, url string) domain.Keyboard {
	return domain.Keyboard{{{Text: text, URL: url}}}
}

// ownerURL ссылка на личный чат с автором смены.
func ownerURL(s *domain.Shift) string {
	if name, ok := strings.CutPrefix(s.OwnerDisplay, "@"); ok && name != "" {
		return "https://t.me/" + name
	}
	return fmt.Sprintf("tg://user?id=%d", s.OwnerID)
}

// memberKeyboard кнопки действий администратора над участником.
func memberKeyboard(u *domain.User) (domain.Keyboard, error) {
	var actions []callback.Action
	switch u.Status {
	case domain.StatusPending:
		actions = []callback.Action{callback.ActionApprove, callback.ActionReject}
	case domain.StatusApproved:
		actions = []callback.Action{callback.ActionRevoke}
	default:
		return nil, nil
	}

	row := make([]domain.Button, 0, len(actions))
	for _, a := range actions {
		data, err := callback.Encode(callback.Token{Action: a, UserID: u.ID, Org: u.Org})
		if err != nil {
			return nil, err
		}
		row = append(row, domain.Button{Text: actionLabel(a), Data: data})
	}
	return domain.Keyboard{row}, nil
}

// joinKeyboard одна кнопка на каждую org.
func joinKeyboard(orgs []domain.Org) (domain.Keyboard, error) {
	kb := make(domain.Keyboard, 0, len(orgs))
	for _, org := range orgs {
		data, err := callback.Encode(callback.Token{Action: callback.ActionJoin, Org: org})
		if err != nil {
			return nil, err
		}
		kb = append(kb, []domain.Button{{Text: string(org), Data: data}})
	}
	return kb, nil
}

func actionLabel(a callback.Action) string {
	switch a {
	case callback.ActionApprove:
		return btnApprove
	case callback.ActionReject:
		return btnReject
	default:
		return btnRevoke
	}
}
