package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"shiftbot/internal/calendar"
	"shiftbot/internal/callback"
	"shiftbot/internal/domain"

	"github.com/sirupsen/logrus"
)

// Команды, доступные в группе, и только администраторам.
var groupAdminCommands = map[string]bool{"start": true, "version": true}

func (h *BotHandler) handleCommand(ctx context.Context, updateID int, cmd *domain.CommandEvent) {
	logEntry := h.logUpdate(updateID, "command", cmd.Source.ChatID, cmd.Sender.ID).
		WithField("command", cmd.Command)

	if cmd.Chat == domain.ChatGroup {
		h.guardGroup(ctx, logEntry, cmd)
		return
	}
	h.routePrivate(ctx, logEntry, cmd)
}

// guardGroup убирает команды из группы и отправляет автора в личный чат.
func (h *BotHandler) guardGroup(ctx context.Context, logEntry *logrus.Entry, cmd *domain.CommandEvent) {
	if cmd.Command == "" {
		return
	}

	if groupAdminCommands[cmd.Command] && h.admins.IsAnyAdmin(cmd.Sender.ID) {
		text := textWelcome
		if cmd.Command == "version" {
			text = h.version
		}
		if _, err := h.notifier.ReplyMessage(ctx, cmd.Source, text, nil); err != nil {
			h.logError(logEntry, err, "Failed to reply in group")
		}
		return
	}

	if err := h.notifier.DeleteMessage(ctx, cmd.Source); err != nil {
		logEntry.WithError(err).Debug("Failed to delete group command")
	}

	text := textCommandsPrivate
	if groupAdminCommands[cmd.Command] {
		text = textAdminOnlyInGroup
	}
	if _, err := h.notifier.SendMessage(ctx, cmd.Sender.ID, text, nil); err != nil {
		h.logError(logEntry, err, "Cannot redirect to private chat")
		return
	}
	h.send(ctx, logEntry, cmd.Sender.ID, textOpenPrivateHere, urlKeyboard(btnOpenPrivate, h.notifier.DeepLink("start")))
	logEntry.Info("Group command redirected")
}

func (h *BotHandler) routePrivate(ctx context.Context, logEntry *logrus.Entry, cmd *domain.CommandEvent) {
	chatID := cmd.Source.ChatID

	name := cmd.Command
	if name == "" {
		name = textAlias(cmd.Text)
	}

	switch name {
	case "start":
		h.start(ctx, logEntry, cmd)
	case "help":
		h.send(ctx, logEntry, chatID, textWelcome, nil)
	case "version":
		h.send(ctx, logEntry, chatID, h.version, nil)
	case "cerca":
		h.search(ctx, logEntry, cmd.Sender, chatID, cmd.Args)
	case "date":
		h.dates(ctx, logEntry, cmd.Sender, chatID)
	case "miei":
		h.mine(ctx, logEntry, cmd.Sender, chatID)
	case "join":
		h.joinMenu(ctx, logEntry, chatID)
	case "pending":
		h.members(ctx, logEntry, cmd.Sender, chatID, domain.StatusPending)
	case "members":
		h.members(ctx, logEntry, cmd.Sender, chatID, domain.StatusApproved)
	default:
		h.send(ctx, logEntry, chatID, textMenuHint, nil)
	}
}

// textAlias сопоставляет кнопки постоянного меню с командами.
func textAlias(text string) string {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "cerca":
		return "cerca"
	case "date":
		return "date"
	case "miei", "i miei turni":
		return "miei"
	}
	return ""
}

func (h *BotHandler) start(ctx context.Context, logEntry *logrus.Entry, cmd *domain.CommandEvent) {
	chatID := cmd.Source.ChatID
	payload := strings.TrimSpace(cmd.Args)

	switch {
	case payload == "miei":
		h.mine(ctx, logEntry, cmd.Sender, chatID)
		return
	case strings.HasPrefix(payload, "search"):
		h.search(ctx, logEntry, cmd.Sender, chatID, "")
		return
	}

	h.send(ctx, logEntry, chatID, textWelcome, nil)

	user, err := h.membership.Profile(ctx, cmd.Sender)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		h.joinMenu(ctx, logEntry, chatID)
	case err != nil:
		h.logError(logEntry, err, "Failed to load profile")
	case user.Status == domain.StatusPending:
		h.send(ctx, logEntry, chatID, textMembership(&domain.MembershipOutcome{User: user}), nil)
	case user.Status == domain.StatusRejected:
		h.joinMenu(ctx, logEntry, chatID)
	}
}

// search показывает смены на дату из аргумента или календарь.
func (h *BotHandler) search(ctx context.Context, logEntry *logrus.Entry, actor domain.Sender, chatID int64, args string) {
	if date, ok := domain.ParseDate(args); ok {
		shifts, err := h.browse.Search(ctx, actor, date)
		if err != nil {
			h.sendError(ctx, logEntry, chatID, err, "Search failed")
			return
		}
		if err := h.presentSearch(ctx, chatID, date, shifts); err != nil {
			h.logError(logEntry, err, "Failed to present search results")
		}
		return
	}

	kb, err := calendar.Build(h.now(), callback.Token{Action: callback.ActionSearch})
	if err != nil {
		h.sendError(ctx, logEntry, chatID, err, "Failed to build calendar")
		return
	}
	h.send(ctx, logEntry, chatID, textPickSearch, kb)
}

func (h *BotHandler) presentSearch(ctx context.Context, chatID int64, date time.Time, shifts []*domain.Shift) error {
	if len(shifts) == 0 {
		_, err := h.notifier.SendMessage(ctx, chatID, textNoShifts, nil)
		return err
	}
	if _, err := h.notifier.SendMessage(ctx, chatID, textShiftsFound(date, len(shifts)), nil); err != nil {
		return err
	}
	return h.showShifts(ctx, chatID, shifts, contactKeyboard)
}

func (h *BotHandler) dates(ctx context.Context, logEntry *logrus.Entry, actor domain.Sender, chatID int64) {
	dates, err := h.browse.Dates(ctx, actor)
	if err != nil {
		h.sendError(ctx, logEntry, chatID, err, "Failed to list dates")
		return
	}
	if len(dates) == 0 {
		h.send(ctx, logEntry, chatID, textNoOpenDates, nil)
		return
	}
	h.send(ctx, logEntry, chatID, textDates(dates), nil)
}

func (h *BotHandler) mine(ctx context.Context, logEntry *logrus.Entry, actor domain.Sender, chatID int64) {
	shifts, err := h.browse.Mine(ctx, actor)
	if err != nil {
		h.sendError(ctx, logEntry, chatID, err, "Failed to list own shifts")
		return
	}
	if len(shifts) == 0 {
		h.send(ctx, logEntry, chatID, textNoMine, nil)
		return
	}

	h.send(ctx, logEntry, chatID, textMineHeader, nil)
	if err := h.showShifts(ctx, chatID, shifts, closeKeyboard); err != nil {
		h.logError(logEntry, err, "Failed to present own shifts")
	}
}

func (h *BotHandler) joinMenu(ctx context.Context, logEntry *logrus.Entry, chatID int64) {
	kb, err := joinKeyboard(h.admins.Orgs())
	if err != nil {
		h.sendError(ctx, logEntry, chatID, err, "Failed to build join keyboard")
		return
	}
	h.send(ctx, logEntry, chatID, textJoinPick, kb)
}

// members список участников для администратора с кнопками действий.
func (h *BotHandler) members(ctx context.Context, logEntry *logrus.Entry, actor domain.Sender, chatID int64, status domain.MemberStatus) {
	users, err := h.membership.ListByStatus(ctx, actor, status)
	if err != nil {
		h.sendError(ctx, logEntry, chatID, err, "Failed to list members")
		return
	}

	if len(users) == 0 {
		text := textNoMembers
		if status == domain.StatusPending {
			text = textNoPending
		}
		h.send(ctx, logEntry, chatID, text, nil)
		return
	}

	for _, u := range users {
		kb, err := memberKeyboard(u)
		if err != nil {
			h.logError(logEntry.WithField("target_id", u.ID), err, "Failed to build member keyboard")
			continue
		}
		h.send(ctx, logEntry, chatID, textMember(u), kb)
	}
}
