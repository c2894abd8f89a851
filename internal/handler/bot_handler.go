package handler

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"shiftbot/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BotHandler разбирает входящие события чат-платформы и вызывает use case'ы.
type BotHandler struct {
	*BaseHandler
	posting    domain.PostingUseCase
	browse     domain.BrowseUseCase
	membership domain.MembershipUseCase
	notifier   domain.Notifier
	admins     *domain.AdminRegistry
	version    string
	now        func() time.Time
}

// NewBotHandler создает новый экземпляр BotHandler.
func NewBotHandler(
	posting domain.PostingUseCase,
	browse domain.BrowseUseCase,
	membership domain.MembershipUseCase,
	notifier domain.Notifier,
	admins *domain.AdminRegistry,
	version string,
	logger *logrus.Logger,
) *BotHandler {
	return &BotHandler{
		BaseHandler: NewBaseHandler(logger),
		posting:     posting,
		browse:      browse,
		membership:  membership,
		notifier:    notifier,
		admins:      admins,
		version:     version,
		now:         time.Now,
	}
}

// WithClock подменяет источник текущего времени для календарей.
func (h *BotHandler) WithClock(now func() time.Time) *BotHandler {
	h.now = now
	return h
}

// Run обрабатывает события из updates пулом из workers горутин до отмены ctx
// или закрытия канала.
func (h *BotHandler) Run(ctx context.Context, updates <-chan domain.Update, workers int) error {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case upd, ok := <-updates:
					if !ok {
						return nil
					}
					h.Handle(ctx, upd)
				}
			}
		})
	}
	return g.Wait()
}

// Handle обрабатывает одно событие. Паника внутри обработки не роняет процесс.
func (h *BotHandler) Handle(ctx context.Context, upd domain.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.WithFields(logrus.Fields{
				"update_id": upd.ID,
				"panic":     r,
				"stack":     string(debug.Stack()),
			}).Error("Recovered from panic while handling update")
		}
	}()

	switch {
	case upd.Media != nil:
		h.handleMedia(ctx, upd.ID, upd.Media)
	case upd.Callback != nil:
		h.handleCallback(ctx, upd.ID, upd.Callback)
	case upd.Command != nil:
		h.handleCommand(ctx, upd.ID, upd.Command)
	case upd.Joined != nil:
		h.handleJoined(ctx, upd.ID, upd.Joined)
	}
}

func (h *BotHandler) handleMedia(ctx context.Context, updateID int, ev *domain.MediaEvent) {
	logEntry := h.logUpdate(updateID, "submit_media", ev.Source.ChatID, ev.Sender.ID).
		WithField("media_group_id", ev.GroupID)

	if ev.Chat != domain.ChatGroup {
		logEntry.Debug("Ignoring media outside the group")
		return
	}

	res, err := h.posting.SubmitMedia(ctx, ev)
	if err != nil {
		h.logError(logEntry, err, "Media was not saved")
		return
	}

	logEntry.WithFields(logrus.Fields{
		"outcome": res.Outcome.String(),
		"shifts":  len(res.Shifts),
	}).Info("Media processed")
}

func (h *BotHandler) handleJoined(ctx context.Context, updateID int, ev *domain.JoinEvent) {
	logEntry := h.logUpdate(updateID, "welcome", ev.ChatID, ev.Sender.ID)
	h.send(ctx, logEntry, ev.ChatID, textWelcome, nil)
}

func (h *BotHandler) send(ctx context.Context, logEntry *logrus.Entry, chatID int64, text string, kb domain.Keyboard) {
	if _, err := h.notifier.SendMessage(ctx, chatID, text, kb); err != nil {
		h.logError(logEntry, err, "Failed to send message")
	}
}

func (h *BotHandler) sendError(ctx context.Context, logEntry *logrus.Entry, chatID int64, err error, msg string) {
	h.logError(logEntry, err, msg)
	h.send(ctx, logEntry, chatID, errorText(err), nil)
}

// logError пишет ожидаемые ошибки на уровне Info, внутренние на уровне Error.
func (h *BotHandler) logError(logEntry *logrus.Entry, err error, msg string) {
	kind := domain.KindOf(err)
	entry := logEntry.WithError(err).WithField("kind", kind.String())
	if kind == domain.KindInternal {
		entry.Error(msg)
		return
	}
	entry.Info(msg)
}

// errorText короткий ответ пользователю по категории ошибки.
func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotMember):
		return textNotMemberHint
	case errors.Is(err, domain.ErrAlreadyResolved):
		return textErrResolved
	case errors.Is(err, domain.ErrCorrelationLost):
		return textErrLost
	case errors.Is(err, domain.ErrDuplicateOpenShift):
		return textErrDuplicate
	case errors.Is(err, domain.ErrInvalidTransition):
		return textErrTransition
	case errors.Is(err, domain.ErrStatusChanged):
		return textErrChanged
	}

	switch domain.KindOf(err) {
	case domain.KindForbidden:
		return textErrForbidden
	case domain.KindNotFound:
		return textErrNotFound
	case domain.KindMalformed:
		return textErrMalformed
	case domain.KindUnreachable:
		return textErrUnreachable
	default:
		return textErrInternal
	}
}
