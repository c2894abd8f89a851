package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shiftbot/internal/album"
	"shiftbot/internal/calendar"
	"shiftbot/internal/callback"
	"shiftbot/internal/correlation"
	"shiftbot/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PostingUseCase реализует бизнес-логику публикации смен.
type PostingUseCase struct {
	userRepo  domain.UserRepository
	shiftRepo domain.ShiftRepository
	pending   *correlation.Store[domain.PendingPosting]
	albums    *album.Aggregator
	// refused альбомы не-участников, которым уже отправлено предупреждение
	refused *correlation.Store[struct{}]
	out     delivery
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewPostingUseCase создает новый экземпляр PostingUseCase.
func NewPostingUseCase(
	userRepo domain.UserRepository,
	shiftRepo domain.ShiftRepository,
	notifier domain.Notifier,
	pending *correlation.Store[domain.PendingPosting],
	albums *album.Aggregator,
	opts ...Option,
) domain.PostingUseCase {
	o := newOptions(opts)
	return &PostingUseCase{
		userRepo:  userRepo,
		shiftRepo: shiftRepo,
		pending:   pending,
		albums:    albums,
		refused:   correlation.NewStore[struct{}](correlation.WithTTL(time.Hour), correlation.WithMaxEntries(1000)),
		out:       delivery{notifier: notifier, log: o.log},
		log:       o.log,
		now:       o.now,
	}
}

// SubmitMedia обрабатывает фото из группы: одиночное или элемент альбома.
func (uc *PostingUseCase) SubmitMedia(ctx context.Context, ev *domain.MediaEvent) (*domain.PostingResult, error) {
	org, err := memberOrg(ctx, uc.userRepo, ev.Sender.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotMember) {
			uc.warnNonMember(ctx, ev)
		}
		return nil, err
	}

	date, hasDate := domain.ParseDate(ev.Caption)

	if ev.GroupID != "" {
		return uc.submitAlbumItem(ctx, ev, org, date, hasDate)
	}

	if !hasDate {
		return uc.promptSingle(ctx, ev)
	}

	shift := &domain.Shift{
		Org:          org,
		OwnerID:      ev.Sender.ID,
		OwnerDisplay: ev.Sender.Display(),
		Source:       ev.Source,
		MediaRef:     ev.MediaRef,
		Caption:      ev.Caption,
		Date:         date,
		PostingKey:   uuid.NewString(),
	}
	if err := uc.commitSingle(ctx, shift, domain.Location{}); err != nil {
		return nil, err
	}

	return &domain.PostingResult{Outcome: domain.OutcomeSaved, Date: shift.Date, Shifts: []*domain.Shift{shift}}, nil
}

// ChooseDate обрабатывает нажатие дня на календаре публикации.
func (uc *PostingUseCase) ChooseDate(ctx context.Context, choice *domain.DateChoice) (*domain.PostingResult, error) {
	if choice.AlbumID != "" {
		return uc.chooseAlbumDate(ctx, choice)
	}
	return uc.chooseSingleDate(ctx, choice)
}

func (uc *PostingUseCase) promptSingle(ctx context.Context, ev *domain.MediaEvent) (*domain.PostingResult, error) {
	kb, err := calendar.Build(uc.now(), callback.Token{
		Action: callback.ActionSetDate,
		Fallback: &domain.InlineOrigin{
			Source:  ev.Source,
			OwnerID: ev.Sender.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar: %w", err)
	}

	prompt, err := uc.out.notifier.ReplyMessage(ctx, ev.Source, textPickDate, kb)
	if err != nil {
		return nil, fmt.Errorf("failed to send calendar: %w", err)
	}

	uc.pending.Put(prompt.Key(), domain.PendingPosting{
		Source:       ev.Source,
		OwnerID:      ev.Sender.ID,
		OwnerDisplay: ev.Sender.Display(),
		Caption:      ev.Caption,
		MediaRef:     ev.MediaRef,
	})

	return &domain.PostingResult{Outcome: domain.OutcomePrompted, Prompt: prompt}, nil
}

func (uc *PostingUseCase) chooseSingleDate(ctx context.Context, choice *domain.DateChoice) (*domain.PostingResult, error) {
	// 1. Дату выбирает только автор фото, и он должен быть участником
	if fb := choice.Fallback; fb != nil && fb.OwnerID != choice.Actor.ID {
		return nil, domain.ErrForbidden
	}
	org, err := memberOrg(ctx, uc.userRepo, choice.Actor.ID)
	if err != nil {
		return nil, err
	}

	// 2. Восстанавливаем исходное сообщение
	p, err := uc.pending.TakeIf(choice.Prompt.Key(), func(p domain.PendingPosting) bool {
		return p.OwnerID == choice.Actor.ID
	})
	switch {
	case errors.Is(err, correlation.ErrRejected):
		return nil, domain.ErrForbidden
	case errors.Is(err, correlation.ErrMissing):
		if choice.Fallback == nil {
			uc.out.failPrompt(ctx, choice.Prompt, textCorrelationLost)
			return nil, domain.ErrCorrelationLost
		}
		p = domain.PendingPosting{
			Source:       choice.Fallback.Source,
			OwnerID:      choice.Fallback.OwnerID,
			OwnerDisplay: choice.Actor.Display(),
		}
	}

	shift := &domain.Shift{
		Org:          org,
		OwnerID:      p.OwnerID,
		OwnerDisplay: p.OwnerDisplay,
		Source:       p.Source,
		MediaRef:     p.MediaRef,
		Caption:      p.Caption,
		Date:         domain.DateOf(choice.Date),
		PostingKey:   uuid.NewString(),
	}

	// 3. Проверка дубликата, запись и подтверждение
	if err := uc.commitSingle(ctx, shift, choice.Prompt); err != nil {
		return nil, err
	}

	return &domain.PostingResult{Outcome: domain.OutcomeSaved, Date: shift.Date, Shifts: []*domain.Shift{shift}}, nil
}

// commitSingle записывает одиночную публикацию и уведомляет владельца.
// prompt задан, когда дата выбрана на календаре. Повторная доставка фото или
// повторное нажатие дня возвращает ErrAlreadyResolved и ничего не удаляет.
func (uc *PostingUseCase) commitSingle(ctx context.Context, shift *domain.Shift, prompt domain.Location) error {
	seen, err := uc.shiftRepo.HasSource(ctx, shift.Source)
	if err != nil {
		return err
	}
	if seen {
		return domain.ErrAlreadyResolved
	}

	open, err := uc.shiftRepo.HasOpen(ctx, shift.OwnerID, shift.Date, shift.Org)
	if err != nil {
		return err
	}
	if !open {
		err = uc.shiftRepo.Create(ctx, []*domain.Shift{shift})
	} else {
		err = domain.ErrDuplicateOpenShift
	}

	switch {
	case err == nil:
		uc.out.toOwner(ctx, shift.OwnerID, textSaved(shift.Date), shift.Source, prompt)
		return nil
	case errors.Is(err, domain.ErrDuplicateOpenShift):
		uc.out.toOwner(ctx, shift.OwnerID, textDuplicate(shift.Date), shift.Source, prompt)
		uc.out.deleteQuietly(ctx, shift.Source)
		return err
	default:
		return err
	}
}

func (uc *PostingUseCase) submitAlbumItem(ctx context.Context, ev *domain.MediaEvent, org domain.Org, date time.Time, hasDate bool) (*domain.PostingResult, error) {
	obs := uc.albums.Add(album.Arrival{
		GroupID: ev.GroupID,
		Item:    album.Item{Source: ev.Source, MediaRef: ev.MediaRef},
		Caption: ev.Caption,
		Owner:   ev.Sender,
		Org:     org,
		Date:    date,
		HasDate: hasDate,
	})

	switch {
	case obs.Redelivered:
		return nil, domain.ErrAlreadyResolved

	case obs.Blocked:
		uc.out.deleteQuietly(ctx, ev.Source)
		return nil, domain.ErrDuplicateOpenShift

	case obs.NeedPrompt:
		return uc.promptAlbum(ctx, ev)

	case obs.NeedDecision:
		// дата пришла в подписи позднего элемента: календарь больше не нужен
		prompt := obs.Aggregate.Prompt
		if !prompt.IsZero() {
			uc.pending.Take(prompt.Key())
			uc.out.dropPrompt(ctx, prompt)
		}
		return uc.decideAlbum(ctx, obs.Aggregate, domain.Location{})

	case len(obs.Commit) > 0:
		shifts, err := uc.commitItems(ctx, obs.Aggregate, obs.Commit)
		if err != nil {
			return nil, err
		}
		return &domain.PostingResult{Outcome: domain.OutcomeSaved, Date: obs.Aggregate.Date, Shifts: shifts}, nil
	}

	return &domain.PostingResult{Outcome: domain.OutcomeQueued, Date: obs.Aggregate.Date}, nil
}

func (uc *PostingUseCase) promptAlbum(ctx context.Context, ev *domain.MediaEvent) (*domain.PostingResult, error) {
	kb, err := calendar.Build(uc.now(), callback.Token{Action: callback.ActionSetDateAlbum, GroupID: ev.GroupID})
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar: %w", err)
	}

	prompt, err := uc.out.notifier.ReplyMessage(ctx, ev.Source, textPickAlbumDate, kb)
	if err != nil {
		return nil, fmt.Errorf("failed to send calendar: %w", err)
	}

	uc.albums.SetPrompt(ev.GroupID, prompt)
	uc.pending.Put(prompt.Key(), domain.PendingPosting{
		Source:       ev.Source,
		OwnerID:      ev.Sender.ID,
		OwnerDisplay: ev.Sender.Display(),
		Caption:      ev.Caption,
		MediaRef:     ev.MediaRef,
		AlbumID:      ev.GroupID,
	})

	return &domain.PostingResult{Outcome: domain.OutcomePrompted, Prompt: prompt}, nil
}

func (uc *PostingUseCase) chooseAlbumDate(ctx context.Context, choice *domain.DateChoice) (*domain.PostingResult, error) {
	agg, ok := uc.albums.Get(choice.AlbumID)
	if !ok {
		uc.pending.Take(choice.Prompt.Key())
		uc.out.failPrompt(ctx, choice.Prompt, textAlbumNotFound)
		return nil, domain.ErrAlbumNotFound
	}
	if agg.OwnerID != choice.Actor.ID {
		return nil, domain.ErrForbidden
	}

	uc.pending.Take(choice.Prompt.Key())

	obs, err := uc.albums.Resolve(choice.AlbumID, choice.Date)
	if err != nil {
		return nil, err
	}
	if !obs.NeedDecision {
		return &domain.PostingResult{Outcome: domain.OutcomeQueued, Date: obs.Aggregate.Date}, nil
	}

	return uc.decideAlbum(ctx, obs.Aggregate, choice.Prompt)
}

// decideAlbum принимает единственное решение по альбому. Вызывающий должен
// владеть правом решения (Observation.NeedDecision).
func (uc *PostingUseCase) decideAlbum(ctx context.Context, agg album.Aggregate, prompt domain.Location) (*domain.PostingResult, error) {
	other, err := uc.shiftRepo.HasOtherOpen(ctx, agg.OwnerID, agg.Date, agg.Org, agg.GroupID)
	if err != nil {
		uc.albums.Release(agg.GroupID)
		return nil, err
	}
	if other {
		uc.blockAlbum(ctx, agg, prompt)
		return nil, domain.ErrDuplicateOpenShift
	}

	items, err := uc.albums.Decide(agg.GroupID, album.Allowed)
	if err != nil {
		return nil, err
	}

	shifts, err := uc.commitItems(ctx, agg, items)
	if errors.Is(err, domain.ErrDuplicateOpenShift) {
		uc.blockAlbum(ctx, agg, prompt)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if uc.albums.MarkNotified(agg.GroupID) {
		uc.out.toOwner(ctx, agg.OwnerID, textAlbumSaved(agg.Date), firstSource(agg), prompt)
	}

	return &domain.PostingResult{Outcome: domain.OutcomeSaved, Date: agg.Date, Shifts: shifts}, nil
}

func (uc *PostingUseCase) blockAlbum(ctx context.Context, agg album.Aggregate, prompt domain.Location) {
	items, err := uc.albums.Decide(agg.GroupID, album.Blocked)
	if err != nil {
		uc.log.WithField("error", err).Warn("Failed to block album")
	}
	if uc.albums.MarkNotified(agg.GroupID) {
		uc.out.toOwner(ctx, agg.OwnerID, textDuplicate(agg.Date), firstSource(agg), prompt)
	}
	for _, it := range items {
		uc.out.deleteQuietly(ctx, it.Source)
	}
}

// commitItems записывает элементы альбома как строки одной публикации.
// При сбое хранилища решение по альбому откатывается, чтобы запись можно было
// повторить.
func (uc *PostingUseCase) commitItems(ctx context.Context, agg album.Aggregate, items []album.Item) ([]*domain.Shift, error) {
	if len(items) == 0 {
		return nil, nil
	}

	shifts := make([]*domain.Shift, 0, len(items))
	for _, it := range items {
		shifts = append(shifts, &domain.Shift{
			Org:          agg.Org,
			OwnerID:      agg.OwnerID,
			OwnerDisplay: agg.OwnerDisplay,
			Source:       it.Source,
			MediaRef:     it.MediaRef,
			Caption:      agg.Caption,
			Date:         agg.Date,
			PostingKey:   agg.GroupID,
		})
	}

	if err := uc.shiftRepo.Create(ctx, shifts); err != nil {
		if !errors.Is(err, domain.ErrDuplicateOpenShift) && !errors.Is(err, domain.ErrAlreadyResolved) {
			uc.albums.Rollback(agg.GroupID, items)
		}
		uc.log.WithFields(logrus.Fields{
			"group_id": agg.GroupID,
			"items":    len(items),
			"error":    err,
		}).Warn("Failed to commit album items")
		return nil, err
	}
	return shifts, nil
}

// warnNonMember предупреждает автора один раз на фото или альбом.
func (uc *PostingUseCase) warnNonMember(ctx context.Context, ev *domain.MediaEvent) {
	if ev.GroupID != "" {
		if _, seen := uc.refused.Take(ev.GroupID); seen {
			uc.refused.Put(ev.GroupID, struct{}{})
			return
		}
		uc.refused.Put(ev.GroupID, struct{}{})
	}
	uc.out.toOwner(ctx, ev.Sender.ID, textNotMember, ev.Source, domain.Location{})
}

func firstSource(agg album.Aggregate) domain.Location {
	if len(agg.Items) == 0 {
		return domain.Location{}
	}
	return agg.Items[0].Source
}

// memberOrg возвращает org одобренного участника или ErrNotMember.
func memberOrg(ctx context.Context, users domain.UserRepository, userID int64) (domain.Org, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrNotMember
		}
		return "", err
	}
	if !user.IsApproved() {
		return "", domain.ErrNotMember
	}
	return user.Org, nil
}
