package usecase

import (
	"context"
	"errors"
	"time"

	"shiftbot/internal/domain"

	"github.com/sirupsen/logrus"
)

// MineLimit максимум смен в списке /miei.
const MineLimit = 20

// BrowseUseCase реализует поиск смен, контакт с автором и закрытие смены.
type BrowseUseCase struct {
	userRepo  domain.UserRepository
	shiftRepo domain.ShiftRepository
	statsRepo domain.StatsRepository
	admins    *domain.AdminRegistry
	notifier  domain.Notifier
	log       logrus.FieldLogger
}

// NewBrowseUseCase создает новый экземпляр BrowseUseCase.
func NewBrowseUseCase(
	userRepo domain.UserRepository,
	shiftRepo domain.ShiftRepository,
	statsRepo domain.StatsRepository,
	admins *domain.AdminRegistry,
	notifier domain.Notifier,
	opts ...Option,
) domain.BrowseUseCase {
	o := newOptions(opts)
	return &BrowseUseCase{
		userRepo:  userRepo,
		shiftRepo: shiftRepo,
		statsRepo: statsRepo,
		admins:    admins,
		notifier:  notifier,
		log:       o.log,
	}
}

// Search возвращает открытые смены на дату в org участника.
func (uc *BrowseUseCase) Search(ctx context.Context, actor domain.Sender, date time.Time) ([]*domain.Shift, error) {
	org, err := memberOrg(ctx, uc.userRepo, actor.ID)
	if err != nil {
		return nil, err
	}
	return uc.shiftRepo.ListOpenByDate(ctx, domain.DateOf(date), &org)
}

// Dates возвращает даты с открытыми сменами. Администратор видит все org.
func (uc *BrowseUseCase) Dates(ctx context.Context, actor domain.Sender) ([]*domain.DateCount, error) {
	if uc.admins.IsAnyAdmin(actor.ID) {
		return uc.statsRepo.ListOpenDates(ctx, nil)
	}
	org, err := memberOrg(ctx, uc.userRepo, actor.ID)
	if err != nil {
		return nil, err
	}
	return uc.statsRepo.ListOpenDates(ctx, &org)
}

// Mine возвращает последние открытые смены участника.
func (uc *BrowseUseCase) Mine(ctx context.Context, actor domain.Sender) ([]*domain.Shift, error) {
	org, err := memberOrg(ctx, uc.userRepo, actor.ID)
	if err != nil {
		return nil, err
	}
	return uc.shiftRepo.ListOpenByOwner(ctx, actor.ID, org, MineLimit)
}

// Contact возвращает смену своей org, чтобы показать её и ссылку на автора.
func (uc *BrowseUseCase) Contact(ctx context.Context, actor domain.Sender, shiftID int64) (*domain.Shift, error) {
	org, err := memberOrg(ctx, uc.userRepo, actor.ID)
	if err != nil {
		return nil, err
	}

	shift, err := uc.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Org != org {
		return nil, domain.ErrForbidden
	}
	return shift, nil
}

// Close удаляет смену. Закрыть может автор или администратор org смены.
// Повторное закрытие даёт ErrAlreadyResolved.
func (uc *BrowseUseCase) Close(ctx context.Context, actor domain.Sender, shiftID int64) (*domain.Shift, error) {
	shift, err := uc.shiftRepo.GetByID(ctx, shiftID)
	if errors.Is(err, domain.ErrShiftNotFound) {
		return nil, domain.ErrAlreadyResolved
	}
	if err != nil {
		return nil, err
	}
	if shift.OwnerID != actor.ID && !uc.admins.IsAdmin(shift.Org, actor.ID) {
		return nil, domain.ErrForbidden
	}

	if err := uc.notifier.DeleteMessage(ctx, shift.Source); err != nil {
		uc.log.WithFields(logrus.Fields{"shift_id": shiftID, "error": err}).Debug("Failed to delete source message")
	}

	if err := uc.shiftRepo.Delete(ctx, shiftID); err != nil {
		if errors.Is(err, domain.ErrShiftNotFound) {
			return nil, domain.ErrAlreadyResolved
		}
		return nil, err
	}
	return shift, nil
}
