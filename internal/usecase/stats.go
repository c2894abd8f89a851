package usecase

import (
	"context"
	"time"

	"shiftbot/internal/domain"
)

// StatsUseCase реализует бизнес-логику для панели администратора.
type StatsUseCase struct {
	statsRepo domain.StatsRepository
	shiftRepo domain.ShiftRepository
}

// NewStatsUseCase создает новый экземпляр StatsUseCase.
func NewStatsUseCase(statsRepo domain.StatsRepository, shiftRepo domain.ShiftRepository) domain.StatsUseCase {
	return &StatsUseCase{
		statsRepo: statsRepo,
		shiftRepo: shiftRepo,
	}
}

// ListOpenDates возвращает даты с открытыми сменами, org == nil означает все org.
func (uc *StatsUseCase) ListOpenDates(ctx context.Context, org *domain.Org) ([]*domain.DateCount, error) {
	return uc.statsRepo.ListOpenDates(ctx, org)
}

// GetOrgStats возвращает сводку по каждой org.
func (uc *StatsUseCase) GetOrgStats(ctx context.Context) ([]*domain.OrgStat, error) {
	return uc.statsRepo.GetOrgStats(ctx)
}

// ListOpenShifts возвращает открытые смены на дату.
func (uc *StatsUseCase) ListOpenShifts(ctx context.Context, date time.Time, org *domain.Org) ([]*domain.Shift, error) {
	return uc.shiftRepo.ListOpenByDate(ctx, domain.DateOf(date), org)
}
