package repository

import (
	"context"
	"fmt"

	"shiftbot/internal/database"
	"shiftbot/internal/domain"
)

// StatsRepository реализует domain.StatsRepository для работы со статистикой.
type StatsRepository struct {
	queries *database.Queries
}

// NewStatsRepository создает новый экземпляр StatsRepository.
func NewStatsRepository(queries *database.Queries) domain.StatsRepository {
	return &StatsRepository{
		queries: queries,
	}
}

// ListOpenDates возвращает даты с открытыми сменами и их количество.
// org == nil означает все org.
func (r *StatsRepository) ListOpenDates(ctx context.Context, org *domain.Org) ([]*domain.DateCount, error) {
	if org == nil {
		rows, err := r.queries.ListOpenDates(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get open dates: %w", err)
		}
		result := make([]*domain.DateCount, len(rows))
		for i, row := range rows {
			result[i] = &domain.DateCount{Date: domain.DateOf(row.ShiftDate), Count: row.ShiftCount}
		}
		return result, nil
	}

	rows, err := r.queries.ListOpenDatesByOrg(ctx, string(*org))
	if err != nil {
		return nil, fmt.Errorf("failed to get open dates: %w", err)
	}
	result := make([]*domain.DateCount, len(rows))
	for i, row := range rows {
		result[i] = &domain.DateCount{Date: domain.DateOf(row.ShiftDate), Count: row.ShiftCount}
	}
	return result, nil
}

// GetOrgStats возвращает сводку по каждой org.
func (r *StatsRepository) GetOrgStats(ctx context.Context) ([]*domain.OrgStat, error) {
	stats, err := r.queries.GetOrgStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get org stats: %w", err)
	}

	result := make([]*domain.OrgStat, len(stats))
	for i, stat := range stats {
		result[i] = &domain.OrgStat{
			Org:         domain.Org(stat.Org),
			OpenShifts:  stat.OpenShifts,
			PendingUser: stat.PendingUsers,
			Approved:    stat.ApprovedUsers,
		}
	}

	return result, nil
}
