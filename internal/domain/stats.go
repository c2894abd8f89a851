package domain

import "context"

// OrgStat представляет сводку по одной org для панели администратора.
type OrgStat struct {
	Org         Org
	OpenShifts  int64
	PendingUser int64
	Approved    int64
}

// StatsRepository определяет контракт для работы со статистическими данными.
type StatsRepository interface {
	ListOpenDates(ctx context.Context, org *Org) ([]*DateCount, error)
	GetOrgStats(ctx context.Context) ([]*OrgStat, error)
}
