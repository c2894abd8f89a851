package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"shiftbot/internal/domain"
)

// Memory хранит смены и пользователей в памяти процесса. Используется при
// STORAGE=memory и в тестах сценариев. Все три репозитория делят один мьютекс,
// поэтому проверка дубликата и запись публикации атомарны.
type Memory struct {
	mu     sync.Mutex
	now    func() time.Time
	nextID int64
	shifts map[int64]*domain.Shift
	users  map[int64]*domain.User
}

// NewMemory создает пустое хранилище.
func NewMemory() *Memory {
	return &Memory{
		now:    time.Now,
		shifts: make(map[int64]*domain.Shift),
		users:  make(map[int64]*domain.User),
	}
}

// Shifts возвращает domain.ShiftRepository поверх хранилища.
func (m *Memory) Shifts() domain.ShiftRepository { return &memoryShifts{m} }

// Users возвращает domain.UserRepository поверх хранилища.
func (m *Memory) Users() domain.UserRepository { return &memoryUsers{m} }

// Stats возвращает domain.StatsRepository поверх хранилища.
func (m *Memory) Stats() domain.StatsRepository { return &memoryStats{m} }

type memoryShifts struct{ m *Memory }

func (r *memoryShifts) Create(_ context.Context, shifts []*domain.Shift) error {
	head, err := validatePosting(shifts)
	if err != nil {
		return err
	}

	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()

	sources := make(map[domain.Location]struct{}, len(m.shifts))
	for _, s := range m.shifts {
		sources[s.Source] = struct{}{}
	}
	for _, s := range shifts {
		if _, ok := sources[s.Source]; ok {
			return domain.ErrAlreadyResolved
		}
		sources[s.Source] = struct{}{}
	}

	if m.hasOpenLocked(head.OwnerID, head.Date, head.Org, head.PostingKey) {
		return domain.ErrDuplicateOpenShift
	}

	created := m.now().UTC()
	for _, s := range shifts {
		m.nextID++
		s.ID = m.nextID
		s.Date = domain.DateOf(s.Date)
		s.Status = domain.ShiftOpen
		s.CreatedAt = created
		cp := *s
		m.shifts[s.ID] = &cp
	}
	return nil
}

func (r *memoryShifts) HasOpen(_ context.Context, ownerID int64, date time.Time, org domain.Org) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.hasOpenLocked(ownerID, date, org, ""), nil
}

func (r *memoryShifts) HasSource(_ context.Context, source domain.Location) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.shifts {
		if s.Source == source {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryShifts) HasOtherOpen(_ context.Context, ownerID int64, date time.Time, org domain.Org, postingKey string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.hasOpenLocked(ownerID, date, org, postingKey), nil
}

func (r *memoryShifts) ListOpenByDate(_ context.Context, date time.Time, org *domain.Org) ([]*domain.Shift, error) {
	day := domain.DateOf(date)
	return r.m.selectShifts(func(s *domain.Shift) bool {
		return s.Date.Equal(day) && (org == nil || s.Org == *org)
	}, false, 0), nil
}

func (r *memoryShifts) ListOpenByOwner(_ context.Context, ownerID int64, org domain.Org, limit int) ([]*domain.Shift, error) {
	return r.m.selectShifts(func(s *domain.Shift) bool {
		return s.OwnerID == ownerID && s.Org == org
	}, true, limit), nil
}

func (r *memoryShifts) GetByID(_ context.Context, shiftID int64) (*domain.Shift, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	s, ok := r.m.shifts[shiftID]
	if !ok {
		return nil, domain.ErrShiftNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memoryShifts) Delete(_ context.Context, shiftID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.shifts[shiftID]; !ok {
		return domain.ErrShiftNotFound
	}
	delete(r.m.shifts, shiftID)
	return nil
}

func (r *memoryShifts) DeleteOpenBefore(_ context.Context, date time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	day := domain.DateOf(date)
	var n int64
	for id, s := range r.m.shifts {
		if s.Status == domain.ShiftOpen && s.Date.Before(day) {
			delete(r.m.shifts, id)
			n++
		}
	}
	return n, nil
}

// hasOpenLocked ищет открытую смену владельца на дату, не входящую в публикацию exclude.
func (m *Memory) hasOpenLocked(ownerID int64, date time.Time, org domain.Org, exclude string) bool {
	day := domain.DateOf(date)
	for _, s := range m.shifts {
		if s.Status == domain.ShiftOpen && s.OwnerID == ownerID && s.Org == org &&
			s.Date.Equal(day) && (exclude == "" || s.PostingKey != exclude) {
			return true
		}
	}
	return false
}

// selectShifts возвращает копии открытых смен по фильтру: по возрастанию ID
// либо, при newest, по убыванию с ограничением limit.
func (m *Memory) selectShifts(keep func(*domain.Shift) bool, newest bool, limit int) []*domain.Shift {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Shift, 0)
	for _, s := range m.shifts {
		if s.Status == domain.ShiftOpen && keep(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newest {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type memoryUsers struct{ m *Memory }

func (r *memoryUsers) GetByID(_ context.Context, userID int64) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryUsers) Upsert(_ context.Context, user *domain.User) (*domain.User, error) {
	if !user.Status.Valid() {
		return nil, domain.ErrInvalidTransition
	}
	if user.Status == domain.StatusApproved && user.Org == "" {
		return nil, domain.ErrOrgUnknown
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	now := r.m.now().UTC()
	cp := *user
	cp.UpdatedAt = now
	if prev, ok := r.m.users[user.ID]; ok {
		cp.CreatedAt = prev.CreatedAt
	} else {
		cp.CreatedAt = now
	}
	r.m.users[user.ID] = &cp

	out := cp
	return &out, nil
}

func (r *memoryUsers) UpdateStatus(_ context.Context, userID int64, from, to domain.MemberStatus) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if u.Status != from {
		return nil, domain.ErrStatusChanged
	}
	u.Status = to
	u.UpdatedAt = r.m.now().UTC()

	cp := *u
	return &cp, nil
}

func (r *memoryUsers) ListByStatus(_ context.Context, org domain.Org, status domain.MemberStatus) ([]*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	out := make([]*domain.User, 0)
	for _, u := range r.m.users {
		if u.Org == org && u.Status == status {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type memoryStats struct{ m *Memory }

func (r *memoryStats) ListOpenDates(_ context.Context, org *domain.Org) ([]*domain.DateCount, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	counts := make(map[time.Time]int64)
	for _, s := range r.m.shifts {
		if s.Status == domain.ShiftOpen && (org == nil || s.Org == *org) {
			counts[s.Date]++
		}
	}
	out := make([]*domain.DateCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, &domain.DateCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memoryStats) GetOrgStats(_ context.Context) ([]*domain.OrgStat, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	byOrg := make(map[domain.Org]*domain.OrgStat)
	stat := func(org domain.Org) *domain.OrgStat {
		s, ok := byOrg[org]
		if !ok {
			s = &domain.OrgStat{Org: org}
			byOrg[org] = s
		}
		return s
	}
	for _, s := range r.m.shifts {
		st := stat(s.Org)
		if s.Status == domain.ShiftOpen {
			st.OpenShifts++
		}
	}
	for _, u := range r.m.users {
		if u.Org == "" {
			continue
		}
		st := stat(u.Org)
		switch u.Status {
		case domain.StatusPending:
			st.PendingUser++
		case domain.StatusApproved:
			st.Approved++
		}
	}

	out := make([]*domain.OrgStat, 0, len(byOrg))
	for _, s := range byOrg {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Org < out[j].Org })
	return out, nil
}
