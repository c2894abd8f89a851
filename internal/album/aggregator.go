// Package album собирает фото одного альбома, приходящие отдельными
// событиями в произвольном порядке, в одну логическую публикацию.
package album

import (
	"context"
	"sync"
	"time"

	"shiftbot/internal/domain"
)

// DefaultTTL время жизни альбома после последнего изменения.
const DefaultTTL = 24 * time.Hour

// SettledGrace сколько альбом с принятым решением ждёт запоздавшие элементы.
const SettledGrace = 15 * time.Minute

// Decision решение проверки дубликатов для альбома.
type Decision int

const (
	Undecided Decision = iota
	Allowed
	Blocked
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Blocked:
		return "blocked"
	default:
		return "undecided"
	}
}

// Item одно фото альбома.
type Item struct {
	Source   domain.Location
	MediaRef string
}

// Arrival входящий элемент альбома.
type Arrival struct {
	GroupID string
	Item    Item
	Caption string
	Owner   domain.Sender
	Org     domain.Org
	Date    time.Time
	HasDate bool
}

// Aggregate снимок состояния альбома.
type Aggregate struct {
	GroupID      string
	OwnerID      int64
	OwnerDisplay string
	Org          domain.Org
	Caption      string
	Date         time.Time
	HasDate      bool
	Decision     Decision
	Prompt       domain.Location
	Notified     bool
	Items        []Item
}

// Observation что вызывающему нужно сделать после Add или Resolve.
type Observation struct {
	Aggregate Aggregate
	// NeedPrompt показать единственный календарь для альбома.
	NeedPrompt bool
	// NeedDecision вызывающий получил право принять решение и обязан
	// вызвать Decide или Release.
	NeedDecision bool
	// Commit элементы, которые нужно записать: решение уже allowed.
	Commit []Item
	// Blocked альбом отклонён, исходное сообщение элемента нужно удалить.
	Blocked bool
	// Redelivered элемент с тем же исходным сообщением уже есть в альбоме.
	Redelivered bool
}

type member struct {
	item      Item
	committed bool
}

type aggregate struct {
	groupID      string
	ownerID      int64
	ownerDisplay string
	org          domain.Org
	caption      string
	date         time.Time
	hasDate      bool
	decision     Decision
	deciding     bool
	prompted     bool
	prompt       domain.Location
	notified     bool
	members      []member
	updatedAt    time.Time
}

func (a *aggregate) snapshot() Aggregate {
	items := make([]Item, len(a.members))
	for i, m := range a.members {
		items[i] = m.item
	}
	return Aggregate{
		GroupID:      a.groupID,
		OwnerID:      a.ownerID,
		OwnerDisplay: a.ownerDisplay,
		Org:          a.org,
		Caption:      a.caption,
		Date:         a.date,
		HasDate:      a.hasDate,
		Decision:     a.decision,
		Prompt:       a.prompt,
		Notified:     a.notified,
		Items:        items,
	}
}

// claim передаёт решение одному вызывающему.
func (a *aggregate) claim() bool {
	if !a.hasDate || a.decision != Undecided || a.deciding {
		return false
	}
	a.deciding = true
	return true
}

// Aggregator владеет всеми незавершёнными альбомами процесса.
type Aggregator struct {
	mu     sync.Mutex
	groups map[string]*aggregate
	ttl    time.Duration
	now    func() time.Time
}

// NewAggregator создает агрегатор. ttl <= 0 означает DefaultTTL.
func NewAggregator(ttl time.Duration, now func() time.Time) *Aggregator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		groups: make(map[string]*aggregate),
		ttl:    ttl,
		now:    now,
	}
}

// Add регистрирует очередной элемент альбома.
func (g *Aggregator) Add(in Arrival) Observation {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.groups[in.GroupID]
	if !ok {
		a = &aggregate{
			groupID:      in.GroupID,
			ownerID:      in.Owner.ID,
			ownerDisplay: in.Owner.Display(),
			org:          in.Org,
			caption:      in.Caption,
		}
		g.groups[in.GroupID] = a
	}
	a.updatedAt = g.now()
	for _, m := range a.members {
		if m.item.Source == in.Item.Source {
			return Observation{Aggregate: a.snapshot(), Redelivered: true}
		}
	}
	if a.caption == "" && in.Caption != "" {
		a.caption = in.Caption
	}

	var obs Observation
	m := member{item: in.Item}

	switch a.decision {
	case Allowed:
		m.committed = true
		obs.Commit = []Item{in.Item}
	case Blocked:
		obs.Blocked = true
	}
	a.members = append(a.members, m)

	if !a.hasDate && in.HasDate {
		a.date, a.hasDate = domain.DateOf(in.Date), true
	}
	if !a.hasDate && !a.prompted {
		a.prompted = true
		obs.NeedPrompt = true
	}
	obs.NeedDecision = a.claim()
	obs.Aggregate = a.snapshot()
	return obs
}

// SetPrompt запоминает сообщение-календарь альбома.
func (g *Aggregator) SetPrompt(groupID string, prompt domain.Location) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if a, ok := g.groups[groupID]; ok {
		a.prompt = prompt
		a.updatedAt = g.now()
	}
}

// Resolve задает дату, выбранную на календаре.
func (g *Aggregator) Resolve(groupID string, date time.Time) (Observation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.groups[groupID]
	if !ok {
		return Observation{}, domain.ErrAlbumNotFound
	}
	if a.decision != Undecided || a.deciding {
		return Observation{Aggregate: a.snapshot()}, domain.ErrAlreadyResolved
	}
	a.date, a.hasDate = domain.DateOf(date), true
	a.updatedAt = g.now()

	return Observation{Aggregate: a.snapshot(), NeedDecision: a.claim()}, nil
}

// Decide фиксирует решение. Для Allowed возвращает ещё не записанные элементы
// и помечает их записанными, для Blocked - все элементы альбома.
func (g *Aggregator) Decide(groupID string, d Decision) ([]Item, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.groups[groupID]
	if !ok {
		return nil, domain.ErrAlbumNotFound
	}
	a.decision = d
	a.deciding = false
	a.updatedAt = g.now()

	var out []Item
	for i := range a.members {
		switch d {
		case Allowed:
			if !a.members[i].committed {
				a.members[i].committed = true
				out = append(out, a.members[i].item)
			}
		case Blocked:
			out = append(out, a.members[i].item)
		}
	}
	return out, nil
}

// Release возвращает право решения, если оно не было принято из-за ошибки.
func (g *Aggregator) Release(groupID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if a, ok := g.groups[groupID]; ok {
		a.deciding = false
	}
}

// Rollback отменяет решение Allowed после неудачной записи: items снова
// считаются незаписанными, и следующий Resolve или Add снова передаёт право
// решения.
func (g *Aggregator) Rollback(groupID string, items []Item) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.groups[groupID]
	if !ok {
		return
	}
	failed := make(map[domain.Location]struct{}, len(items))
	for _, it := range items {
		failed[it.Source] = struct{}{}
	}
	for i := range a.members {
		if _, ok := failed[a.members[i].item.Source]; ok {
			a.members[i].committed = false
		}
	}
	if a.decision == Allowed {
		a.decision = Undecided
	}
	a.deciding = false
	a.updatedAt = g.now()
}

// MarkNotified возвращает true только при первом вызове для альбома.
func (g *Aggregator) MarkNotified(groupID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.groups[groupID]
	if !ok || a.notified {
		return false
	}
	a.notified = true
	return true
}

// Get возвращает снимок альбома.
func (g *Aggregator) Get(groupID string) (Aggregate, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.groups[groupID]
	if !ok {
		return Aggregate{}, false
	}
	return a.snapshot(), true
}

// Len число альбомов в памяти.
func (g *Aggregator) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.groups)
}

// Sweep удаляет альбомы, не менявшиеся дольше ttl, а альбомы с принятым
// решением уже после SettledGrace.
func (g *Aggregator) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	removed := 0
	for id, a := range g.groups {
		if a.deciding {
			continue
		}
		idle := g.ttl
		if a.decision != Undecided && SettledGrace < idle {
			idle = SettledGrace
		}
		if !a.updatedAt.After(now.Add(-idle)) {
			delete(g.groups, id)
			removed++
		}
	}
	return removed
}

// Run периодически вызывает Sweep до отмены ctx.
func (g *Aggregator) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			g.Sweep()
		}
	}
}
