package domain

import "sort"

// MembershipAction административное действие над участником.
type MembershipAction string

const (
	ActionRequest MembershipAction = "request"
	ActionApprove MembershipAction = "approve"
	ActionReject  MembershipAction = "reject"
	ActionRevoke  MembershipAction = "revoke"
)

type transition struct {
	from MemberStatus
	to   MemberStatus
}

// Таблица разрешённых переходов. Всё, чего нет в таблице, запрещено.
var transitions = map[MembershipAction][]transition{
	ActionApprove: {{from: StatusPending, to: StatusApproved}},
	ActionReject:  {{from: StatusPending, to: StatusRejected}},
	ActionRevoke:  {{from: StatusApproved, to: StatusPending}},
}

// TargetStatus возвращает статус, в который переводит действие.
func (a MembershipAction) TargetStatus() (MemberStatus, bool) {
	ts, ok := transitions[a]
	if !ok || len(ts) == 0 {
		return "", false
	}
	return ts[0].to, true
}

// CanTransition проверяет переход по таблице.
func (a MembershipAction) CanTransition(from MemberStatus) (MemberStatus, bool) {
	for _, t := range transitions[a] {
		if t.from == from {
			return t.to, true
		}
	}
	return "", false
}

// MembershipOutcome результат перехода. Changed=false означает повторное
// применение уже действующего статуса.
type MembershipOutcome struct {
	User    *User
	From    MemberStatus
	Changed bool
}

// AdminRegistry статический список администраторов по org.
type AdminRegistry struct {
	admins map[Org]map[int64]struct{}
}

// NewAdminRegistry создает реестр из карты org -> id администраторов.
// Каждая org из карты считается известной, даже без администраторов.
func NewAdminRegistry(byOrg map[Org][]int64) *AdminRegistry {
	r := &AdminRegistry{admins: make(map[Org]map[int64]struct{}, len(byOrg))}
	for org, ids := range byOrg {
		set := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		r.admins[org] = set
	}
	return r
}

// IsAdmin сообщает, является ли userID администратором org.
func (r *AdminRegistry) IsAdmin(org Org, userID int64) bool {
	_, ok := r.admins[org][userID]
	return ok
}

// IsAnyAdmin сообщает, администрирует ли userID хотя бы одну org.
func (r *AdminRegistry) IsAnyAdmin(userID int64) bool {
	return len(r.OrgsOf(userID)) > 0
}

// KnownOrg сообщает, существует ли org.
func (r *AdminRegistry) KnownOrg(org Org) bool {
	_, ok := r.admins[org]
	return ok
}

// Admins возвращает администраторов org в порядке возрастания id.
func (r *AdminRegistry) Admins(org Org) []int64 {
	ids := make([]int64, 0, len(r.admins[org]))
	for id := range r.admins[org] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// OrgsOf возвращает org, которые администрирует userID.
func (r *AdminRegistry) OrgsOf(userID int64) []Org {
	var orgs []Org
	for org, set := range r.admins {
		if _, ok := set[userID]; ok {
			orgs = append(orgs, org)
		}
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i] < orgs[j] })
	return orgs
}

// Orgs возвращает все известные org.
func (r *AdminRegistry) Orgs() []Org {
	orgs := make([]Org, 0, len(r.admins))
	for org := range r.admins {
		orgs = append(orgs, org)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i] < orgs[j] })
	return orgs
}
