package usecase

import (
	"context"
	"errors"

	"shiftbot/internal/callback"
	"shiftbot/internal/domain"

	"github.com/sirupsen/logrus"
)

// MembershipUseCase реализует бизнес-логику членства в org.
type MembershipUseCase struct {
	userRepo domain.UserRepository
	admins   *domain.AdminRegistry
	notifier domain.Notifier
	log      logrus.FieldLogger
}

// NewMembershipUseCase создает новый экземпляр MembershipUseCase.
func NewMembershipUseCase(
	userRepo domain.UserRepository,
	admins *domain.AdminRegistry,
	notifier domain.Notifier,
	opts ...Option,
) domain.MembershipUseCase {
	o := newOptions(opts)
	return &MembershipUseCase{
		userRepo: userRepo,
		admins:   admins,
		notifier: notifier,
		log:      o.log,
	}
}

// Request регистрирует заявку на вступление в org. Администратор org
// одобряется сразу.
func (uc *MembershipUseCase) Request(ctx context.Context, actor domain.Sender, org domain.Org) (*domain.MembershipOutcome, error) {
	if !uc.admins.KnownOrg(org) {
		return nil, domain.ErrInvalidOrg
	}

	var from domain.MemberStatus
	current, err := uc.userRepo.GetByID(ctx, actor.ID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
	case err != nil:
		return nil, err
	default:
		from = current.Status
	}

	target := domain.StatusPending
	if uc.admins.IsAdmin(org, actor.ID) {
		target = domain.StatusApproved
	}

	if current != nil {
		switch current.Status {
		case domain.StatusApproved:
			if current.Org == org {
				return &domain.MembershipOutcome{User: current, From: from}, nil
			}
			// смена org только через отзыв доступа
			return nil, domain.ErrInvalidTransition
		case domain.StatusPending:
			if current.Org == org && target == domain.StatusPending {
				return &domain.MembershipOutcome{User: current, From: from}, nil
			}
		}
	}

	user, err := uc.userRepo.Upsert(ctx, &domain.User{
		ID:          actor.ID,
		Org:         org,
		Status:      target,
		DisplayName: actor.Display(),
	})
	if err != nil {
		return nil, err
	}

	if target == domain.StatusPending {
		uc.notifyAdmins(ctx, user)
	}

	return &domain.MembershipOutcome{User: user, From: from, Changed: true}, nil
}

// Transition применяет административное действие к участнику org.
func (uc *MembershipUseCase) Transition(ctx context.Context, actor domain.Sender, action domain.MembershipAction, targetID int64, org domain.Org) (*domain.MembershipOutcome, error) {
	to, ok := action.TargetStatus()
	if !ok {
		return nil, domain.ErrInvalidTransition
	}
	if actor.ID == targetID || !uc.admins.IsAdmin(org, actor.ID) {
		return nil, domain.ErrForbidden
	}

	user, err := uc.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.Org != org {
		return nil, domain.ErrForbidden
	}

	// Повторное нажатие после уже применённого действия
	if user.Status == to {
		return &domain.MembershipOutcome{User: user, From: user.Status}, nil
	}
	if _, ok := action.CanTransition(user.Status); !ok {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := uc.userRepo.UpdateStatus(ctx, targetID, user.Status, to)
	if errors.Is(err, domain.ErrStatusChanged) {
		// другой администратор успел раньше
		latest, getErr := uc.userRepo.GetByID(ctx, targetID)
		if getErr == nil && latest.Status == to {
			return &domain.MembershipOutcome{User: latest, From: to}, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if _, err := uc.notifier.SendMessage(ctx, targetID, textStatusChanged(to, org), nil); err != nil {
		uc.log.WithFields(logrus.Fields{"user_id": targetID, "error": err}).Info("Failed to notify member")
	}

	return &domain.MembershipOutcome{User: updated, From: user.Status, Changed: true}, nil
}

// ListByStatus возвращает участников всех org, которые администрирует actor.
func (uc *MembershipUseCase) ListByStatus(ctx context.Context, actor domain.Sender, status domain.MemberStatus) ([]*domain.User, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidTransition
	}
	orgs := uc.admins.OrgsOf(actor.ID)
	if len(orgs) == 0 {
		return nil, domain.ErrForbidden
	}

	var users []*domain.User
	for _, org := range orgs {
		list, err := uc.userRepo.ListByStatus(ctx, org, status)
		if err != nil {
			return nil, err
		}
		users = append(users, list...)
	}
	return users, nil
}

// Profile возвращает текущую запись участника.
func (uc *MembershipUseCase) Profile(ctx context.Context, actor domain.Sender) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, actor.ID)
}

func (uc *MembershipUseCase) notifyAdmins(ctx context.Context, user *domain.User) {
	kb := domain.Keyboard{{
		{Text: "✅ Approva", Data: callback.MustEncode(callback.Token{Action: callback.ActionApprove, UserID: user.ID, Org: user.Org})},
		{Text: "❌ Rifiuta", Data: callback.MustEncode(callback.Token{Action: callback.ActionReject, UserID: user.ID, Org: user.Org})},
	}}

	for _, adminID := range uc.admins.Admins(user.Org) {
		if _, err := uc.notifier.SendMessage(ctx, adminID, textJoinRequest(user), kb); err != nil {
			uc.log.WithFields(logrus.Fields{"admin_id": adminID, "error": err}).Warn("Failed to notify admin")
		}
	}
}
