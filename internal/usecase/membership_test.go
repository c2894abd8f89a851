package usecase_test

import (
	"context"
	"testing"

	"shiftbot/internal/domain"
	"shiftbot/internal/mocks"
	"shiftbot/internal/repository"
	"shiftbot/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	adminER  = domain.Sender{ID: 1, Username: "capo_er"}
	adminICU = domain.Sender{ID: 2, Username: "capo_icu"}
	nurse    = domain.Sender{ID: 20, FullName: "Giulia Verdi"}
)

func registry() *domain.AdminRegistry {
	return domain.NewAdminRegistry(map[domain.Org][]int64{
		"ER":  {adminER.ID},
		"ICU": {adminICU.ID},
	})
}

func newMembership(t *testing.T) (domain.MembershipUseCase, domain.UserRepository, *mocks.Notifier) {
	t.Helper()
	n := &mocks.Notifier{}
	stubNotifier(n)
	users := repository.NewMemory().Users()
	return usecase.NewMembershipUseCase(users, registry(), n), users, n
}

func TestMembership_RequestNotifiesOrgAdmins(t *testing.T) {
	ctx := context.Background()
	uc, _, n := newMembership(t)

	out, err := uc.Request(ctx, nurse, "ER")

	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, domain.StatusPending, out.User.Status)
	assert.Equal(t, domain.Org("ER"), out.User.Org)
	assert.Equal(t, "Giulia Verdi", out.User.DisplayName)

	n.AssertCalled(t, "SendMessage", ctx, adminER.ID, mock.AnythingOfType("string"), domain.Keyboard{{
		{Text: "✅ Approva", Data: "APPROVE|20|ER"},
		{Text: "❌ Rifiuta", Data: "REJECT|20|ER"},
	}})
	n.AssertNotCalled(t, "SendMessage", ctx, adminICU.ID, mock.Anything, mock.Anything)
}

func TestMembership_RequestUnknownOrg(t *testing.T) {
	uc, _, _ := newMembership(t)

	_, err := uc.Request(context.Background(), nurse, "NOPE")

	assert.ErrorIs(t, err, domain.ErrInvalidOrg)
}

func TestMembership_AdminRequestIsApprovedImmediately(t *testing.T) {
	ctx := context.Background()
	uc, _, n := newMembership(t)

	out, err := uc.Request(ctx, adminER, "ER")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, out.User.Status)
	n.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMembership_PendingUserMaySwitchOrg(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newMembership(t)

	_, err := uc.Request(ctx, nurse, "ER")
	require.NoError(t, err)

	again, err := uc.Request(ctx, nurse, "ER")
	require.NoError(t, err)
	assert.False(t, again.Changed)

	moved, err := uc.Request(ctx, nurse, "ICU")
	require.NoError(t, err)
	assert.True(t, moved.Changed)
	assert.Equal(t, domain.Org("ICU"), moved.User.Org)
}

func TestMembership_ApproveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	uc, _, n := newMembership(t)

	_, err := uc.Request(ctx, nurse, "ER")
	require.NoError(t, err)

	first, err := uc.Transition(ctx, adminER, domain.ActionApprove, nurse.ID, "ER")
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, domain.StatusPending, first.From)
	assert.Equal(t, domain.StatusApproved, first.User.Status)

	second, err := uc.Transition(ctx, adminER, domain.ActionApprove, nurse.ID, "ER")
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, domain.StatusApproved, second.User.Status)

	n.AssertNumberOfCalls(t, "SendMessage", 2) // заявка администратору и одно уведомление участнику
}

func TestMembership_AdminOfOtherOrgIsForbidden(t *testing.T) {
	ctx := context.Background()
	uc, users, _ := newMembership(t)

	_, err := uc.Request(ctx, nurse, "ICU")
	require.NoError(t, err)

	_, err = uc.Transition(ctx, adminER, domain.ActionApprove, nurse.ID, "ICU")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Transition(ctx, adminER, domain.ActionApprove, nurse.ID, "ER")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := users.GetByID(ctx, nurse.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, domain.Org("ICU"), stored.Org)
}

func TestMembership_AdminCannotActOnThemselves(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newMembership(t)

	_, err := uc.Request(ctx, adminER, "ER")
	require.NoError(t, err)

	_, err = uc.Transition(ctx, adminER, domain.ActionRevoke, adminER.ID, "ER")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMembership_TransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.MemberStatus
		action  domain.MembershipAction
		want    domain.MemberStatus
		wantErr error
	}{
		{name: "approve pending", from: domain.StatusPending, action: domain.ActionApprove, want: domain.StatusApproved},
		{name: "reject pending", from: domain.StatusPending, action: domain.ActionReject, want: domain.StatusRejected},
		{name: "revoke approved", from: domain.StatusApproved, action: domain.ActionRevoke, want: domain.StatusPending},
		{name: "revoke pending", from: domain.StatusPending, action: domain.ActionRevoke, wantErr: domain.ErrInvalidTransition},
		{name: "reject approved", from: domain.StatusApproved, action: domain.ActionReject, wantErr: domain.ErrInvalidTransition},
		{name: "approve rejected", from: domain.StatusRejected, action: domain.ActionApprove, wantErr: domain.ErrInvalidTransition},
		{name: "request via admin action", from: domain.StatusPending, action: domain.ActionRequest, wantErr: domain.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			uc, users, _ := newMembership(t)
			_, err := users.Upsert(ctx, &domain.User{ID: nurse.ID, Org: "ER", Status: tt.from})
			require.NoError(t, err)

			out, err := uc.Transition(ctx, adminER, tt.action, nurse.ID, "ER")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				stored, getErr := users.GetByID(ctx, nurse.ID)
				require.NoError(t, getErr)
				assert.Equal(t, tt.from, stored.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.User.Status)
		})
	}
}

func TestMembership_RejectedUserMayRequestAgain(t *testing.T) {
	ctx := context.Background()
	uc, users, _ := newMembership(t)
	_, err := users.Upsert(ctx, &domain.User{ID: nurse.ID, Org: "ER", Status: domain.StatusRejected})
	require.NoError(t, err)

	out, err := uc.Request(ctx, nurse, "ER")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, out.From)
	assert.Equal(t, domain.StatusPending, out.User.Status)
}

func TestMembership_ApprovedUserCannotJumpOrg(t *testing.T) {
	ctx := context.Background()
	uc, users, _ := newMembership(t)
	_, err := users.Upsert(ctx, &domain.User{ID: nurse.ID, Org: "ER", Status: domain.StatusApproved})
	require.NoError(t, err)

	_, err = uc.Request(ctx, nurse, "ICU")

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestMembership_ConcurrentApproveByTwoAdmins(t *testing.T) {
	ctx := context.Background()
	userRepo := &mocks.UserRepository{}
	n := &mocks.Notifier{}
	admins := domain.NewAdminRegistry(map[domain.Org][]int64{"ER": {1, 3}})
	uc := usecase.NewMembershipUseCase(userRepo, admins, n)

	pending := &domain.User{ID: nurse.ID, Org: "ER", Status: domain.StatusPending}
	approved := &domain.User{ID: nurse.ID, Org: "ER", Status: domain.StatusApproved}

	userRepo.On("GetByID", ctx, nurse.ID).Return(pending, nil).Once()
	userRepo.On("UpdateStatus", ctx, nurse.ID, domain.StatusPending, domain.StatusApproved).Return(nil, domain.ErrStatusChanged)
	userRepo.On("GetByID", ctx, nurse.ID).Return(approved, nil).Once()

	out, err := uc.Transition(ctx, domain.Sender{ID: 3}, domain.ActionApprove, nurse.ID, "ER")

	require.NoError(t, err)
	assert.False(t, out.Changed)
	n.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	userRepo.AssertExpectations(t)
}

func TestMembership_ListByStatusRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newMembership(t)

	_, err := uc.Request(ctx, nurse, "ER")
	require.NoError(t, err)

	_, err = uc.ListByStatus(ctx, nurse, domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	list, err := uc.ListByStatus(ctx, adminER, domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, nurse.ID, list[0].ID)

	list, err = uc.ListByStatus(ctx, adminICU, domain.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, list)
}
