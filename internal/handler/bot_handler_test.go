package handler

import (
	"context"
	"errors"
	"io"
	"strconv"
	"testing"
	"time"

	"shiftbot/internal/album"
	"shiftbot/internal/correlation"
	"shiftbot/internal/domain"
	"shiftbot/internal/mocks"
	"shiftbot/internal/repository"
	"shiftbot/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

const (
	groupChat = int64(-1001)
	deepLink  = "https://t.me/shiftbot?start=start"
)

var (
	owner    = domain.Sender{ID: 10, Username: "mario"}
	stranger = domain.Sender{ID: 99, Username: "luigi"}
	nurse    = domain.Sender{ID: 20, FullName: "Giulia Verdi"}
	admin    = domain.Sender{ID: 1, Username: "capo"}
	prompt   = domain.Location{ChatID: groupChat, MessageID: 500}
	copied   = domain.Location{ChatID: 99, MessageID: 700}
	today    = func() time.Time { return time.Date(2025, 12, 3, 9, 0, 0, 0, time.UTC) }
)

type BotHandlerTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *repository.Memory
	notifier *mocks.Notifier
	handler  *BotHandler
}

func TestBotHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(BotHandlerTestSuite))
}

func (s *BotHandlerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemory()
	s.notifier = &mocks.Notifier{}

	for _, u := range []*domain.User{
		{ID: owner.ID, Org: "ER", Status: domain.StatusApproved, DisplayName: "@mario"},
		{ID: stranger.ID, Org: "ER", Status: domain.StatusApproved, DisplayName: "@luigi"},
	} {
		_, err := s.store.Users().Upsert(s.ctx, u)
		s.Require().NoError(err)
	}

	admins := domain.NewAdminRegistry(map[domain.Org][]int64{"ER": {admin.ID}, "ICU": nil})
	posting := usecase.NewPostingUseCase(
		s.store.Users(), s.store.Shifts(), s.notifier,
		correlation.NewStore[domain.PendingPosting](), album.NewAggregator(0, nil),
		usecase.WithClock(today),
	)
	browse := usecase.NewBrowseUseCase(s.store.Users(), s.store.Shifts(), s.store.Stats(), admins, s.notifier)
	membership := usecase.NewMembershipUseCase(s.store.Users(), admins, s.notifier)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s.handler = NewBotHandler(posting, browse, membership, s.notifier, admins, "ShiftBot test", logger).WithClock(today)
}

// stub регистрирует успешные ответы после специфичных ожиданий теста.
func (s *BotHandlerTestSuite) stub() {
	n := s.notifier
	n.On("SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.Location{ChatID: 1, MessageID: 1}, nil).Maybe()
	n.On("ReplyMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(prompt, nil).Maybe()
	n.On("CopyMessage", mock.Anything, mock.Anything, mock.Anything).Return(copied, nil).Maybe()
	n.On("SendMedia", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(copied, nil).Maybe()
	n.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("EditButtons", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("EditText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("AnswerCallback", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("DeepLink", mock.Anything).Return(deepLink).Maybe()
}

func (s *BotHandlerTestSuite) post(msgID int) *domain.Shift {
	shift := &domain.Shift{
		Org:          "ER",
		OwnerID:      owner.ID,
		OwnerDisplay: "@mario",
		Source:       domain.Location{ChatID: groupChat, MessageID: msgID},
		MediaRef:     "file-id",
		Date:         time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC),
		PostingKey:   "posting",
	}
	s.Require().NoError(s.store.Shifts().Create(s.ctx, []*domain.Shift{shift}))
	return shift
}

func (s *BotHandlerTestSuite) command(sender domain.Sender, chat domain.ChatKind, name, args string) domain.Update {
	chatID := sender.ID
	if chat == domain.ChatGroup {
		chatID = groupChat
	}
	return domain.Update{ID: 1, Command: &domain.CommandEvent{
		Sender:  sender,
		Source:  domain.Location{ChatID: chatID, MessageID: 42},
		Chat:    chat,
		Command: name,
		Args:    args,
	}}
}

func (s *BotHandlerTestSuite) press(sender domain.Sender, msg domain.Location, data string) domain.Update {
	return domain.Update{ID: 2, Callback: &domain.CallbackEvent{
		ID:      "cb-1",
		Sender:  sender,
		Message: msg,
		Chat:    domain.ChatPrivate,
		Data:    data,
	}}
}

func (s *BotHandlerTestSuite) TestGroupCommandRedirectsToPrivateChat() {
	s.stub()
	upd := s.command(stranger, domain.ChatGroup, "cerca", "")

	s.handler.Handle(s.ctx, upd)

	s.notifier.AssertCalled(s.T(), "DeleteMessage", s.ctx, upd.Command.Source)
	s.notifier.AssertCalled(s.T(), "SendMessage", s.ctx, stranger.ID, textCommandsPrivate, domain.Keyboard(nil))
	s.notifier.AssertCalled(s.T(), "SendMessage", s.ctx, stranger.ID, textOpenPrivateHere,
		domain.Keyboard{{{Text: btnOpenPrivate, URL: deepLink}}})
}

func (s *BotHandlerTestSuite) TestGroupVersionOnlyForAdmins() {
	s.stub()

	s.handler.Handle(s.ctx, s.command(admin, domain.ChatGroup, "version", ""))
	s.notifier.AssertCalled(s.T(), "ReplyMessage", s.ctx, domain.Location{ChatID: groupChat, MessageID: 42}, "ShiftBot test", domain.Keyboard(nil))
	s.notifier.AssertNotCalled(s.T(), "DeleteMessage", mock.Anything, mock.Anything)

	s.handler.Handle(s.ctx, s.command(stranger, domain.ChatGroup, "version", ""))
	s.notifier.AssertCalled(s.T(), "DeleteMessage", s.ctx, domain.Location{ChatID: groupChat, MessageID: 42})
	s.notifier.AssertCalled(s.T(), "SendMessage", s.ctx, stranger.ID, textAdminOnlyInGroup, domain.Keyboard(nil))
}

func (s *BotHandlerTestSuite) TestPlainGroupTextIsIgnored() {
	s.stub()

	s.handler.Handle(s.ctx, s.command(stranger, domain.ChatGroup, "", ""))

	s.notifier.AssertNotCalled(s.T(), "DeleteMessage", mock.Anything, mock.Anything)
	s.notifier.AssertNotCalled(s.T(), "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *BotHandlerTestSuite) TestMalformedCallbackIsAnsweredSilently() {
	s.stub()

	s.handler.Handle(s.ctx, s.press(stranger, prompt, "BOGUS|1"))

	s.notifier.AssertCalled(s.T(), "AnswerCallback", s.ctx, "cb-1", "", false)
	s.notifier.AssertNotCalled(s.T(), "AnswerCallback", mock.Anything, mock.Anything, textErrMalformed, mock.Anything)
	s.notifier.AssertNumberOfCalls(s.T(), "AnswerCallback", 1)
	s.notifier.AssertNotCalled(s.T(), "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *BotHandlerTestSuite) TestPhotoThenDatePickSavesShift() {
	s.stub()

	s.handler.Handle(s.ctx, domain.Update{ID: 3, Media: &domain.MediaEvent{
		Sender:   owner,
		Source:   domain.Location{ChatID: groupChat, MessageID: 100},
		Chat:     domain.ChatGroup,
		MediaRef: "file-id",
		Caption:  "Cambio per mattina",
	}})
	s.notifier.AssertCalled(s.T(), "ReplyMessage", s.ctx, domain.Location{ChatID: groupChat, MessageID: 100},
		mock.AnythingOfType("string"), mock.AnythingOfType("domain.Keyboard"))

	s.handler.Handle(s.ctx, s.press(owner, prompt, "SETDATE|2025-12-10"))

	s.notifier.AssertCalled(s.T(), "AnswerCallback", s.ctx, "cb-1", textDateSaved, false)
	open, err := s.store.Shifts().ListOpenByOwner(s.ctx, owner.ID, "ER", 10)
	s.Require().NoError(err)
	s.Require().Len(open, 1)
	s.Equal(100, open[0].Source.MessageID)
}

func (s *BotHandlerTestSuite) TestDatePickByOtherUserIsAlerted() {
	s.stub()
	s.handler.Handle(s.ctx, domain.Update{ID: 3, Media: &domain.MediaEvent{
		Sender: owner, Source: domain.Location{ChatID: groupChat, MessageID: 100}, Chat: domain.ChatGroup,
	}})

	s.handler.Handle(s.ctx, s.press(stranger, prompt, "SETDATE|2025-12-10"))

	s.notifier.AssertCalled(s.T(), "AnswerCallback", s.ctx, "cb-1", textErrForbidden, true)
}

func (s *BotHandlerTestSuite) TestCloseTwiceIsBenign() {
	s.stub()
	shift := s.post(100)
	buttons := domain.Location{ChatID: owner.ID, MessageID: 9}

	s.handler.Handle(s.ctx, s.press(owner, buttons, "CLOSE|"+itoa(shift.ID)))
	s.notifier.AssertCalled(s.T(), "EditText", s.ctx, buttons, "✅ Turno Risolto e rimosso (10/12/2025).", domain.Keyboard(nil))
	s.notifier.AssertCalled(s.T(), "DeleteMessage", s.ctx, shift.Source)

	s.handler.Handle(s.ctx, s.press(owner, buttons, "CLOSE|"+itoa(shift.ID)))
	s.notifier.AssertCalled(s.T(), "EditText", s.ctx, buttons, textCloseMissing, domain.Keyboard(nil))
	s.notifier.AssertNumberOfCalls(s.T(), "AnswerCallback", 2)
}

func (s *BotHandlerTestSuite) TestCloseByStrangerIsAlerted() {
	s.stub()
	shift := s.post(100)

	s.handler.Handle(s.ctx, s.press(stranger, prompt, "CLOSE|"+itoa(shift.ID)))

	s.notifier.AssertCalled(s.T(), "AnswerCallback", s.ctx, "cb-1", textCloseDenied, true)
	_, err := s.store.Shifts().GetByID(s.ctx, shift.ID)
	s.NoError(err)
}

func (s *BotHandlerTestSuite) TestSearchShowsShiftsWithContactButton() {
	s.stub()
	shift := s.post(100)
	calendarMsg := domain.Location{ChatID: stranger.ID, MessageID: 5}

	s.handler.Handle(s.ctx, s.press(stranger, calendarMsg, "SEARCH|2025-12-10"))

	s.notifier.AssertCalled(s.T(), "SendMessage", s.ctx, stranger.ID, "📅 Turni trovati per 10/12/2025: 1", domain.Keyboard(nil))
	s.notifier.AssertCalled(s.T(), "CopyMessage", s.ctx, stranger.ID, shift.Source)
	s.notifier.AssertCalled(s.T(), "ReplyMessage", s.ctx, copied, nbsp, contactKeyboard(shift))
	s.notifier.AssertCalled(s.T(), "EditText", s.ctx, calendarMsg, "📅 Risultati mostrati per 10/12/2025", domain.Keyboard(nil))
}

func (s *BotHandlerTestSuite) TestContactSendsScreenshotAndOwnerLink() {
	s.stub()
	shift := s.post(100)

	s.handler.Handle(s.ctx, s.press(stranger, prompt, "CONTACT|"+itoa(shift.ID)))

	s.notifier.AssertCalled(s.T(), "CopyMessage", s.ctx, stranger.ID, shift.Source)
	s.notifier.AssertCalled(s.T(), "SendMessage", s.ctx, stranger.ID, textContactOpenChat,
		domain.Keyboard{{{Text: "💬 Apri chat con @mario", URL: "https://t.me/mario"}}})
	s.notifier.AssertCalled(s.T(), "AnswerCallback", s.ctx, "cb-1", textContactSent, false)
}

func (s *BotHandlerTestSuite) TestContactUnreachableAsksToOpenPrivateChat() {
	s.notifier.On("CopyMessage", mock.Anything, stranger.ID, mock.Anything).
		Return(domain.Location{}, domain.ErrUnreachable).Once()
	s.stub()
	shift := s.post(100)

	s.handler.Handle(s.ctx, s.press(stranger, prompt, "CONTACT|"+itoa(shift.ID)))

	s.notifier.AssertCalled(s.T(), "ReplyMessage", s.ctx, prompt, textContactNeedsDM,
		domain.Keyboard{{{Text: btnOpenBot, URL: deepLink}}})
	s.notifier.AssertNotCalled(s.T(), "SendMedia", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *BotHandlerTestSuite) TestMineFallsBackToPlaceholder() {
	s.notifier.On("CopyMessage", mock.Anything, owner.ID, mock.Anything).
		Return(domain.Location{}, errors.New("message to copy not found")).Once()
	s.notifier.On("SendMedia", mock.Anything, owner.ID, "file-id", mock.Anything).
		Return(domain.Location{}, errors.New("wrong file identifier")).Once()
	s.stub()
	shift := s.post(100)

	upd := s.command(owner, domain.ChatPrivate, "", "")
	upd.Command.Text = "I miei turni"
	s.handler.Handle(s.ctx, upd)

	s.notifier.AssertCalled(s.T(), "SendMessage", s.ctx, owner.ID, textMineHeader, domain.Keyboard(nil))
	s.notifier.AssertCalled(s.T(), "SendMessage", s.ctx, owner.ID, "📄 Turno del 10/12/2025\n(Immagine non disponibile)", domain.Keyboard(nil))
	s.notifier.AssertCalled(s.T(), "ReplyMessage", s.ctx, mock.Anything, nbsp, closeKeyboard(shift))
}

func (s *BotHandlerTestSuite) TestPrivateTextRouter() {
	s.stub()
	upd := s.command(owner, domain.ChatPrivate, "", "")

	upd.Command.Text = "  Miei "
	s.handler.Handle(s.ctx, upd)
	s.notifier.AssertCalled(s.T(), "SendMessage", s.ctx, owner.ID, textNoMine, domain.Keyboard(nil))

	upd.Command.Text = "ciao"
	s.handler.Handle(s.ctx, upd)
	s.notifier.AssertCalled(s.T(), "SendMessage", s.ctx, owner.ID, textMenuHint, domain.Keyboard(nil))
}

func (s *BotHandlerTestSuite) TestDatesCommandListsCounts() {
	s.stub()
	s.post(100)

	s.handler.Handle(s.ctx, s.command(stranger, domain.ChatPrivate, "date", ""))

	s.notifier.AssertCalled(s.T(), "SendMessage", s.ctx, stranger.ID, textDatesHeader+"\n\n• 10/12/2025: 1", domain.Keyboard(nil))
}

func (s *BotHandlerTestSuite) TestStartOffersJoinToNewcomers() {
	s.stub()

	s.handler.Handle(s.ctx, s.command(nurse, domain.ChatPrivate, "start", ""))

	s.notifier.AssertCalled(s.T(), "SendMessage", s.ctx, nurse.ID, textWelcome, domain.Keyboard(nil))
	s.notifier.AssertCalled(s.T(), "SendMessage", s.ctx, nurse.ID, textJoinPick, domain.Keyboard{
		{{Text: "ER", Data: "JOIN|ER"}},
		{{Text: "ICU", Data: "JOIN|ICU"}},
	})
}

func (s *BotHandlerTestSuite) TestJoinThenApproveTwice() {
	s.stub()
	menu := domain.Location{ChatID: nurse.ID, MessageID: 3}
	request := domain.Location{ChatID: admin.ID, MessageID: 4}

	s.handler.Handle(s.ctx, s.press(nurse, menu, "JOIN|ER"))
	s.notifier.AssertCalled(s.T(), "EditText", s.ctx, menu, "⏳ Richiesta per ER in attesa di approvazione.", domain.Keyboard(nil))

	s.handler.Handle(s.ctx, s.press(admin, request, "APPROVE|20|ER"))
	s.notifier.AssertCalled(s.T(), "AnswerCallback", s.ctx, "cb-1", "", false)

	s.handler.Handle(s.ctx, s.press(admin, request, "APPROVE|20|ER"))
	s.notifier.AssertCalled(s.T(), "AnswerCallback", s.ctx, "cb-1", textAlreadyDone, false)

	stored, err := s.store.Users().GetByID(s.ctx, nurse.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, stored.Status)
}

func (s *BotHandlerTestSuite) TestNavRebuildsCalendarInPlace() {
	s.stub()

	s.handler.Handle(s.ctx, s.press(stranger, prompt, "NAV|2026-01|SEARCH"))

	s.notifier.AssertCalled(s.T(), "EditButtons", s.ctx, prompt, mock.AnythingOfType("domain.Keyboard"))
	s.notifier.AssertCalled(s.T(), "AnswerCallback", s.ctx, "cb-1", "", false)
}

func TestBotHandler_PanicIsRecovered(t *testing.T) {
	posting := &mocks.PostingUseCase{}
	posting.On("SubmitMedia", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	})
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := NewBotHandler(posting, nil, nil, &mocks.Notifier{}, domain.NewAdminRegistry(nil), "v", logger)

	require.NotPanics(t, func() {
		h.Handle(context.Background(), domain.Update{Media: &domain.MediaEvent{Chat: domain.ChatGroup}})
	})
}

func TestBotHandler_RunDrainsUpdates(t *testing.T) {
	defer goleak.VerifyNone(t)

	n := &mocks.Notifier{}
	n.On("SendMessage", mock.Anything, groupChat, textWelcome, domain.Keyboard(nil)).
		Return(domain.Location{}, nil).Times(5)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := NewBotHandler(nil, nil, nil, n, domain.NewAdminRegistry(nil), "v", logger)

	updates := make(chan domain.Update, 5)
	for i := 0; i < 5; i++ {
		updates <- domain.Update{ID: i, Joined: &domain.JoinEvent{ChatID: groupChat}}
	}
	close(updates)

	require.NoError(t, h.Run(context.Background(), updates, 3))
	n.AssertExpectations(t)
}

func TestBotHandler_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := NewBotHandler(nil, nil, nil, &mocks.Notifier{}, domain.NewAdminRegistry(nil), "v", logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx, make(chan domain.Update), 2) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
