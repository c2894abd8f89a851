package domain

import (
	"context"
	"time"
)

// PostingOutcome итог обработки фото или выбора даты.
type PostingOutcome int

const (
	// OutcomeSaved смены записаны.
	OutcomeSaved PostingOutcome = iota
	// OutcomePrompted пользователю показан календарь.
	OutcomePrompted
	// OutcomeQueued элемент альбома принят и ждёт даты.
	OutcomeQueued
)

func (o PostingOutcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomePrompted:
		return "prompted"
	default:
		return "queued"
	}
}

// PostingResult результат операции публикации.
type PostingResult struct {
	Outcome PostingOutcome
	Date    time.Time
	Shifts  []*Shift
	Prompt  Location
}

// InlineOrigin минимальные поля, зашитые прямо в callback-токен.
type InlineOrigin struct {
	Source  Location
	OwnerID int64
}

// DateChoice выбор даты на календаре.
type DateChoice struct {
	Actor    Sender
	Prompt   Location
	Date     time.Time
	AlbumID  string
	Fallback *InlineOrigin
}

// PostingUseCase определяет бизнес-логику публикации смен.
type PostingUseCase interface {
	SubmitMedia(ctx context.Context, ev *MediaEvent) (*PostingResult, error)
	ChooseDate(ctx context.Context, choice *DateChoice) (*PostingResult, error)
}

// BrowseUseCase определяет бизнес-логику поиска и управления сменами.
type BrowseUseCase interface {
	Search(ctx context.Context, actor Sender, date time.Time) ([]*Shift, error)
	Dates(ctx context.Context, actor Sender) ([]*DateCount, error)
	Mine(ctx context.Context, actor Sender) ([]*Shift, error)
	Contact(ctx context.Context, actor Sender, shiftID int64) (*Shift, error)
	Close(ctx context.Context, actor Sender, shiftID int64) (*Shift, error)
}

// MembershipUseCase определяет бизнес-логику членства в org.
type MembershipUseCase interface {
	Request(ctx context.Context, actor Sender, org Org) (*MembershipOutcome, error)
	Transition(ctx context.Context, actor Sender, action MembershipAction, targetID int64, org Org) (*MembershipOutcome, error)
	ListByStatus(ctx context.Context, actor Sender, status MemberStatus) ([]*User, error)
	// Profile возвращает запись участника или ErrUserNotFound.
	Profile(ctx context.Context, actor Sender) (*User, error)
}

// StatsUseCase определяет бизнес-логику для панели администратора.
type StatsUseCase interface {
	ListOpenDates(ctx context.Context, org *Org) ([]*DateCount, error)
	GetOrgStats(ctx context.Context) ([]*OrgStat, error)
	ListOpenShifts(ctx context.Context, date time.Time, org *Org) ([]*Shift, error)
}
