// Package callback кодирует и разбирает компактные токены inline-кнопок
// вида ACTION|arg1|arg2.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shiftbot/internal/domain"
)

// MaxPayload ограничение платформы на размер данных кнопки, в байтах.
const MaxPayload = 64

const (
	sep         = "|"
	monthLayout = "2006-01"
)

// ErrTooLong токен не помещается в MaxPayload.
var ErrTooLong = errors.New("callback token exceeds payload limit")

// Action тип действия кнопки.
type Action string

const (
	ActionNav          Action = "NAV"
	ActionSetDate      Action = "SETDATE"
	ActionSetDateAlbum Action = "SETDATEALBUM"
	ActionSearch       Action = "SEARCH"
	ActionClose        Action = "CLOSE"
	ActionContact      Action = "CONTACT"
	ActionApprove      Action = "APPROVE"
	ActionReject       Action = "REJECT"
	ActionRevoke       Action = "REVOKE"
	ActionJoin         Action = "JOIN"
	ActionIgnore       Action = "IGNORE"
)

// IsDatePick сообщает, что действие несёт дату дня календаря.
func (a Action) IsDatePick() bool {
	return a == ActionSetDate || a == ActionSetDateAlbum || a == ActionSearch
}

// Membership возвращает соответствующее административное действие.
func (a Action) Membership() (domain.MembershipAction, bool) {
	switch a {
	case ActionApprove:
		return domain.ActionApprove, true
	case ActionReject:
		return domain.ActionReject, true
	case ActionRevoke:
		return domain.ActionRevoke, true
	}
	return "", false
}

// Token разобранные данные кнопки.
type Token struct {
	Action Action
	// Date день для SETDATE, SETDATEALBUM, SEARCH.
	Date time.Time
	// Month первый день месяца для NAV.
	Month time.Time
	// Mode вложенный токен календаря для NAV.
	Mode    *Token
	GroupID string
	ShiftID int64
	UserID  int64
	Org     domain.Org
	// Fallback поля исходного сообщения, зашитые прямо в токен SETDATE.
	Fallback *domain.InlineOrigin
}

// Encode кодирует токен. Возвращает ErrTooLong, если результат больше MaxPayload.
func Encode(t Token) (string, error) {
	parts, err := t.parts()
	if err != nil {
		return "", err
	}
	s := strings.Join(parts, sep)
	if len(s) > MaxPayload {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLong, len(s))
	}
	return s, nil
}

// EncodeWithFallback кодирует токен с зашитыми полями исходного сообщения,
// а если они не помещаются, то без них.
func EncodeWithFallback(t Token) (string, error) {
	s, err := Encode(t)
	if err == nil || !errors.Is(err, ErrTooLong) {
		return s, err
	}
	switch {
	case t.Fallback != nil:
		t.Fallback = nil
	case t.Mode != nil && t.Mode.Fallback != nil:
		mode := *t.Mode
		mode.Fallback = nil
		t.Mode = &mode
	default:
		return s, err
	}
	return Encode(t)
}

// MustEncode кодирует токены фиксированного размера (IGNORE, CLOSE и т.п.).
func MustEncode(t Token) string {
	s, err := Encode(t)
	if err != nil {
		panic(err)
	}
	return s
}

// WithDate возвращает копию токена-режима календаря с подставленным днём.
func (t Token) WithDate(day time.Time) Token {
	t.Date = domain.DateOf(day)
	return t
}

func (t Token) parts() ([]string, error) {
	switch t.Action {
	case ActionIgnore:
		return []string{string(t.Action)}, nil
	case ActionSetDate:
		p := []string{string(t.Action), t.Date.Format(domain.DateLayout)}
		if f := t.Fallback; f != nil {
			p = append(p,
				strconv.FormatInt(f.Source.ChatID, 10),
				strconv.Itoa(f.Source.MessageID),
				strconv.FormatInt(f.OwnerID, 10),
			)
		}
		return p, nil
	case ActionSetDateAlbum:
		if t.GroupID == "" || strings.Contains(t.GroupID, sep) {
			return nil, domain.ErrMalformed
		}
		return []string{string(t.Action), t.Date.Format(domain.DateLayout), t.GroupID}, nil
	case ActionSearch:
		return []string{string(t.Action), t.Date.Format(domain.DateLayout)}, nil
	case ActionNav:
		if t.Mode == nil || !t.Mode.Action.IsDatePick() {
			return nil, domain.ErrMalformed
		}
		inner, err := t.Mode.parts()
		if err != nil {
			return nil, err
		}
		// дата дня во вложенном токене не кодируется
		inner = append(inner[:1:1], inner[2:]...)
		return append([]string{string(t.Action), t.Month.Format(monthLayout)}, inner...), nil
	case ActionClose, ActionContact:
		return []string{string(t.Action), strconv.FormatInt(t.ShiftID, 10)}, nil
	case ActionApprove, ActionReject, ActionRevoke:
		if !validOrg(t.Org) {
			return nil, domain.ErrMalformed
		}
		return []string{string(t.Action), strconv.FormatInt(t.UserID, 10), string(t.Org)}, nil
	case ActionJoin:
		if !validOrg(t.Org) {
			return nil, domain.ErrMalformed
		}
		return []string{string(t.Action), string(t.Org)}, nil
	}
	return nil, domain.ErrMalformed
}

// Decode разбирает токен. Любая нераспознанная форма даёт domain.ErrMalformed.
func Decode(data string) (Token, error) {
	if data == "" || len(data) > MaxPayload {
		return Token{}, domain.ErrMalformed
	}
	t, err := decodeParts(strings.Split(data, sep))
	if err != nil {
		return Token{}, fmt.Errorf("%w: %q", domain.ErrMalformed, data)
	}
	return t, nil
}

func decodeParts(p []string) (Token, error) {
	t := Token{Action: Action(p[0])}
	args := p[1:]

	switch t.Action {
	case ActionIgnore:
		if len(args) != 0 {
			return Token{}, domain.ErrMalformed
		}
		return t, nil

	case ActionSetDate:
		if len(args) != 1 && len(args) != 4 {
			return Token{}, domain.ErrMalformed
		}
		d, err := domain.ParseISODate(args[0])
		if err != nil {
			return Token{}, err
		}
		t.Date = d
		if len(args) == 4 {
			chatID, err1 := strconv.ParseInt(args[1], 10, 64)
			msgID, err2 := strconv.Atoi(args[2])
			ownerID, err3 := strconv.ParseInt(args[3], 10, 64)
			if err := errors.Join(err1, err2, err3); err != nil {
				return Token{}, err
			}
			t.Fallback = &domain.InlineOrigin{
				Source:  domain.Location{ChatID: chatID, MessageID: msgID},
				OwnerID: ownerID,
			}
		}
		return t, nil

	case ActionSetDateAlbum:
		if len(args) != 2 || args[1] == "" {
			return Token{}, domain.ErrMalformed
		}
		d, err := domain.ParseISODate(args[0])
		if err != nil {
			return Token{}, err
		}
		t.Date, t.GroupID = d, args[1]
		return t, nil

	case ActionSearch:
		if len(args) != 1 {
			return Token{}, domain.ErrMalformed
		}
		d, err := domain.ParseISODate(args[0])
		if err != nil {
			return Token{}, err
		}
		t.Date = d
		return t, nil

	case ActionNav:
		if len(args) < 2 {
			return Token{}, domain.ErrMalformed
		}
		month, err := time.Parse(monthLayout, args[0])
		if err != nil {
			return Token{}, err
		}
		// вложенный токен восстанавливается с датой-заглушкой первого дня месяца
		inner := append([]string{args[1], month.Format(domain.DateLayout)}, args[2:]...)
		mode, err := decodeParts(inner)
		if err != nil || !mode.Action.IsDatePick() {
			return Token{}, domain.ErrMalformed
		}
		t.Month, t.Mode = month, &mode
		return t, nil

	case ActionClose, ActionContact:
		if len(args) != 1 {
			return Token{}, domain.ErrMalformed
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return Token{}, domain.ErrMalformed
		}
		t.ShiftID = id
		return t, nil

	case ActionApprove, ActionReject, ActionRevoke:
		if len(args) != 2 {
			return Token{}, domain.ErrMalformed
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || !validOrg(domain.Org(args[1])) {
			return Token{}, domain.ErrMalformed
		}
		t.UserID, t.Org = id, domain.Org(args[1])
		return t, nil

	case ActionJoin:
		if len(args) != 1 || !validOrg(domain.Org(args[0])) {
			return Token{}, domain.ErrMalformed
		}
		t.Org = domain.Org(args[0])
		return t, nil
	}
	return Token{}, domain.ErrMalformed
}

func validOrg(org domain.Org) bool {
	return org != "" && !strings.Contains(string(org), sep)
}
