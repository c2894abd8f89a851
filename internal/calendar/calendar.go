// Package calendar строит inline-клавиатуру выбора дня месяца.
package calendar

import (
	"fmt"
	"strconv"
	"time"

	"shiftbot/internal/callback"
	"shiftbot/internal/domain"
)

var weekdays = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Build строит календарь месяца, в котором лежит month. Каждый день кодируется
// как mode с подставленной датой, стрелки листают месяцы через NAV.
func Build(month time.Time, mode callback.Token) (domain.Keyboard, error) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	ignore := callback.MustEncode(callback.Token{Action: callback.ActionIgnore})

	kb := domain.Keyboard{
		{{Text: fmt.Sprintf("%02d/%d", int(first.Month()), first.Year()), Data: ignore}},
	}

	header := make([]domain.Button, 0, len(weekdays))
	for _, d := range weekdays {
		header = append(header, domain.Button{Text: d, Data: ignore})
	}
	kb = append(kb, header)

	week := make([]domain.Button, 0, 7)
	for i := 0; i < mondayOffset(first); i++ {
		week = append(week, domain.Button{Text: " ", Data: ignore})
	}

	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		data, err := callback.EncodeWithFallback(mode.WithDate(d))
		if err != nil {
			return nil, err
		}
		week = append(week, domain.Button{Text: strconv.Itoa(d.Day()), Data: data})
		if len(week) == 7 {
			kb = append(kb, week)
			week = make([]domain.Button, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, domain.Button{Text: " ", Data: ignore})
		}
		kb = append(kb, week)
	}

	prev, err := navButton("<", first.AddDate(0, -1, 0), mode)
	if err != nil {
		return nil, err
	}
	next, err := navButton(">", first.AddDate(0, 1, 0), mode)
	if err != nil {
		return nil, err
	}
	kb = append(kb, []domain.Button{prev, next})

	return kb, nil
}

func navButton(text string, month time.Time, mode callback.Token) (domain.Button, error) {
	data, err := callback.EncodeWithFallback(callback.Token{
		Action: callback.ActionNav,
		Month:  month,
		Mode:   &mode,
	})
	if err != nil {
		return domain.Button{}, err
	}
	return domain.Button{Text: text, Data: data}, nil
}

// mondayOffset число пустых клеток перед первым днём при неделе с понедельника.
func mondayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
