package domain

import (
	"regexp"
	"strconv"
	"time"
)

const (
	// DateLayout формат даты в токенах и в БД.
	DateLayout = "2006-01-02"
	// HumanDateLayout формат даты в сообщениях пользователю.
	HumanDateLayout = "02/01/2006"
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?P<d>\d{1,2})[/\-.\s](?P<m>\d{1,2})[/\-.\s](?P<y>\d{4})`),
	regexp.MustCompile(`(?P<y>\d{4})[/\-.\s](?P<m>\d{1,2})[/\-.\s](?P<d>\d{1,2})`),
}

// ParseDate ищет дату в подписи к фото: 31/12/2025, 31-12-2025, 2025-12-31 и т.п.
// Несуществующие даты (31/02) пропускаются.
func ParseDate(text string) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}
	for _, re := range datePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			var d, mth, y int
			for i, name := range re.SubexpNames() {
				n, _ := strconv.Atoi(m[i])
				switch name {
				case "d":
					d = n
				case "m":
					mth = n
				case "y":
					y = n
				}
			}
			if t, ok := civilDate(y, mth, d); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ParseISODate разбирает дату формата YYYY-MM-DD.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// DateOf отбрасывает время суток, сохраняя календарную дату t в её часовом поясе.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// HumanDate форматирует дату для сообщений.
func HumanDate(t time.Time) string {
	return t.Format(HumanDateLayout)
}

func civilDate(y, m, d int) (time.Time, bool) {
	if m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}
