package usecase

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Option настраивает вспомогательные зависимости use case.
type Option func(*options)

type options struct {
	log logrus.FieldLogger
	now func() time.Time
}

// WithLogger задает логгер. По умолчанию логи отбрасываются.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithClock задает часы, по которым строится текущий месяц календаря.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	o := options{log: discard, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
