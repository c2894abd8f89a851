// Package correlation хранит короткоживущие одноразовые связи между
// нажатием кнопки и исходным сообщением.
package correlation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrMissing токен не найден или истёк.
	ErrMissing = errors.New("correlation entry missing")
	// ErrRejected запись найдена, но не прошла проверку и оставлена на месте.
	ErrRejected = errors.New("correlation entry rejected")
)

const (
	DefaultTTL        = 24 * time.Hour
	DefaultMaxEntries = 10000
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Store одноразовая таблица token -> payload с ограничением по времени жизни.
type Store[T any] struct {
	mu         sync.Mutex
	entries    map[string]entry[T]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// Option настраивает Store.
type Option func(*options)

type options struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// WithTTL задает время жизни записи.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithMaxEntries ограничивает размер таблицы.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// WithClock подменяет часы (для тестов).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewStore создает пустое хранилище.
func NewStore[T any](opts ...Option) *Store[T] {
	o := options{ttl: DefaultTTL, maxEntries: DefaultMaxEntries, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		entries:    make(map[string]entry[T]),
		ttl:        o.ttl,
		maxEntries: o.maxEntries,
		now:        o.now,
	}
}

// Put сохраняет значение под token и возвращает token. Пустой token
// заменяется новым uuid. Существующая запись перезаписывается.
func (s *Store[T]) Put(token string, v T) string {
	if token == "" {
		token = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.entries[token]; !exists && len(s.entries) >= s.maxEntries {
		s.sweepLocked(now)
		if len(s.entries) >= s.maxEntries {
			s.evictOldestLocked()
		}
	}
	s.entries[token] = entry[T]{value: v, expiresAt: now.Add(s.ttl)}
	return token
}

// Take атомарно удаляет и возвращает запись.
func (s *Store[T]) Take(token string) (T, bool) {
	v, err := s.TakeIf(token, nil)
	return v, err == nil
}

// TakeIf удаляет и возвращает запись, только если accept её принимает.
// Проверка и удаление выполняются под одной блокировкой.
func (s *Store[T]) TakeIf(token string, accept func(T) bool) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return zero, ErrMissing
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, token)
		return zero, ErrMissing
	}
	if accept != nil && !accept(e.value) {
		return zero, ErrRejected
	}
	delete(s.entries, token)
	return e.value, nil
}

// Len возвращает число записей, включая ещё не вычищенные истёкшие.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep удаляет истёкшие записи и возвращает их число.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

// Run периодически вызывает Sweep до отмены ctx.
func (s *Store[T]) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store[T]) sweepLocked(now time.Time) int {
	removed := 0
	for token, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

func (s *Store[T]) evictOldestLocked() {
	var (
		oldest string
		at     time.Time
	)
	for token, e := range s.entries {
		if oldest == "" || e.expiresAt.Before(at) {
			oldest, at = token, e.expiresAt
		}
	}
	if oldest != "" {
		delete(s.entries, oldest)
	}
}
