package domain

import (
	"context"
	"fmt"
	"time"
)

// ShiftStatus статус публикации смены.
type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "open"
	ShiftClosed ShiftStatus = "closed"
)

// Valid сообщает, входит ли статус в закрытое множество.
func (s ShiftStatus) Valid() bool {
	return s == ShiftOpen || s == ShiftClosed
}

// Location ссылка на сообщение в чате.
type Location struct {
	ChatID    int64
	MessageID int
}

// Key возвращает строковый ключ сообщения, уникальный между чатами.
func (l Location) Key() string {
	return fmt.Sprintf("%d:%d", l.ChatID, l.MessageID)
}

// IsZero сообщает, что ссылка не задана.
func (l Location) IsZero() bool {
	return l.ChatID == 0 && l.MessageID == 0
}

// Shift представляет одну публикацию смены для обмена.
type Shift struct {
	ID           int64
	Org          Org
	OwnerID      int64
	OwnerDisplay string
	Source       Location
	MediaRef     string
	Caption      string
	Date         time.Time
	Status       ShiftStatus
	// PostingKey объединяет строки одной логической публикации (альбом).
	PostingKey string
	CreatedAt  time.Time
}

// DateCount количество открытых смен на дату.
type DateCount struct {
	Date  time.Time
	Count int64
}

// ShiftRepository определяет контракт для работы с хранилищем смен.
type ShiftRepository interface {
	// Create сохраняет одну публикацию (1..N строк с общим PostingKey) атомарно.
	// Возвращает ErrOrgUnknown без org, ErrAlreadyResolved, если исходное
	// сообщение уже записано, и ErrDuplicateOpenShift, если у владельца уже
	// открыта другая публикация на ту же дату в той же org.
	Create(ctx context.Context, shifts []*Shift) error
	HasOpen(ctx context.Context, ownerID int64, date time.Time, org Org) (bool, error)
	// HasSource сообщает, записано ли уже исходное сообщение (повторная доставка).
	HasSource(ctx context.Context, source Location) (bool, error)
	HasOtherOpen(ctx context.Context, ownerID int64, date time.Time, org Org, postingKey string) (bool, error)
	ListOpenByDate(ctx context.Context, date time.Time, org *Org) ([]*Shift, error)
	ListOpenByOwner(ctx context.Context, ownerID int64, org Org, limit int) ([]*Shift, error)
	GetByID(ctx context.Context, shiftID int64) (*Shift, error)
	Delete(ctx context.Context, shiftID int64) error
	DeleteOpenBefore(ctx context.Context, date time.Time) (int64, error)
}

// PendingPosting данные, нужные чтобы создать смену после выбора даты.
// Живёт в хранилище корреляции под ключом сообщения-календаря.
type PendingPosting struct {
	Source       Location
	OwnerID      int64
	OwnerDisplay string
	Caption      string
	MediaRef     string
	AlbumID      string
}
