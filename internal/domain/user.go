package domain

import (
	"context"
	"time"
)

// Org код подразделения. Пользователи и смены разных org не видят друг друга.
type Org string

// MemberStatus статус участия пользователя в org.
type MemberStatus string

const (
	StatusPending  MemberStatus = "pending"
	StatusApproved MemberStatus = "approved"
	StatusRejected MemberStatus = "rejected"
)

// Valid сообщает, входит ли статус в закрытое множество.
func (s MemberStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// User представляет участника системы.
type User struct {
	ID          int64
	Org         Org
	Status      MemberStatus
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsApproved сообщает, может ли пользователь публиковать и искать смены.
func (u *User) IsApproved() bool {
	return u != nil && u.Status == StatusApproved && u.Org != ""
}

// UserRepository определяет контракт для работы с хранилищем пользователей.
type UserRepository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	Upsert(ctx context.Context, user *User) (*User, error)
	// UpdateStatus меняет статус только если текущий равен from, иначе ErrStatusChanged.
	UpdateStatus(ctx context.Context, userID int64, from, to MemberStatus) (*User, error)
	ListByStatus(ctx context.Context, org Org, status MemberStatus) ([]*User, error)
}
