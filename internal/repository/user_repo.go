package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shiftbot/internal/database"
	"shiftbot/internal/domain"
)

// UserRepository реализует взаимодействие с данными пользователей в PostgreSQL.
type UserRepository struct {
	db      *sql.DB
	queries *database.Queries
}

// NewUserRepository создает новый экземпляр UserRepository.
func NewUserRepository(db *sql.DB, queries *database.Queries) domain.UserRepository {
	return &UserRepository{
		db:      db,
		queries: queries,
	}
}

// GetByID возвращает пользователя по ID.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	dbUser, err := r.queries.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toDomainUser(dbUser), nil
}

// Upsert создает пользователя или перезаписывает org, статус и имя.
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	if !user.Status.Valid() {
		return nil, domain.ErrInvalidTransition
	}
	if user.Status == domain.StatusApproved && user.Org == "" {
		return nil, domain.ErrOrgUnknown
	}

	dbUser, err := r.queries.UpsertUser(ctx, database.UpsertUserParams{
		UserID:      user.ID,
		Org:         nullOrg(user.Org),
		Status:      string(user.Status),
		DisplayName: user.DisplayName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return toDomainUser(dbUser), nil
}

// UpdateStatus переводит пользователя из from в to, если статус не изменился параллельно.
func (r *UserRepository) UpdateStatus(ctx context.Context, userID int64, from, to domain.MemberStatus) (*domain.User, error) {
	dbUser, err := r.queries.UpdateUserStatus(ctx, database.UpdateUserStatusParams{
		ToStatus:   string(to),
		UserID:     userID,
		FromStatus: string(from),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, userID); getErr != nil {
				return nil, getErr
			}
			return nil, domain.ErrStatusChanged
		}
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	return toDomainUser(dbUser), nil
}

// ListByStatus возвращает пользователей org с заданным статусом в порядке регистрации.
func (r *UserRepository) ListByStatus(ctx context.Context, org domain.Org, status domain.MemberStatus) ([]*domain.User, error) {
	rows, err := r.queries.ListUsersByStatus(ctx, database.ListUsersByStatusParams{
		Org:    nullOrg(org),
		Status: string(status),
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, toDomainUser(row))
	}

	return users, nil
}

func nullOrg(org domain.Org) sql.NullString {
	return sql.NullString{String: string(org), Valid: org != ""}
}

func toDomainUser(row database.User) *domain.User {
	return &domain.User{
		ID:          row.UserID,
		Org:         domain.Org(row.Org.String),
		Status:      domain.MemberStatus(row.Status),
		DisplayName: row.DisplayName,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
