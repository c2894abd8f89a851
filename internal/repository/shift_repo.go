package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shiftbot/internal/database"
	"shiftbot/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// ShiftRepository реализует взаимодействие с данными смен в PostgreSQL.
type ShiftRepository struct {
	db      *sql.DB
	queries *database.Queries
}

// NewShiftRepository создает новый экземпляр ShiftRepository.
func NewShiftRepository(db *sql.DB, queries *database.Queries) domain.ShiftRepository {
	return &ShiftRepository{
		db:      db,
		queries: queries,
	}
}

// Create записывает публикацию в одной транзакции. Запись сериализуется
// advisory-блокировкой по (владелец, дата, org), поэтому проверка дубликата
// внутри транзакции не пропускает параллельную публикацию. Уже записанное
// исходное сообщение даёт ErrAlreadyResolved раньше проверки дубликата.
func (r *ShiftRepository) Create(ctx context.Context, shifts []*domain.Shift) (err error) {
	head, err := validatePosting(shifts)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txQueries := r.queries.WithTx(tx)

	// 1. Сериализуем публикации одного владельца на одну дату
	if err = txQueries.LockOwnerDate(ctx, lockKey(head)); err != nil {
		return fmt.Errorf("failed to lock owner date: %w", err)
	}

	// 2. Повторная доставка того же сообщения
	for _, s := range shifts {
		var seen int64
		seen, err = txQueries.CountShiftsBySource(ctx, database.CountShiftsBySourceParams{
			ChatID:    s.Source.ChatID,
			MessageID: int64(s.Source.MessageID),
		})
		if err != nil {
			return fmt.Errorf("failed to check source message: %w", err)
		}
		if seen > 0 {
			err = domain.ErrAlreadyResolved
			return err
		}
	}

	// 3. Повторно проверяем дубликат уже под блокировкой
	count, err := txQueries.CountOtherOpenShifts(ctx, database.CountOtherOpenShiftsParams{
		OwnerID:    head.OwnerID,
		ShiftDate:  head.Date,
		Org:        string(head.Org),
		PostingKey: head.PostingKey,
	})
	if err != nil {
		return fmt.Errorf("failed to check open shifts: %w", err)
	}
	if count > 0 {
		err = domain.ErrDuplicateOpenShift
		return err
	}

	// 4. Пишем строки публикации
	for _, s := range shifts {
		var row database.Shift
		row, err = txQueries.CreateShift(ctx, database.CreateShiftParams{
			Org:          string(s.Org),
			OwnerID:      s.OwnerID,
			OwnerDisplay: s.OwnerDisplay,
			ChatID:       s.Source.ChatID,
			MessageID:    int64(s.Source.MessageID),
			MediaRef:     s.MediaRef,
			Caption:      s.Caption,
			ShiftDate:    s.Date,
			PostingKey:   s.PostingKey,
		})
		if err != nil {
			if isUniqueViolation(err) {
				err = domain.ErrAlreadyResolved
				return err
			}
			return fmt.Errorf("failed to create shift: %w", err)
		}
		*s = *toDomainShift(row)
	}

	// 5. Коммитим транзакцию
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// HasOpen проверяет наличие открытой смены владельца на дату.
func (r *ShiftRepository) HasOpen(ctx context.Context, ownerID int64, date time.Time, org domain.Org) (bool, error) {
	count, err := r.queries.CountOpenShifts(ctx, database.CountOpenShiftsParams{
		OwnerID:   ownerID,
		ShiftDate: date,
		Org:       string(org),
	})
	if err != nil {
		return false, fmt.Errorf("failed to check open shifts: %w", err)
	}
	return count > 0, nil
}

// HasSource проверяет, записано ли уже исходное сообщение.
func (r *ShiftRepository) HasSource(ctx context.Context, source domain.Location) (bool, error) {
	count, err := r.queries.CountShiftsBySource(ctx, database.CountShiftsBySourceParams{
		ChatID:    source.ChatID,
		MessageID: int64(source.MessageID),
	})
	if err != nil {
		return false, fmt.Errorf("failed to check source message: %w", err)
	}
	return count > 0, nil
}

// HasOtherOpen проверяет наличие открытой смены владельца на дату из другой публикации.
func (r *ShiftRepository) HasOtherOpen(ctx context.Context, ownerID int64, date time.Time, org domain.Org, postingKey string) (bool, error) {
	count, err := r.queries.CountOtherOpenShifts(ctx, database.CountOtherOpenShiftsParams{
		OwnerID:    ownerID,
		ShiftDate:  date,
		Org:        string(org),
		PostingKey: postingKey,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check open shifts: %w", err)
	}
	return count > 0, nil
}

// ListOpenByDate возвращает открытые смены на дату в порядке создания.
// org == nil только для панели администратора.
func (r *ShiftRepository) ListOpenByDate(ctx context.Context, date time.Time, org *domain.Org) ([]*domain.Shift, error) {
	var (
		rows []database.Shift
		err  error
	)
	if org == nil {
		rows, err = r.queries.ListOpenShiftsByDate(ctx, date)
	} else {
		rows, err = r.queries.ListOpenShiftsByDateAndOrg(ctx, database.ListOpenShiftsByDateAndOrgParams{
			ShiftDate: date,
			Org:       string(*org),
		})
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to list shifts by date: %w", err)
	}

	return toDomainShifts(rows), nil
}

// ListOpenByOwner возвращает последние открытые смены владельца.
func (r *ShiftRepository) ListOpenByOwner(ctx context.Context, ownerID int64, org domain.Org, limit int) ([]*domain.Shift, error) {
	rows, err := r.queries.ListOpenShiftsByOwner(ctx, database.ListOpenShiftsByOwnerParams{
		OwnerID: ownerID,
		Org:     string(org),
		Limit:   int32(limit),
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to list owner shifts: %w", err)
	}

	return toDomainShifts(rows), nil
}

// GetByID возвращает смену по ID.
func (r *ShiftRepository) GetByID(ctx context.Context, shiftID int64) (*domain.Shift, error) {
	row, err := r.queries.GetShiftByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}

	return toDomainShift(row), nil
}

// Delete удаляет смену. Закрытие смены - это удаление строки.
func (r *ShiftRepository) Delete(ctx context.Context, shiftID int64) error {
	n, err := r.queries.DeleteShift(ctx, shiftID)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if n == 0 {
		return domain.ErrShiftNotFound
	}
	return nil
}

// DeleteOpenBefore удаляет открытые смены с датой раньше date.
func (r *ShiftRepository) DeleteOpenBefore(ctx context.Context, date time.Time) (int64, error) {
	n, err := r.queries.DeleteOpenShiftsBefore(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to purge shifts: %w", err)
	}
	return n, nil
}

// validatePosting проверяет, что строки образуют одну публикацию.
func validatePosting(shifts []*domain.Shift) (*domain.Shift, error) {
	if len(shifts) == 0 {
		return nil, domain.ErrInvalidShift
	}
	head := shifts[0]
	if head.Org == "" {
		return nil, domain.ErrOrgUnknown
	}
	for _, s := range shifts[1:] {
		if s.Org != head.Org || s.OwnerID != head.OwnerID ||
			!s.Date.Equal(head.Date) || s.PostingKey != head.PostingKey {
			return nil, domain.ErrInvalidShift
		}
	}
	if head.PostingKey == "" {
		return nil, domain.ErrInvalidShift
	}
	return head, nil
}

func lockKey(s *domain.Shift) string {
	return fmt.Sprintf("%d|%s|%s", s.OwnerID, s.Date.Format(domain.DateLayout), s.Org)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func toDomainShift(row database.Shift) *domain.Shift {
	return &domain.Shift{
		ID:           row.ShiftID,
		Org:          domain.Org(row.Org),
		OwnerID:      row.OwnerID,
		OwnerDisplay: row.OwnerDisplay,
		Source:       domain.Location{ChatID: row.ChatID, MessageID: int(row.MessageID)},
		MediaRef:     row.MediaRef,
		Caption:      row.Caption,
		Date:         domain.DateOf(row.ShiftDate),
		Status:       domain.ShiftStatus(row.Status),
		PostingKey:   row.PostingKey,
		CreatedAt:    row.CreatedAt,
	}
}

func toDomainShifts(rows []database.Shift) []*domain.Shift {
	shifts := make([]*domain.Shift, 0, len(rows))
	for _, row := range rows {
		shifts = append(shifts, toDomainShift(row))
	}
	return shifts
}
