package handler

import (
	"net/http"
	"time"

	"shiftbot/internal/domain"
)

// Модели ответов ops API

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ShiftDTO struct {
	ShiftID      int64     `json:"shift_id"`
	Org          string    `json:"org"`
	OwnerID      int64     `json:"owner_id"`
	OwnerDisplay string    `json:"owner_display"`
	Date         string    `json:"date"`
	Caption      string    `json:"caption"`
	ChatID       int64     `json:"chat_id"`
	MessageID    int       `json:"message_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type DateCountDTO struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type OrgStatDTO struct {
	Org           string `json:"org"`
	OpenShifts    int64  `json:"open_shifts"`
	PendingUsers  int64  `json:"pending_users"`
	ApprovedUsers int64  `json:"approved_users"`
}

func toShiftDTOs(shifts []*domain.Shift) []ShiftDTO {
	result := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		result[i] = ShiftDTO{
			ShiftID:      s.ID,
			Org:          string(s.Org),
			OwnerID:      s.OwnerID,
			OwnerDisplay: s.OwnerDisplay,
			Date:         s.Date.Format(domain.DateLayout),
			Caption:      s.Caption,
			ChatID:       s.Source.ChatID,
			MessageID:    s.Source.MessageID,
			CreatedAt:    s.CreatedAt,
		}
	}
	return result
}

func toDateCountDTOs(dates []*domain.DateCount) []DateCountDTO {
	result := make([]DateCountDTO, len(dates))
	for i, d := range dates {
		result[i] = DateCountDTO{Date: d.Date.Format(domain.DateLayout), Count: d.Count}
	}
	return result
}

func toOrgStatDTOs(stats []*domain.OrgStat) []OrgStatDTO {
	result := make([]OrgStatDTO, len(stats))
	for i, s := range stats {
		result[i] = OrgStatDTO{
			Org:           string(s.Org),
			OpenShifts:    s.OpenShifts,
			PendingUsers:  s.PendingUser,
			ApprovedUsers: s.Approved,
		}
	}
	return result
}

func toErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: message}}
}

func toKindErrorResponse(err error) ErrorResponse {
	return toErrorResponse(domain.KindOf(err).String(), err.Error())
}

func getHTTPStatusCode(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindMalformed:
		return http.StatusBadRequest
	case domain.KindUnreachable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
