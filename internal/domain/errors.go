package domain

import "errors"

// Domain errors (для бизнес-логики)
var (
	// Validation errors
	ErrInvalidDate  = errors.New("invalid shift date")
	ErrInvalidOrg   = errors.New("unknown org")
	ErrInvalidShift = errors.New("invalid shift id")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrNotMember         = errors.New("user is not an approved member")
	ErrInvalidTransition = errors.New("membership transition not allowed")
	ErrStatusChanged     = errors.New("membership status changed concurrently")

	// Shift errors
	ErrShiftNotFound      = errors.New("shift not found")
	ErrOrgUnknown         = errors.New("shift org cannot be determined")
	ErrDuplicateOpenShift = errors.New("owner already has an open shift on this date")
	ErrAlreadyResolved    = errors.New("already resolved")

	// Correlation errors
	ErrCorrelationLost = errors.New("cannot relink interaction to its origin")
	ErrAlbumNotFound   = errors.New("album not found")

	// Access errors
	ErrForbidden = errors.New("forbidden")

	// Transport errors
	ErrUnreachable = errors.New("recipient unreachable")
	ErrMalformed   = errors.New("malformed callback token")
)

// Kind классифицирует ошибку для ответа пользователю.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindUnreachable
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindForbidden:
		return "FORBIDDEN"
	case KindUnreachable:
		return "UNREACHABLE"
	case KindMalformed:
		return "MALFORMED"
	default:
		return "INTERNAL"
	}
}

// Маппинг domain ошибок в категории
var kindMapping = []struct {
	err  error
	kind Kind
}{
	{ErrUserNotFound, KindNotFound},
	{ErrShiftNotFound, KindNotFound},
	{ErrCorrelationLost, KindNotFound},
	{ErrAlbumNotFound, KindNotFound},
	{ErrAlreadyResolved, KindNotFound},

	{ErrDuplicateOpenShift, KindConflict},
	{ErrInvalidTransition, KindConflict},
	{ErrStatusChanged, KindConflict},

	{ErrForbidden, KindForbidden},
	{ErrNotMember, KindForbidden},
	{ErrOrgUnknown, KindForbidden},

	{ErrUnreachable, KindUnreachable},

	{ErrMalformed, KindMalformed},
	{ErrInvalidDate, KindMalformed},
	{ErrInvalidOrg, KindMalformed},
	{ErrInvalidShift, KindMalformed},
}

// KindOf возвращает категорию ошибки, учитывая обёртки %w.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, m := range kindMapping {
		if errors.Is(err, m.err) {
			return m.kind
		}
	}
	return KindInternal
}
