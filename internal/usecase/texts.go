package usecase

import (
	"fmt"
	"time"

	"shiftbot/internal/domain"
)

const (
	textPickDate        = "📅 Seleziona la data per questo turno:"
	textPickAlbumDate   = "📅 Seleziona la data per questo turno (album):"
	textOpenPrivate     = "ℹ️ Apri la chat privata con me:"
	textOpenPrivateBtn  = "🔒 Apri chat privata"
	textCorrelationLost = "❌ Non riesco a collegare questo calendario al post originale. Rimanda la foto."
	textAlbumNotFound   = "❌ Album non trovato."
	textNotMember       = "⛔ Per pubblicare turni devi essere un membro approvato.\nScrivimi in privato e usa /start."
)

func textSaved(date time.Time) string {
	return fmt.Sprintf("✅ Turno registrato per il %s", domain.HumanDate(date))
}

func textAlbumSaved(date time.Time) string {
	return fmt.Sprintf("✅ Turno (album) registrato per il %s", domain.HumanDate(date))
}

func textDuplicate(date time.Time) string {
	return fmt.Sprintf("⛔ Hai già un turno aperto per il %s.\nChiudi quello esistente con Risolto oppure usa /miei.", domain.HumanDate(date))
}

func textJoinRequest(user *domain.User) string {
	return fmt.Sprintf("🆕 Richiesta di accesso a %s da %s (id %d).", user.Org, displayOrID(user), user.ID)
}

func textStatusChanged(status domain.MemberStatus, org domain.Org) string {
	switch status {
	case domain.StatusApproved:
		return fmt.Sprintf("✅ Sei stato approvato in %s. Ora puoi pubblicare e cercare turni.", org)
	case domain.StatusRejected:
		return fmt.Sprintf("❌ La tua richiesta per %s è stata rifiutata.", org)
	default:
		return fmt.Sprintf("⏸️ Il tuo accesso a %s è stato sospeso, in attesa di nuova approvazione.", org)
	}
}

func displayOrID(user *domain.User) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return fmt.Sprintf("utente %d", user.ID)
}
