package handler

import (
	"fmt"
	"strings"
	"time"

	"shiftbot/internal/domain"
)

const (
	textWelcome = "👋 Benvenuto/a nel gruppo Cambi Servizi!\n\n" +
		"Per caricare i turni:\n" +
		"• Invia l’immagine del turno con una breve descrizione " +
		"(es. Cambio per mattina, Cambio per intermedia, Cambio per pomeriggio)\n\n" +
		"Per cercare i turni (solo in privato col bot):\n" +
		"• /cerca → calendario e ricerca\n" +
		"• /date → elenco date\n" +
		"• /miei → i tuoi turni\n" +
		"• /version (solo admin nel gruppo)\n"

	textCommandsPrivate = "🛡️ I comandi vanno usati in privato.\n\n" +
		"• /cerca → calendario e ricerca\n" +
		"• /date → elenco date\n" +
		"• /miei → i tuoi turni\n"
	textAdminOnlyInGroup = "ℹ️ Nel gruppo solo gli admin possono usare /start e /version.\n" +
		"Per le ricerche usa i pulsanti in privato."
	textOpenPrivateHere = "Apri qui la chat privata:"
	textMenuHint        = "Usa i pulsanti qui sotto 👇"

	textPickSearch   = "📅 Seleziona la data che vuoi consultare:"
	textNoShifts     = "Nessun turno salvato per quella data."
	textNoOpenDates  = "Non ci sono turni aperti al momento."
	textDatesHeader  = "📆 Date con turni aperti:"
	textNoMine       = "Non hai turni aperti al momento."
	textMineHeader   = "🧾 I tuoi turni aperti (max 20 più recenti):"
	textCloseMissing = "❌ Turno non trovato (forse già rimosso)."
	textCloseDenied  = "Non hai i permessi per chiudere questo turno."

	textContactPrompt   = "Ciao 👋 , questo servizio è ancora disponibile ?"
	textContactSent     = "✅ Ti ho inviato in privato lo screenshot e il pulsante per scrivere all’autore."
	textContactNeedsDM  = "Per contattare l’autore apri prima la chat privata con me:"
	textContactOpenChat = "Tocca il pulsante per aprire la chat con l’autore.\nPoi incolla questo messaggio:\n\n" + textContactPrompt

	textJoinPick      = "Scegli il tuo reparto per richiedere l’accesso:"
	textNoPending     = "Nessuna richiesta in attesa."
	textNoMembers     = "Nessun membro approvato."
	textAlreadyDone   = "ℹ️ Già fatto."
	textDateSaved     = "✅ Data registrata"
	textNotMemberHint = "⛔ Devi essere un membro approvato. Usa /start in privato."

	textErrForbidden   = "⛔ Operazione non consentita."
	textErrNotFound    = "❌ Non trovato."
	textErrResolved    = "ℹ️ Già gestito."
	textErrLost        = "❌ Calendario scaduto. Rimanda la foto."
	textErrDuplicate   = "⛔ Hai già un turno aperto per questa data."
	textErrTransition  = "❌ Operazione non valida per lo stato attuale."
	textErrChanged     = "ℹ️ Lo stato è cambiato nel frattempo, riprova."
	textErrMalformed   = "❌ Pulsante non valido."
	textErrUnreachable = "ℹ️ Apri prima la chat privata con me."
	textErrInternal    = "⚠️ Errore interno, riprova più tardi."

	btnResolved    = "✅ Risolto"
	btnContact     = "📩 Contatta autore"
	btnOpenPrivate = "🔒 Apri chat privata"
	btnOpenBot     = "🔒 Apri chat con il bot"
	btnApprove     = "✅ Approva"
	btnReject      = "❌ Rifiuta"
	btnRevoke      = "⏸️ Revoca"
)

// nbsp невидимый текст сообщения с кнопками под показанной сменой.
const nbsp = "\u00a0"

func textShiftsFound(date time.Time, n int) string {
	return fmt.Sprintf("📅 Turni trovati per %s: %d", domain.HumanDate(date), n)
}

func textSearchShown(date time.Time) string {
	return fmt.Sprintf("📅 Risultati mostrati per %s", domain.HumanDate(date))
}

func textImageMissing(date time.Time) string {
	return fmt.Sprintf("📄 Turno del %s\n(Immagine non disponibile)", domain.HumanDate(date))
}

func textClosed(date time.Time) string {
	return fmt.Sprintf("✅ Turno Risolto e rimosso (%s).", domain.HumanDate(date))
}

func textDates(dates []*domain.DateCount) string {
	var b strings.Builder
	b.WriteString(textDatesHeader)
	b.WriteString("\n")
	for _, d := range dates {
		fmt.Fprintf(&b, "\n• %s: %d", domain.HumanDate(d.Date), d.Count)
	}
	return b.String()
}

func textContactButton(s *domain.Shift) string {
	if strings.HasPrefix(s.OwnerDisplay, "@") && len(s.OwnerDisplay) > 1 {
		return "💬 Apri chat con " + s.OwnerDisplay
	}
	return "💬 Apri chat con l’autore"
}

func textMember(u *domain.User) string {
	name := u.DisplayName
	if name == "" {
		name = fmt.Sprintf("utente %d", u.ID)
	}
	return fmt.Sprintf("👤 %s (id %d), %s: %s", name, u.ID, u.Org, statusLabel(u.Status))
}

func textMembership(out *domain.MembershipOutcome) string {
	u := out.User
	switch u.Status {
	case domain.StatusApproved:
		return fmt.Sprintf("✅ Accesso a %s attivo.", u.Org)
	case domain.StatusPending:
		return fmt.Sprintf("⏳ Richiesta per %s in attesa di approvazione.", u.Org)
	default:
		return fmt.Sprintf("❌ Richiesta per %s rifiutata.", u.Org)
	}
}

func textTransition(out *domain.MembershipOutcome) string {
	return fmt.Sprintf("%s\n➡️ %s", textMember(out.User), statusLabel(out.User.Status))
}

func statusLabel(s domain.MemberStatus) string {
	switch s {
	case domain.StatusApproved:
		return "approvato"
	case domain.StatusRejected:
		return "rifiutato"
	default:
		return "in attesa"
	}
}
