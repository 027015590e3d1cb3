package handle_message

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tzclock"
)

// Идентификаторы кнопок и строк списка
const (
	tokenReserve       = "opt_reserve"
	tokenCancel        = "opt_cancel"
	tokenCourtPrefix   = "cancha_"
	tokenDateToday     = "date_today"
	tokenDateTomorrow  = "date_tomorrow"
	tokenDateOther     = "date_other"
	tokenCancelPrefix  = "CANCEL:"
	tokenPagePrefix    = "CANCEL_PAGE:"
	tokenConfirmPrefix = "CONFIRM_CANCEL:"
	tokenCancelBack    = "CANCEL_BACK"

	sameNameKeyword = "mismo"
	cancelReason    = "Cancelación solicitada por WhatsApp"
)

var (
	resetWords = []string{"cancel", "cancelar", "salir"}
	menuWords  = []string{"start", "reservar", "reserva", "inicio"}
)

const (
	msgMenu             = "¿Qué necesitas?"
	msgFlowCancelled    = `Flujo cancelado. Escribe "menu".`
	msgNotUnderstood    = `No entendí 🤔. Escribe "menu" para reservar o cancelar.`
	msgChooseCourt      = "Elige la cancha:"
	msgInvalidCourt     = "Cancha inválida. Elige una:"
	msgChooseDate       = "Elige la fecha:"
	msgAskCustomDate    = "Escribe la fecha en formato *DD-MM-AAAA* (ej: 21-08-2025)."
	msgInvalidDate      = "Formato inválido. Usa *DD-MM-AAAA* (ej: 21-08-2025)."
	msgPastDate         = "Esa fecha ya pasó. Elige hoy o una fecha futura (DD-MM-AAAA)."
	msgInvalidTime      = "Hora inválida. Usa HH:mm (24h), ej: 18:00"
	msgAskName          = "¿A nombre de quién va la reserva? ✍️"
	msgNeedName         = `Necesito el nombre de la reserva 📝 (puedes poner "mismo").`
	msgSaveFailed       = "❌ Error al guardar la reserva. Intenta en unos minutos."
	msgNoUpcoming       = "No encuentro reservas próximas para este número."
	msgNoMorePages      = "No hay más reservas para mostrar."
	msgChooseToCancel   = "Elige la reserva a cancelar:"
	msgMoreOptions      = "Más opciones:"
	msgNumericFallback  = "Si no ves opciones, responde con 1, 2 o 3."
	msgConfirmCancel    = "¿Confirmas que deseas cancelar esta reserva?"
	msgSelectionInvalid = "La reserva seleccionada ya no es válida. Intenta de nuevo."
	msgOperationAborted = `Operación cancelada. Escribe "menu".`
	msgCancelled        = `✅ Reserva cancelada. Si quieres reservar otra vez, escribe "menu".`
	msgAlreadyCancelled = "Esa reserva ya estaba cancelada."
	msgTooLate          = "⏳ Falta muy poco para el inicio. Ya no es posible cancelar por este medio."
	msgNotAllowed       = "❌ No tienes permiso para cancelar esa reserva."
	msgBookingNotFound  = "No encontré esa reserva."
	msgCancelFailed     = "❌ Error al cancelar. Intenta más tarde."
	msgTemporaryFailure = "❌ Tuvimos un problema. Intenta en unos minutos."
)

func menuButtons() []domain.Button {
	return []domain.Button{
		{ID: tokenReserve, Title: "Reservar cancha"},
		{ID: tokenCancel, Title: "Cancelar reserva"},
	}
}

func courtButtons(courts []int64) []domain.Button {
	out := make([]domain.Button, 0, len(courts))
	for _, id := range courts {
		out = append(out, domain.Button{
			ID:    tokenCourtPrefix + strconv.FormatInt(id, 10),
			Title: fmt.Sprintf("Cancha %d", id),
		})
	}
	return out
}

func dateButtons() []domain.Button {
	return []domain.Button{
		{ID: tokenDateToday, Title: "Hoy"},
		{ID: tokenDateTomorrow, Title: "Mañana"},
		{ID: tokenDateOther, Title: "Otro día"},
	}
}

func confirmButtons(bookingID string) []domain.Button {
	return []domain.Button{
		{ID: tokenConfirmPrefix + bookingID, Title: "Sí, cancelar"},
		{ID: tokenCancelBack, Title: "No"},
	}
}

func courtSelected(courtID int64) string {
	return fmt.Sprintf("Cancha %d seleccionada ✅\nAhora elige la fecha:", courtID)
}

func noSlots(date string) string {
	return fmt.Sprintf("No hay horarios disponibles para *%s*.\nEscribe \"mañana\" o una fecha (DD-MM-AAAA).", tzclock.FormatDMY(date))
}

func slotsAvailable(date string, slots []types.TimeString) string {
	return fmt.Sprintf("📅 Fecha *%s* seleccionada.\nHorarios disponibles: %s\n\nEscribe la *hora* (HH:mm, 24h).",
		tzclock.FormatDMY(date), joinSlots(slots))
}

func slotTaken(date string, slots []types.TimeString) string {
	return fmt.Sprintf("Esa hora no está disponible para *%s*.\nDisponibles: %s\nEnvía una hora válida (HH:mm).",
		tzclock.FormatDMY(date), joinSlots(slots))
}

func rememberedName(name string) string {
	return fmt.Sprintf("Tengo este nombre guardado: *%s*.\nEscribe *%s* para usarlo, o escribe un nombre nuevo.", name, sameNameKeyword)
}

func bookingSaved(name string, courtID int64, date string, at types.TimeString) string {
	return fmt.Sprintf("✅ *Reserva guardada*\n• Nombre: %s\n• Cancha: %d\n• Fecha: %s\n• Hora: %s\n\nEscribe \"menu\" para nueva reserva o \"cancelar\" para salir.",
		name, courtID, tzclock.FormatDMY(date), at)
}

func slotJustTaken(courtID int64) string {
	return fmt.Sprintf("⚠️ Ese horario ya está reservado para la cancha %d. Elige otra *hora* (HH:mm) o cambia la fecha.", courtID)
}

func crossesCutoff() string {
	return "⚠️ Esa hora cruza el cambio de tarifa de la cancha. Elige otra *hora* (HH:mm)."
}

func rateMissing(courtID int64) string {
	return fmt.Sprintf("⚠️ La cancha %d no tiene tarifa para ese horario. Elige otra *hora* o escribe \"menu\".", courtID)
}

func pageTitle(page int) string {
	return fmt.Sprintf("Página %d: elige la reserva a cancelar:", page)
}

func cancelFooter(graceMinutes int) string {
	return fmt.Sprintf("Puedes cancelar hasta %d min antes del inicio.", graceMinutes)
}

func joinSlots(slots []types.TimeString) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}
