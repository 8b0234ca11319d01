package api

import (
	"errors"
	"net/http"

	"salonik/internal/database"
	"salonik/internal/schedule"
	"salonik/internal/service"
)

// writeServiceError maps service-layer errors to HTTP status codes and
// client-facing messages.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		status := http.StatusConflict
		if conflict.Reason == schedule.ReasonInvalidInput {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{
			"error":  reasonMessage(conflict.Reason),
			"reason": string(conflict.Reason),
		})
		return
	}

	switch {
	case errors.Is(err, database.ErrPastDate):
		writeError(w, http.StatusBadRequest, "Nie można rezerwować wizyty na datę z przeszłości.")
	case errors.Is(err, database.ErrDateTooFar):
		writeError(w, http.StatusBadRequest, "Wybrana data jest zbyt odległa. Prosimy wybrać wcześniejszy termin.")
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "Wizyta została w międzyczasie zmieniona. Prosimy odświeżyć dane i spróbować ponownie.")
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "Nie znaleziono wizyty.")
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "Wystąpił błąd podczas przetwarzania żądania. Prosimy spróbować później.")
	}
}

func reasonMessage(reason schedule.Reason) string {
	switch reason {
	case schedule.ReasonSalonClosed:
		return "Salon jest nieczynny w wybranym dniu."
	case schedule.ReasonStaffUnavailable:
		return "Wybrany specjalista jest niedostępny w tym dniu."
	case schedule.ReasonSlotUnavailable:
		return "Wybrany termin jest niedostępny. Prosimy wybrać inną godzinę."
	case schedule.ReasonBreakOverlap:
		return "Wybrany termin koliduje z przerwą. Prosimy wybrać inną godzinę."
	case schedule.ReasonStaffBusy:
		return "Specjalista ma już wizytę w tym czasie."
	case schedule.ReasonInvalidInput:
		return "Nieprawidłowe dane żądania."
	default:
		return "Rezerwacja niemożliwa."
	}
}
