package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gi-t-ansari/babysteps-backend/internal/clinic"
	redisclient "github.com/gi-t-ansari/babysteps-backend/internal/redis"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

var errInvalidDoctorID = errors.New("doctorId must be a valid UUID")

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errInvalidDoctorID):
		writeError(w, http.StatusBadRequest, "invalid_doctor_id", err.Error())
	case errors.Is(err, clinic.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, clinic.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, clinic.ErrMissingField):
		writeError(w, http.StatusBadRequest, "missing_required_field", err.Error())
	case errors.Is(err, clinic.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
	case errors.Is(err, clinic.ErrInvalidDuration):
		writeError(w, http.StatusBadRequest, "invalid_duration", err.Error())
	case errors.Is(err, clinic.ErrInvalidWorkingHours):
		writeError(w, http.StatusBadRequest, "invalid_working_hours", err.Error())
	case errors.Is(err, clinic.ErrOutsideWorkingHours):
		writeError(w, http.StatusBadRequest, "outside_working_hours", err.Error())
	case errors.Is(err, clinic.ErrSlotConflict):
		writeError(w, http.StatusConflict, "slot_conflict", err.Error())
	case errors.Is(err, clinic.ErrDoctorHasAppointments):
		writeError(w, http.StatusConflict, "doctor_has_appointments", err.Error())
	case errors.Is(err, clinic.ErrDoctorBusy),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "doctor_being_booked", "doctor is currently being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
