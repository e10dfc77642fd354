package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gi-t-ansari/babysteps-backend/internal/clinic"
)

func appointmentParamsFromRequest(req AppointmentRequest) (clinic.AppointmentParams, error) {
	p := clinic.AppointmentParams{
		Duration:        req.Duration,
		AppointmentType: req.AppointmentType,
		PatientName:     req.PatientName,
		Notes:           req.Notes,
	}

	if req.DoctorID == "" {
		return clinic.AppointmentParams{}, fmt.Errorf("%w: doctorId", clinic.ErrMissingField)
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return clinic.AppointmentParams{}, errInvalidDoctorID
	}
	p.DoctorID = doctorID

	if req.Date == "" {
		return clinic.AppointmentParams{}, fmt.Errorf("%w: date", clinic.ErrMissingField)
	}
	startsAt, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return clinic.AppointmentParams{}, clinic.ErrInvalidDate
	}
	p.StartsAt = startsAt.UTC()

	return p, nil
}

func createAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		params, err := appointmentParamsFromRequest(req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		appt, err := svc.CreateAppointment(r.Context(), params)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, appointmentResponse(appt, nil))
	}
}

func listAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointments, err := svc.ListAppointments(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]AppointmentResponse, 0, len(appointments))
		for i := range appointments {
			resp = append(resp, appointmentResponse(&appointments[i].Appointment, appointments[i].Doctor))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func getAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		detail, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse(&detail.Appointment, detail.Doctor))
	}
}

func updateAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req AppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		params, err := appointmentParamsFromRequest(req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		appt, err := svc.UpdateAppointment(r.Context(), id, params)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse(appt, nil))
	}
}

func deleteAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		if err := svc.DeleteAppointment(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "appointment canceled successfully"})
	}
}
