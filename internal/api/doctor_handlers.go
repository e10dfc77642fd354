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

func doctorParamsFromRequest(req DoctorRequest) (clinic.DoctorParams, error) {
	p := clinic.DoctorParams{
		Name:           req.Name,
		Specialization: req.Specialization,
	}

	if req.WorkingHours.Start == "" || req.WorkingHours.End == "" {
		return clinic.DoctorParams{}, fmt.Errorf("%w: workingHours", clinic.ErrMissingField)
	}

	start, err := clinic.ParseTimeOfDay(req.WorkingHours.Start)
	if err != nil {
		return clinic.DoctorParams{}, fmt.Errorf("%w: start", clinic.ErrInvalidWorkingHours)
	}
	end, err := clinic.ParseTimeOfDay(req.WorkingHours.End)
	if err != nil {
		return clinic.DoctorParams{}, fmt.Errorf("%w: end", clinic.ErrInvalidWorkingHours)
	}

	p.WorkingHours = clinic.WorkingHours{Start: start, End: end}
	return p, nil
}

func createDoctorHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		params, err := doctorParamsFromRequest(req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		doctor, err := svc.CreateDoctor(r.Context(), params)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, doctorResponse(doctor))
	}
}

func listDoctorsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.ListDoctors(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]DoctorResponse, 0, len(doctors))
		for i := range doctors {
			resp = append(resp, doctorResponse(&doctors[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func getDoctorHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		doctor, err := svc.GetDoctor(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, doctorResponse(doctor))
	}
}

func updateDoctorHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		var req DoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		params, err := doctorParamsFromRequest(req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		doctor, err := svc.UpdateDoctor(r.Context(), id, params)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, doctorResponse(doctor))
	}
}

func deleteDoctorHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		if err := svc.DeleteDoctor(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "doctor deleted successfully"})
	}
}

func doctorSlotsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		dateStr := r.URL.Query().Get("date")
		if dateStr == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required")
			return
		}

		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			day, err = time.Parse(time.RFC3339, dateStr)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		slots, err := svc.AvailableSlots(r.Context(), id, day)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, SlotsResponse{AvailableSlots: slots})
	}
}
