package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/gi-t-ansari/babysteps-backend/internal/clinic"
)

type WorkingHoursPayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DoctorRequest struct {
	Name           string              `json:"name"`
	WorkingHours   WorkingHoursPayload `json:"workingHours"`
	Specialization *string             `json:"specialization,omitempty"`
}

type DoctorResponse struct {
	ID             uuid.UUID           `json:"id"`
	Name           string              `json:"name"`
	WorkingHours   WorkingHoursPayload `json:"workingHours"`
	Specialization *string             `json:"specialization,omitempty"`
}

type AppointmentRequest struct {
	DoctorID        string  `json:"doctorId"`
	Date            string  `json:"date"`
	Duration        int     `json:"duration"`
	AppointmentType string  `json:"appointmentType"`
	PatientName     string  `json:"patientName"`
	Notes           *string `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID              uuid.UUID       `json:"id"`
	DoctorID        uuid.UUID       `json:"doctorId"`
	Date            time.Time       `json:"date"`
	Duration        int             `json:"duration"`
	AppointmentType string          `json:"appointmentType"`
	PatientName     string          `json:"patientName"`
	Notes           *string         `json:"notes,omitempty"`
	Doctor          *DoctorResponse `json:"doctor,omitempty"`
}

type SlotsResponse struct {
	AvailableSlots []string `json:"availableSlots"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func doctorResponse(d *clinic.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:   d.ID,
		Name: d.Name,
		WorkingHours: WorkingHoursPayload{
			Start: d.WorkingHours.Start.String(),
			End:   d.WorkingHours.End.String(),
		},
		Specialization: d.Specialization,
	}
}

func appointmentResponse(a *clinic.Appointment, doctor *clinic.Doctor) AppointmentResponse {
	resp := AppointmentResponse{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		Date:            a.StartsAt,
		Duration:        a.Duration,
		AppointmentType: a.AppointmentType,
		PatientName:     a.PatientName,
		Notes:           a.Notes,
	}
	if doctor != nil {
		d := doctorResponse(doctor)
		resp.Doctor = &d
	}
	return resp
}
