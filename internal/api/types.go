package api

import (
	"time"

	"github.com/clinicport/patient-portal/internal/scheduling"
)

type BookAppointmentRequest struct {
	PatientName string `json:"patientName"`
	ContactInfo string `json:"contactInfo"`
	SlotID      int64  `json:"slotId"`
	Reason      string `json:"reason"`
}

// BookingResponse is the envelope for both booking and confirmation lookup.
type BookingResponse struct {
	Success          bool   `json:"success"`
	AppointmentID    int64  `json:"appointmentId,omitempty"`
	ConfirmationCode string `json:"confirmationCode,omitempty"`
	PatientName      string `json:"patientName,omitempty"`
	DoctorName       string `json:"doctorName,omitempty"`
	SpecialtyName    string `json:"specialtyName,omitempty"`
	DateTime         string `json:"dateTime,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Status           string `json:"status,omitempty"`
	Message          string `json:"message,omitempty"`
}

type SlotSummary struct {
	SlotID            int64     `json:"slotId"`
	DoctorName        string    `json:"doctorName"`
	SpecialtyName     string    `json:"specialtyName"`
	StartTime         time.Time `json:"startTime"`
	EndTime           time.Time `json:"endTime"`
	FormattedDateTime string    `json:"formattedDateTime"`
}

type AvailabilityResponse struct {
	Specialty       string        `json:"specialty"`
	Date            string        `json:"date"`
	HasAvailability bool          `json:"hasAvailability"`
	Message         string        `json:"message"`
	AvailableSlots  []SlotSummary `json:"availableSlots"`
}

type ValidationResponse struct {
	IsValid       bool                          `json:"isValid"`
	MissingFields []string                      `json:"missingFields,omitempty"`
	Message       string                        `json:"message"`
	Appointment   scheduling.AppointmentDetails `json:"appointment"`
}

type SpecialtyResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toBookingResponse(r *scheduling.BookingResult) BookingResponse {
	return BookingResponse{
		Success:          r.Success,
		AppointmentID:    r.AppointmentID,
		ConfirmationCode: r.ConfirmationCode,
		PatientName:      r.PatientName,
		DoctorName:       r.DoctorName,
		SpecialtyName:    r.SpecialtyName,
		DateTime:         r.DateTime,
		Reason:           r.Reason,
		Status:           r.Status,
		Message:          r.Message,
	}
}
