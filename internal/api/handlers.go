package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinicport/patient-portal/internal/scheduling"
)

func checkAvailabilityHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		specialty := strings.TrimSpace(r.URL.Query().Get("specialty"))
		if specialty == "" {
			writeError(w, http.StatusBadRequest, "missing_specialty", "specialty query parameter is required")
			return
		}

		var fromDate *time.Time
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted YYYY-MM-DD")
				return
			}
			fromDate = &parsed
		}

		result := svc.CheckAvailability(r.Context(), specialty, fromDate)

		resp := AvailabilityResponse{
			Specialty:       result.Specialty,
			Date:            result.Date,
			HasAvailability: result.HasAvailability,
			Message:         result.Message,
			AvailableSlots:  make([]SlotSummary, 0, len(result.Slots)),
		}
		for _, s := range result.Slots {
			resp.AvailableSlots = append(resp.AvailableSlots, SlotSummary{
				SlotID:            s.SlotID,
				DoctorName:        s.DoctorName,
				SpecialtyName:     s.SpecialtyName,
				StartTime:         s.StartTime,
				EndTime:           s.EndTime,
				FormattedDateTime: s.FormattedDateTime,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func bookAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		result, err := svc.BookAppointment(r.Context(), scheduling.BookingRequest{
			SlotID:      req.SlotID,
			PatientName: req.PatientName,
			ContactInfo: req.ContactInfo,
			Reason:      req.Reason,
		})
		if err != nil {
			// The transaction rolled back; nothing partial was committed.
			writeJSON(w, http.StatusInternalServerError, BookingResponse{
				Success: false,
				Message: "Error booking appointment. Please try again.",
			})
			return
		}

		status := http.StatusCreated
		if !result.Success {
			status = http.StatusConflict
		}
		writeJSON(w, status, toBookingResponse(result))
	}
}

func getAppointmentByCodeHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		result, err := svc.GetAppointmentByCode(r.Context(), code)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not load appointment")
			return
		}

		status := http.StatusOK
		if !result.Success {
			status = http.StatusNotFound
		}
		writeJSON(w, status, toBookingResponse(result))
	}
}

func validateDetailsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var details scheduling.AppointmentDetails
		if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		result, err := svc.ValidateAppointmentDetails(r.Context(), details)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not validate appointment details")
			return
		}

		writeJSON(w, http.StatusOK, ValidationResponse{
			IsValid:       result.IsValid,
			MissingFields: result.MissingFields,
			Message:       result.Message,
			Appointment:   result.Appointment,
		})
	}
}

func listSpecialtiesHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		specialties, err := svc.ListSpecialties(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not load specialties")
			return
		}

		resp := make([]SpecialtyResponse, 0, len(specialties))
		for _, s := range specialties {
			resp = append(resp, SpecialtyResponse{
				ID:          s.ID,
				Name:        s.Name,
				Description: s.Description,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
