package scheduling

import (
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

const (
	EventBookingConfirmed = "BOOKING_CONFIRMED"
	EventSlotsGenerated   = "SLOTS_GENERATED"
)

type Specialty struct {
	ID          int64
	Name        string
	Description string
	IsActive    bool
}

type Doctor struct {
	ID          int64
	Name        string
	SpecialtyID int64
	IsActive    bool
}

type TimeSlot struct {
	ID          int64
	DoctorID    int64
	StartTime   time.Time
	EndTime     time.Time
	IsAvailable bool
}

type Patient struct {
	ID          int64
	Name        string
	ContactInfo string
	CreatedAt   time.Time
}

type Appointment struct {
	ID               int64
	PatientID        int64
	SlotID           int64
	Reason           string
	Status           AppointmentStatus
	ConfirmationCode string
	BookedAt         time.Time
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *int64
	Payload       []byte
	CreatedAt     time.Time
}

// AvailableSlot is one open slot as presented to the conversation agent.
// FormattedDateTime is filled in by the service so the agent can show the
// slot without doing its own date math.
type AvailableSlot struct {
	SlotID            int64
	DoctorName        string
	SpecialtyName     string
	StartTime         time.Time
	EndTime           time.Time
	FormattedDateTime string
}

// AvailabilityResult is the full availability answer for one specialty.
type AvailabilityResult struct {
	Specialty       string
	Date            string
	HasAvailability bool
	Message         string
	Slots           []AvailableSlot
}

type BookingRequest struct {
	SlotID      int64
	PatientName string
	ContactInfo string
	Reason      string
}

// BookingRecord is the denormalized row produced by the booking transaction
// and by confirmation-code lookups.
type BookingRecord struct {
	AppointmentID    int64
	ConfirmationCode string
	PatientName      string
	DoctorName       string
	SpecialtyName    string
	StartTime        time.Time
	EndTime          time.Time
	Reason           string
	Status           AppointmentStatus
}

// BookingResult is what the conversation agent receives. Failures are data,
// not errors: Success is false and Message says what happened.
type BookingResult struct {
	Success          bool
	AppointmentID    int64
	ConfirmationCode string
	PatientName      string
	DoctorName       string
	SpecialtyName    string
	DateTime         string
	Reason           string
	Status           string
	Message          string
}

// FormatWindow renders a slot window like
// "Monday, April 7, 2025 at 9:00 AM - 9:30 AM".
func FormatWindow(start, end time.Time) string {
	return fmt.Sprintf("%s at %s - %s",
		start.Format("Monday, January 2, 2006"),
		start.Format("3:04 PM"),
		end.Format("3:04 PM"),
	)
}

func resultFromRecord(rec *BookingRecord, message string) *BookingResult {
	return &BookingResult{
		Success:          true,
		AppointmentID:    rec.AppointmentID,
		ConfirmationCode: rec.ConfirmationCode,
		PatientName:      rec.PatientName,
		DoctorName:       rec.DoctorName,
		SpecialtyName:    rec.SpecialtyName,
		DateTime:         FormatWindow(rec.StartTime, rec.EndTime),
		Reason:           rec.Reason,
		Status:           string(rec.Status),
		Message:          message,
	}
}
